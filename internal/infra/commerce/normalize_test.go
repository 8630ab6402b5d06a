package commerce

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"commercemcp/internal/domain"
)

func TestClassifyOrderList(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		form   OrderListForm
		orders int
	}{
		{name: "bare array", input: `[{"id":"a"},{"id":"b"}]`, form: OrderListBare, orders: 2},
		{name: "wrapped", input: `{"orders":[{"id":"a"}],"totalRecords":1}`, form: OrderListWrapped, orders: 1},
		{name: "unknown picks first array", input: `{"total":4,"data":[{"id":"a"},{"id":"b"}],"other":[1]}`, form: OrderListUnknown, orders: 2},
		{name: "unknown without array", input: `{"total":4}`, form: OrderListUnknown, orders: 0},
		{name: "null", input: `null`, form: OrderListUnknown, orders: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list := classifyOrderList(gjson.Parse(tc.input))
			assert.Equal(t, tc.form, list.form)
			assert.Len(t, list.orders, tc.orders)
		})
	}
}

func TestNormalizeOrderList_DefaultsCounters(t *testing.T) {
	page := normalizeOrderList(gjson.Parse(`{"orders":[{"id":"a"},{"id":"b"}],"pageSize":1}`))
	assert.Equal(t, domain.Pagination{PageNumber: 1, PageSize: 1, TotalRecords: 2, TotalPages: 2}, page.Pagination)

	page = normalizeOrderList(gjson.Parse(`{"items":[{"id":"a"}]}`))
	assert.Equal(t, domain.Pagination{PageNumber: 1, PageSize: 10, TotalRecords: 1, TotalPages: 1}, page.Pagination)
	assert.Len(t, page.Orders, 1)

	page = normalizeOrderList(gjson.Parse(`[]`))
	assert.Equal(t, domain.Pagination{PageNumber: 1, PageSize: 10, TotalRecords: 0, TotalPages: 1}, page.Pagination)
	assert.NotNil(t, page.Orders)
}

func TestProjectOrderSummary(t *testing.T) {
	order := gjson.Parse(`{
		"id": "o-1",
		"orderNo": "1001",
		"orderDate": "2026-01-02T10:00:00",
		"orderStatus": "Dispatched",
		"subTotal": {"raw": {"withTax": 18}, "formatted": {"withTax": "£18.00"}},
		"grandTotal": {"raw": {"withTax": 21.5}, "formatted": {"withTax": "£21.50"}},
		"items": [
			{"name": "Mug", "stockCode": "MUG-1", "qty": 2},
			{"productName": "Tea", "sku": "TEA-9"}
		]
	}`)

	want := domain.OrderSummary{
		ID:         "o-1",
		OrderNo:    "1001",
		OrderDate:  "2026-01-02T10:00:00",
		Status:     "Dispatched",
		SubTotal:   domain.Money{Raw: 18, Formatted: "£18.00"},
		Total:      domain.Money{Raw: 21.5, Formatted: "£21.50"},
		ItemsCount: 2,
		Items: []domain.OrderItem{
			{Name: "Mug", SKU: "MUG-1", Qty: 2},
			{Name: "Tea", SKU: "TEA-9", Qty: 0},
		},
	}
	if diff := cmp.Diff(want, projectOrderSummary(order)); diff != "" {
		t.Fatalf("unexpected projection (-want +got):\n%s", diff)
	}
}

func TestProjectOrderSummary_MissingFields(t *testing.T) {
	got := projectOrderSummary(gjson.Parse(`{}`))
	want := domain.OrderSummary{Items: []domain.OrderItem{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected projection (-want +got):\n%s", diff)
	}
}

func TestSummarizeOrder(t *testing.T) {
	order := gjson.Parse(`{
		"id": "o-2",
		"orderNo": "2002",
		"orderStatus": "Completed",
		"paymentStatus": "Paid",
		"customerId": "u-7",
		"customer": {"firstName": "Jane", "lastName": "Doe", "email": "jane@example.com"},
		"subTotal": 40,
		"discount": {"raw": {"withTax": 5}, "formatted": {"withTax": "£5.00"}},
		"grandTotal": 35,
		"items": [{"name": "Lamp", "stockCode": "L-1", "qty": 1, "price": 40, "totalPrice": 40}],
		"shippingAddress": {"firstName": "Jane", "address1": "1 High St", "city": "Leeds", "postCode": "LS1", "country": "GB"},
		"deliveryPlans": [{"deliveryPlanNo": "DP-1", "carrierName": "DPD", "trackingNumber": "TRK1", "trackingLink": "https://track/1"}],
		"payments": [{"paymentMethod": "card", "status": "Authorised", "orderAmount": 35}, {"paymentMethod": "giftcard"}]
	}`)

	want := domain.OrderDetail{
		OrderInfo: domain.OrderInfo{ID: "o-2", OrderNo: "2002", Status: "Completed", PaymentStatus: "Paid"},
		Customer:  domain.OrderCustomer{UserID: "u-7", Name: "Jane Doe", Email: "jane@example.com"},
		Pricing: domain.OrderPricing{
			SubTotal: domain.Money{Raw: 40},
			Discount: domain.Money{Raw: 5, Formatted: "£5.00"},
			Total:    domain.Money{Raw: 35},
		},
		Items: []domain.OrderLine{
			{Name: "Lamp", SKU: "L-1", Qty: 1, Price: domain.Money{Raw: 40}, Total: domain.Money{Raw: 40}},
		},
		ShippingAddress: &domain.Address{FirstName: "Jane", Address1: "1 High St", City: "Leeds", PostCode: "LS1", Country: "GB"},
		Shipments: []domain.Shipment{
			{PlanNo: "DP-1", Carrier: "DPD", TrackingNumber: "TRK1", TrackingLink: "https://track/1"},
		},
		Payment: &domain.Payment{Method: "card", Status: "Authorised", Amount: domain.Money{Raw: 35}},
	}
	if diff := cmp.Diff(want, summarizeOrder(order)); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
}

func TestSummarizeOrder_PricingShape(t *testing.T) {
	summary := summarizeOrder(gjson.Parse(`{"id":"1","taxAmount":5,"tax":5}`))
	encoded, err := json.Marshal(summary)
	require.NoError(t, err)

	var decoded struct {
		Pricing map[string]json.RawMessage `json:"pricing"`
	}
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	keys := make([]string, 0, len(decoded.Pricing))
	for key := range decoded.Pricing {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	assert.Equal(t, []string{"discount", "shippingCharge", "subTotal", "total"}, keys)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, domain.Money{Raw: 12.5}, money(gjson.Parse(`12.5`)))
	assert.Equal(t, domain.Money{Raw: 3, Formatted: "$3.00"}, money(gjson.Parse(`{"raw":3,"formatted":"$3.00"}`)))
	assert.Equal(t, domain.Money{}, money(gjson.Parse(`"free"`)))
	assert.Equal(t, domain.Money{}, money(gjson.Result{}))
}

package commerce

import (
	"github.com/tidwall/gjson"

	"commercemcp/internal/domain"
)

// OrderListForm tags the shapes the order listing result arrives in.
type OrderListForm int

const (
	// OrderListUnknown is an object whose first array-valued field holds the orders.
	OrderListUnknown OrderListForm = iota
	// OrderListBare is a bare array of orders.
	OrderListBare
	// OrderListWrapped is an object with an orders field and paging counters.
	OrderListWrapped
)

func (f OrderListForm) String() string {
	switch f {
	case OrderListBare:
		return "bare"
	case OrderListWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// orderList is the order listing result resolved to one form.
type orderList struct {
	form     OrderListForm
	orders   []gjson.Result
	counters gjson.Result
}

func classifyOrderList(result gjson.Result) orderList {
	switch {
	case result.IsArray():
		return orderList{form: OrderListBare, orders: result.Array()}
	case result.IsObject() && result.Get("orders").IsArray():
		return orderList{form: OrderListWrapped, orders: result.Get("orders").Array(), counters: result}
	}
	list := orderList{form: OrderListUnknown, counters: result}
	if result.IsObject() {
		result.ForEach(func(_, value gjson.Result) bool {
			if value.IsArray() {
				list.orders = value.Array()
				return false
			}
			return true
		})
	}
	return list
}

func normalizeOrderList(result gjson.Result) domain.OrderPage {
	list := classifyOrderList(result)

	orders := make([]domain.OrderSummary, 0, len(list.orders))
	for _, order := range list.orders {
		orders = append(orders, projectOrderSummary(order))
	}

	page := domain.Pagination{
		PageNumber:   domain.DefaultPageNumber,
		PageSize:     domain.DefaultPageSize,
		TotalRecords: len(orders),
		TotalPages:   1,
	}
	if list.form != OrderListBare {
		page.PageNumber = intOr(list.counters, "pageNumber", domain.DefaultPageNumber)
		page.PageSize = intOr(list.counters, "pageSize", domain.DefaultPageSize)
		page.TotalRecords = intOr(list.counters, "totalRecords", len(orders))
		page.TotalPages = intOr(list.counters, "totalPages", pagesFor(page.TotalRecords, page.PageSize))
	}
	return domain.OrderPage{Pagination: page, Orders: orders}
}

func pagesFor(records, size int) int {
	if size <= 0 || records <= 0 {
		return 1
	}
	return (records + size - 1) / size
}

func projectOrderSummary(order gjson.Result) domain.OrderSummary {
	items := order.Get("items").Array()
	lines := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderItem{
			Name: firstString(item, "name", "productName"),
			SKU:  firstString(item, "stockCode", "sku"),
			Qty:  item.Get("qty").Int(),
		})
	}
	count := len(items)
	if value := order.Get("itemsCount"); value.Exists() {
		count = int(value.Int())
	}
	return domain.OrderSummary{
		ID:         firstString(order, "id"),
		OrderNo:    firstString(order, "orderNo"),
		OrderDate:  firstString(order, "orderDate"),
		Status:     firstString(order, "orderStatus", "status"),
		SubTotal:   money(order.Get("subTotal")),
		Total:      money(firstExisting(order, "grandTotal", "total")),
		ItemsCount: count,
		Items:      lines,
	}
}

func summarizeOrder(order gjson.Result) domain.OrderDetail {
	items := order.Get("items").Array()
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderLine{
			Name:  firstString(item, "name", "productName"),
			SKU:   firstString(item, "stockCode", "sku"),
			Qty:   item.Get("qty").Int(),
			Price: money(item.Get("price")),
			Total: money(firstExisting(item, "totalPrice", "total")),
		})
	}

	plans := order.Get("deliveryPlans").Array()
	shipments := make([]domain.Shipment, 0, len(plans))
	for _, plan := range plans {
		shipments = append(shipments, domain.Shipment{
			PlanNo:         firstString(plan, "deliveryPlanNo", "planNo", "id"),
			Carrier:        firstString(plan, "carrierName", "carrier", "shippingMethod"),
			TrackingNumber: firstString(plan, "trackingNumber", "awbNumber"),
			TrackingLink:   firstString(plan, "trackingLink", "trackingUrl"),
			Status:         firstString(plan, "status", "statusCode"),
		})
	}

	var payment *domain.Payment
	if first := order.Get("payments.0"); first.IsObject() {
		payment = &domain.Payment{
			Method:        firstString(first, "paymentMethod", "paymentGateway"),
			Status:        firstString(first, "status", "paymentStatus"),
			Amount:        money(firstExisting(first, "orderAmount", "amount")),
			TransactionID: firstString(first, "pspReference", "transactionId", "id"),
		}
	}

	customer := order.Get("customer")
	name := firstString(customer, "name")
	if name == "" {
		name = joinNonEmpty(firstString(customer, "firstName"), firstString(customer, "lastName"))
	}

	return domain.OrderDetail{
		OrderInfo: domain.OrderInfo{
			ID:            firstString(order, "id"),
			OrderNo:       firstString(order, "orderNo"),
			OrderDate:     firstString(order, "orderDate"),
			Status:        firstString(order, "orderStatus", "status"),
			PaymentStatus: firstString(order, "paymentStatus"),
			Channel:       firstString(order, "channel", "orderChannel"),
		},
		Customer: domain.OrderCustomer{
			UserID: firstNonEmpty(firstString(customer, "userId", "id"), firstString(order, "customerId", "userId")),
			Name:   name,
			Email:  firstNonEmpty(firstString(customer, "email"), firstString(order, "customerEmail", "email")),
			Phone:  firstNonEmpty(firstString(customer, "mobile", "phone", "telephone"), firstString(order, "customerPhone")),
		},
		Pricing: domain.OrderPricing{
			SubTotal:       money(order.Get("subTotal")),
			Discount:       money(firstExisting(order, "discount", "discountAmount")),
			ShippingCharge: money(firstExisting(order, "shippingCharge", "shippingCost")),
			Total:          money(firstExisting(order, "grandTotal", "total")),
		},
		Items:           lines,
		ShippingAddress: address(order.Get("shippingAddress")),
		BillingAddress:  address(order.Get("billingAddress")),
		Shipments:       shipments,
		Payment:         payment,
	}
}

func address(value gjson.Result) *domain.Address {
	if !value.IsObject() {
		return nil
	}
	return &domain.Address{
		FirstName: firstString(value, "firstName"),
		LastName:  firstString(value, "lastName"),
		Address1:  firstString(value, "address1"),
		Address2:  firstString(value, "address2"),
		City:      firstString(value, "city"),
		State:     firstString(value, "state", "county"),
		PostCode:  firstString(value, "postCode"),
		Country:   firstString(value, "country", "countryCode"),
		Phone:     firstString(value, "phoneNo", "phone", "mobileNo"),
	}
}

// money reads an amount that is either a plain number or an object of
// the form {raw: {withTax}, formatted: {withTax}}.
func money(value gjson.Result) domain.Money {
	switch {
	case value.Type == gjson.Number:
		return domain.Money{Raw: value.Float()}
	case value.IsObject():
		raw := value.Get("raw")
		if raw.IsObject() {
			raw = raw.Get("withTax")
		}
		formatted := value.Get("formatted")
		if formatted.IsObject() {
			formatted = formatted.Get("withTax")
		}
		return domain.Money{Raw: raw.Float(), Formatted: formatted.String()}
	default:
		return domain.Money{}
	}
}

func firstExisting(value gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		if found := value.Get(path); found.Exists() && found.Type != gjson.Null {
			return found
		}
	}
	return gjson.Result{}
}

func firstString(value gjson.Result, paths ...string) string {
	for _, path := range paths {
		found := value.Get(path)
		if !found.Exists() || found.Type == gjson.Null || found.IsObject() || found.IsArray() {
			continue
		}
		if text := found.String(); text != "" {
			return text
		}
	}
	return ""
}

func intOr(value gjson.Result, path string, fallback int) int {
	found := value.Get(path)
	if found.Type != gjson.Number {
		return fallback
	}
	return int(found.Int())
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func joinNonEmpty(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

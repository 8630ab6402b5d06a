package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commercemcp/internal/domain"
)

type fakeCommerce struct {
	authCalls int
	criteria  []domain.CustomerCriteria
	queries   []domain.OrderQuery
	orders    []string
	levels    []domain.DetailLevel

	customer *domain.CustomerRecord
	page     domain.OrderPage
	view     domain.OrderView
	err      error
}

func (f *fakeCommerce) Authenticate(context.Context) (domain.Credential, error) {
	f.authCalls++
	if f.err != nil {
		return domain.Credential{}, f.err
	}
	return domain.Credential{Token: "tok", IssuedAt: time.Now(), TTL: 36000 * time.Second}, nil
}

func (f *fakeCommerce) FindCustomer(_ context.Context, criteria domain.CustomerCriteria) (*domain.CustomerRecord, error) {
	f.criteria = append(f.criteria, criteria)
	return f.customer, f.err
}

func (f *fakeCommerce) ListOrders(_ context.Context, query domain.OrderQuery) (domain.OrderPage, error) {
	f.queries = append(f.queries, query)
	return f.page, f.err
}

func (f *fakeCommerce) GetOrder(_ context.Context, orderID string, level domain.DetailLevel) (domain.OrderView, error) {
	f.orders = append(f.orders, orderID)
	f.levels = append(f.levels, level)
	return f.view, f.err
}

func newCatalogRegistry(t *testing.T, commerce Commerce) *Registry {
	t.Helper()
	descriptors, err := Catalog(commerce)
	require.NoError(t, err)
	registry, err := NewRegistry(descriptors, nil, nil)
	require.NoError(t, err)
	return registry
}

func envelopeJSON(t *testing.T, envelope domain.Envelope) string {
	t.Helper()
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return string(raw)
}

func TestCatalog_Order(t *testing.T) {
	registry := newCatalogRegistry(t, &fakeCommerce{})
	names := []string{}
	for _, descriptor := range registry.List() {
		names = append(names, descriptor.Name)
		require.NotNil(t, descriptor.InputSchema)
		assert.Equal(t, "object", descriptor.InputSchema.Type)
		assert.NotEmpty(t, descriptor.Description)
	}
	assert.Equal(t, []string{AuthTokenTool, CustomerDetailsTool, CustomerOrdersTool, OrderDetailsTool}, names)
}

func TestCatalog_Schemas(t *testing.T) {
	registry := newCatalogRegistry(t, &fakeCommerce{})
	schemas := map[string]any{}
	for _, descriptor := range registry.List() {
		raw, err := json.Marshal(descriptor.InputSchema)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		schemas[descriptor.Name] = decoded
	}

	orders := schemas[CustomerOrdersTool].(map[string]any)
	assert.Equal(t, []any{"userId"}, orders["required"])
	pageSize := orders["properties"].(map[string]any)["pageSize"].(map[string]any)
	assert.Equal(t, "integer", pageSize["type"])
	assert.Equal(t, float64(100), pageSize["maximum"])

	details := schemas[OrderDetailsTool].(map[string]any)
	level := details["properties"].(map[string]any)["detailLevel"].(map[string]any)
	assert.Equal(t, []any{"summary", "full"}, level["enum"])
	assert.Equal(t, "summary", level["default"])

	customer := schemas[CustomerDetailsTool].(map[string]any)
	assert.Nil(t, customer["required"])
	email := customer["properties"].(map[string]any)["email"].(map[string]any)
	assert.Equal(t, "string", email["type"])
	assert.Equal(t, "email", email["format"])
}

func TestGetAuthToken(t *testing.T) {
	commerce := &fakeCommerce{}
	registry := newCatalogRegistry(t, commerce)

	envelope, err := registry.Dispatch(context.Background(), AuthTokenTool, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"token":"tok","expiresIn":36000}}`, envelopeJSON(t, envelope))
	assert.Equal(t, 1, commerce.authCalls)
}

func TestGetAuthToken_Failure(t *testing.T) {
	commerce := &fakeCommerce{err: domain.E(domain.CodeUnauthenticated, "auth", "Authentication failed: invalid_client", nil)}
	registry := newCatalogRegistry(t, commerce)

	envelope, err := registry.Dispatch(context.Background(), AuthTokenTool, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("Authentication failed: invalid_client"), envelope)
}

func TestGetCustomerDetails(t *testing.T) {
	gender := "F"
	commerce := &fakeCommerce{customer: &domain.CustomerRecord{
		UserID:       "u-1",
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		Gender:       &gender,
		IsRegistered: true,
		Profile:      json.RawMessage(`{"userId":"u-1","points":3}`),
	}}
	registry := newCatalogRegistry(t, commerce)

	envelope, err := registry.Dispatch(context.Background(), CustomerDetailsTool, json.RawMessage(`{"email":"jane@example.com"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"data": {"customer": {
			"userId": "u-1", "firstName": "Jane", "lastName": "Doe", "email": "jane@example.com",
			"mobile": "", "telephone": "", "gender": "F", "birthDate": null, "postCode": null,
			"isRegistered": true, "newsLetterSubscribed": false,
			"fullProfile": {"userId":"u-1","points":3}
		}}
	}`, envelopeJSON(t, envelope))
	require.Len(t, commerce.criteria, 1)
	assert.Equal(t, domain.CustomerCriteria{Email: "jane@example.com"}, commerce.criteria[0])
}

func TestGetCustomerDetails_Validation(t *testing.T) {
	cases := []struct {
		name string
		args string
		want string
	}{
		{name: "no criteria", args: `{}`, want: "Invalid input: " + searchCriterionMessage},
		{name: "first name only", args: `{"firstname":"Jane"}`, want: "Invalid input: " + searchCriterionMessage},
		{name: "invalid email", args: `{"email":"not-an-email"}`, want: "Invalid input: Invalid email"},
		{name: "empty email", args: `{"email":"","phone":"0123"}`, want: "Invalid input: Invalid email"},
		{name: "dotless email domain", args: `{"email":"a@b"}`, want: "Invalid input: Invalid email"},
		{name: "empty email domain label", args: `{"email":"a@b..co"}`, want: "Invalid input: Invalid email"},
		{name: "wrong type", args: `{"phone":123}`, want: "Invalid input: phone: Expected string, received number"},
		{name: "not an object", args: `["a"]`, want: "Invalid input: Expected object, received array"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			commerce := &fakeCommerce{}
			registry := newCatalogRegistry(t, commerce)

			envelope, err := registry.Dispatch(context.Background(), CustomerDetailsTool, json.RawMessage(tc.args))
			require.NoError(t, err)
			assert.Equal(t, domain.Failed(tc.want), envelope)
			assert.Empty(t, commerce.criteria)
		})
	}
}

func TestGetCustomerDetails_NotFound(t *testing.T) {
	registry := newCatalogRegistry(t, &fakeCommerce{})

	envelope, err := registry.Dispatch(context.Background(), CustomerDetailsTool, json.RawMessage(`{"firstname":"Jane","lastname":"Doe"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("No customer found matching the provided criteria"), envelope)
}

func TestGetCustomerOrders(t *testing.T) {
	commerce := &fakeCommerce{page: domain.OrderPage{
		Pagination: domain.Pagination{PageNumber: 2, PageSize: 5, TotalRecords: 12, TotalPages: 3},
		Orders:     []domain.OrderSummary{{ID: "o-1", Items: []domain.OrderItem{}}},
	}}
	registry := newCatalogRegistry(t, commerce)

	envelope, err := registry.Dispatch(context.Background(), CustomerOrdersTool, json.RawMessage(`{"userId":"u-1","pageNumber":2,"pageSize":5,"sortBy":"orderDate"}`))
	require.NoError(t, err)
	require.True(t, envelope.Success)

	var decoded struct {
		Data CustomerOrdersResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(envelopeJSON(t, envelope)), &decoded))
	assert.Equal(t, commerce.page.Pagination, decoded.Data.Pagination)
	assert.Equal(t, OrdersSummary{OrdersOnThisPage: 1, TotalOrdersFound: 12}, decoded.Data.Summary)

	require.Len(t, commerce.queries, 1)
	assert.Equal(t, domain.OrderQuery{UserID: "u-1", PageNumber: 2, PageSize: 5, SortBy: "orderDate"}, commerce.queries[0])
}

func TestGetCustomerOrders_Defaults(t *testing.T) {
	commerce := &fakeCommerce{}
	registry := newCatalogRegistry(t, commerce)

	_, err := registry.Dispatch(context.Background(), CustomerOrdersTool, json.RawMessage(`{"userId":"u-1"}`))
	require.NoError(t, err)
	require.Len(t, commerce.queries, 1)
	assert.Equal(t, 1, commerce.queries[0].PageNumber)
	assert.Equal(t, 10, commerce.queries[0].PageSize)
}

func TestGetCustomerOrders_Validation(t *testing.T) {
	cases := []struct {
		name string
		args string
		want string
	}{
		{name: "missing user", args: `{}`, want: "Invalid input: userId: String must contain at least 1 character(s)"},
		{name: "page size too large", args: `{"userId":"u","pageSize":101}`, want: "Invalid input: pageSize: Number must be less than or equal to 100"},
		{name: "non positive page", args: `{"userId":"u","pageNumber":0,"pageSize":-1}`, want: "Invalid input: pageNumber: Number must be greater than 0, pageSize: Number must be greater than 0"},
		{name: "fractional page", args: `{"userId":"u","pageNumber":1.5}`, want: "Invalid input: pageNumber: Expected integer, received number 1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			commerce := &fakeCommerce{}
			registry := newCatalogRegistry(t, commerce)

			envelope, err := registry.Dispatch(context.Background(), CustomerOrdersTool, json.RawMessage(tc.args))
			require.NoError(t, err)
			assert.Equal(t, domain.Failed(tc.want), envelope)
			assert.Empty(t, commerce.queries)
		})
	}
}

func TestGetOrderDetails(t *testing.T) {
	commerce := &fakeCommerce{view: domain.OrderView{Level: domain.DetailFull, Full: json.RawMessage(`{"id":"o-1","raw":true}`)}}
	registry := newCatalogRegistry(t, commerce)

	envelope, err := registry.Dispatch(context.Background(), OrderDetailsTool, json.RawMessage(`{"orderId":"o-1","detailLevel":"full"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"detailLevel":"full","order":{"id":"o-1","raw":true}}}`, envelopeJSON(t, envelope))
	assert.Equal(t, []domain.DetailLevel{domain.DetailFull}, commerce.levels)
}

func TestGetOrderDetails_DefaultsToSummary(t *testing.T) {
	commerce := &fakeCommerce{view: domain.OrderView{Level: domain.DetailSummary, Summary: &domain.OrderDetail{}}}
	registry := newCatalogRegistry(t, commerce)

	envelope, err := registry.Dispatch(context.Background(), OrderDetailsTool, json.RawMessage(`{"orderId":"o-1"}`))
	require.NoError(t, err)
	require.True(t, envelope.Success)
	assert.Equal(t, []domain.DetailLevel{domain.DetailSummary}, commerce.levels)

	envelope, err = registry.Dispatch(context.Background(), OrderDetailsTool, json.RawMessage(`{"orderId":"o-1","detailLevel":"verbose"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("Invalid input: detailLevel: Invalid enum value. Expected 'summary' | 'full', received 'verbose'"), envelope)
	assert.Len(t, commerce.levels, 1)
}

func TestCatalog_UpstreamErrorBecomesEnvelope(t *testing.T) {
	commerce := &fakeCommerce{err: &domain.Error{Code: domain.CodeUpstreamRequest, Message: "Failed to fetch order details: Request failed with status code 404", Status: 404}}
	registry := newCatalogRegistry(t, commerce)

	envelope, err := registry.Dispatch(context.Background(), OrderDetailsTool, json.RawMessage(`{"orderId":"o-404"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("Failed to fetch order details: Request failed with status code 404"), envelope)
}

func TestValidEmail(t *testing.T) {
	for value, want := range map[string]bool{
		"jane@example.com":        true,
		"jane.doe+tag@mail.co.uk": true,
		"":                        false,
		"a@b":                     false,
		"a@.b":                    false,
		"a@b.":                    false,
		"Jane <jane@example.com>": false,
		"not-an-email":            false,
	} {
		assert.Equal(t, want, validEmail(value), value)
	}
}

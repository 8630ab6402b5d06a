package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
)

const (
	customerSearchPath = "/api/v2/commerce/customer"
	customerOrdersPath = "/api/v2/commerce/customer/%s/orders"
	orderPath          = "/api/v2/commerce/order/"
)

// customerSearchFields is the field order of the customer search form.
var customerSearchFields = []string{"email", "phone", "username", "firstname", "lastname"}

// Options tune how the client reaches the upstream hosts.
type Options struct {
	// BaseTransport carries both auth and API traffic. Defaults to
	// http.DefaultTransport.
	BaseTransport http.RoundTripper
	Timeout       time.Duration
	Clock         func() time.Time
}

// Client implements the upstream operation set over one shared
// credential cache.
type Client struct {
	auth      *ClientCredentialsAuth
	cache     *CredentialCache
	transport *Transport
	logger    *zap.Logger
}

func NewClient(cfg domain.UpstreamConfig, opts Options, metrics domain.Metrics, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	logger = logger.Named("commerce")
	if opts.BaseTransport == nil {
		opts.BaseTransport = http.DefaultTransport
	}
	if opts.Timeout <= 0 {
		opts.Timeout = domain.DefaultUpstreamTimeout
	}

	auth := NewClientCredentialsAuth(cfg, &http.Client{
		Timeout:   opts.Timeout,
		Transport: opts.BaseTransport,
	}, metrics, logger)
	cacheOpts := []CacheOption{}
	if opts.Clock != nil {
		auth.now = opts.Clock
		cacheOpts = append(cacheOpts, WithClock(opts.Clock))
	}
	cache := NewCredentialCache(auth, logger, metrics, cacheOpts...)

	return &Client{
		auth:      auth,
		cache:     cache,
		transport: NewTransport(cfg.APIBaseURL, opts.BaseTransport, opts.Timeout, cache, metrics, logger),
		logger:    logger,
	}
}

// Authenticate obtains a fresh access token and makes it the cached one.
func (c *Client) Authenticate(ctx context.Context) (domain.Credential, error) {
	return c.cache.Refresh(ctx)
}

// upstreamEnvelope is the wrapper every commerce API response uses.
type upstreamEnvelope struct {
	statusCode    int64
	hasStatusCode bool
	success       bool
	message       string
	result        gjson.Result
}

func parseEnvelope(payload []byte) upstreamEnvelope {
	parsed := gjson.ParseBytes(payload)
	statusCode := parsed.Get("statusCode")
	return upstreamEnvelope{
		statusCode:    statusCode.Int(),
		hasStatusCode: statusCode.Type == gjson.Number,
		success:       parsed.Get("success").Bool(),
		message:       parsed.Get("message").String(),
		result:        parsed.Get("result"),
	}
}

func (e upstreamEnvelope) rejection(op, fallback string) error {
	message := e.message
	if message == "" {
		message = fallback
	}
	return &domain.Error{Code: domain.CodeUpstreamRejected, Op: op, Message: message}
}

// FindCustomer searches customers by the given criteria. A search that
// matches nobody returns a nil record and no error; when several
// customers match, the first is returned.
func (c *Client) FindCustomer(ctx context.Context, criteria domain.CustomerCriteria) (*domain.CustomerRecord, error) {
	const op = "commerce.FindCustomer"
	if !criteria.HasSearchKey() {
		return nil, domain.E(domain.CodeInvalidArgument, op, "At least one search criterion must be provided (email, phone, username, or firstname + lastname)", domain.ErrInvalidArgument)
	}

	form := url.Values{}
	form.Set("email", criteria.Email)
	form.Set("phone", criteria.Phone)
	form.Set("username", criteria.Username)
	form.Set("firstname", criteria.FirstName)
	form.Set("lastname", criteria.LastName)

	payload, err := c.transport.Do(ctx, Request{
		Operation: "find_customer",
		Method:    http.MethodPost,
		Path:      customerSearchPath,
		Form:      form,
		FormOrder: customerSearchFields,
	})
	if err != nil {
		return nil, domain.Prefix(op, "Failed to fetch customer details", err)
	}

	envelope := parseEnvelope(payload)
	if !envelope.success || envelope.statusCode != http.StatusOK {
		return nil, domain.Prefix(op, "Failed to fetch customer details", envelope.rejection(op, "Customer lookup failed"))
	}

	matches := envelope.result.Array()
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		c.logger.Debug("customer search matched several records", zap.Int("matches", len(matches)))
	}

	first := matches[0]
	var record domain.CustomerRecord
	if err := json.Unmarshal([]byte(first.Raw), &record); err != nil {
		// Field types vary between tenants; fall back to lenient extraction.
		record = customerFromResult(first)
	}
	record.Profile = json.RawMessage(first.Raw)
	return &record, nil
}

func customerFromResult(value gjson.Result) domain.CustomerRecord {
	optional := func(path string) *string {
		found := value.Get(path)
		if !found.Exists() || found.Type == gjson.Null {
			return nil
		}
		text := found.String()
		return &text
	}
	return domain.CustomerRecord{
		UserID:               firstString(value, "userId"),
		Username:             optional("username"),
		FirstName:            firstString(value, "firstName"),
		LastName:             firstString(value, "lastName"),
		Email:                firstString(value, "email"),
		Mobile:               firstString(value, "mobile"),
		Telephone:            firstString(value, "telephone"),
		Gender:               optional("gender"),
		BirthDate:            optional("birthDate"),
		PostCode:             optional("postCode"),
		NewsLetterSubscribed: value.Get("newsLetterSubscribed").Bool(),
		IsRegistered:         value.Get("isRegistered").Bool(),
	}
}

// ListOrders returns one page of a customer's orders.
func (c *Client) ListOrders(ctx context.Context, query domain.OrderQuery) (domain.OrderPage, error) {
	const op = "commerce.ListOrders"
	if query.UserID == "" {
		return domain.OrderPage{}, domain.E(domain.CodeInvalidArgument, op, "userId is required", domain.ErrInvalidArgument)
	}
	if query.PageNumber <= 0 {
		query.PageNumber = domain.DefaultPageNumber
	}
	if query.PageSize <= 0 {
		query.PageSize = domain.DefaultPageSize
	}
	if query.PageSize > domain.MaxPageSize {
		query.PageSize = domain.MaxPageSize
	}

	params := url.Values{}
	params.Set("pageNumber", strconv.Itoa(query.PageNumber))
	params.Set("pageSize", strconv.Itoa(query.PageSize))
	setIfPresent(params, "orderStatus", query.OrderStatus)
	setIfPresent(params, "dateFrom", query.DateFrom)
	setIfPresent(params, "dateTo", query.DateTo)
	setIfPresent(params, "sortBy", query.SortBy)

	payload, err := c.transport.Do(ctx, Request{
		Operation: "list_orders",
		Method:    http.MethodGet,
		Path:      fmt.Sprintf(customerOrdersPath, url.PathEscape(query.UserID)),
		Query:     params,
	})
	if err != nil {
		return domain.OrderPage{}, domain.Prefix(op, "Failed to fetch customer orders", err)
	}

	envelope := parseEnvelope(payload)
	if !envelope.success || (envelope.hasStatusCode && envelope.statusCode != http.StatusOK) {
		return domain.OrderPage{}, domain.Prefix(op, "Failed to fetch customer orders", envelope.rejection(op, "Customer orders lookup failed"))
	}
	return normalizeOrderList(envelope.result), nil
}

// GetOrder fetches one order, either verbatim or summarized.
func (c *Client) GetOrder(ctx context.Context, orderID string, level domain.DetailLevel) (domain.OrderView, error) {
	const op = "commerce.GetOrder"
	if orderID == "" {
		return domain.OrderView{}, domain.E(domain.CodeInvalidArgument, op, "orderId is required", domain.ErrInvalidArgument)
	}
	if level == "" {
		level = domain.DetailSummary
	}

	payload, err := c.transport.Do(ctx, Request{
		Operation: "get_order",
		Method:    http.MethodGet,
		Path:      orderPath + url.PathEscape(orderID),
	})
	if err != nil {
		return domain.OrderView{}, domain.Prefix(op, "Failed to fetch order details", err)
	}

	envelope := parseEnvelope(payload)
	if !envelope.success || (envelope.hasStatusCode && envelope.statusCode != http.StatusOK) {
		return domain.OrderView{}, domain.Prefix(op, "Failed to fetch order details", envelope.rejection(op, "Order lookup failed"))
	}
	if !envelope.result.IsObject() {
		return domain.OrderView{}, &domain.Error{
			Code:    domain.CodeUpstreamRejected,
			Op:      op,
			Message: "Failed to fetch order details: order " + orderID + " not found",
		}
	}

	if level == domain.DetailFull {
		return domain.OrderView{Level: domain.DetailFull, Full: json.RawMessage(envelope.result.Raw)}, nil
	}
	summary := summarizeOrder(envelope.result)
	return domain.OrderView{Level: domain.DetailSummary, Summary: &summary}, nil
}

func setIfPresent(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"commercemcp/internal/domain"
)

const (
	AuthTokenTool       = "get_auth_token"
	CustomerDetailsTool = "get_customer_details"
	CustomerOrdersTool  = "get_customer_orders"
	OrderDetailsTool    = "get_order_details"
)

// Commerce is the upstream operation set the catalog drives.
type Commerce interface {
	Authenticate(ctx context.Context) (domain.Credential, error)
	FindCustomer(ctx context.Context, criteria domain.CustomerCriteria) (*domain.CustomerRecord, error)
	ListOrders(ctx context.Context, query domain.OrderQuery) (domain.OrderPage, error)
	GetOrder(ctx context.Context, orderID string, level domain.DetailLevel) (domain.OrderView, error)
}

type AuthTokenResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type CustomerProfile struct {
	UserID               string          `json:"userId"`
	FirstName            string          `json:"firstName"`
	LastName             string          `json:"lastName"`
	Email                string          `json:"email"`
	Mobile               string          `json:"mobile"`
	Telephone            string          `json:"telephone"`
	Gender               *string         `json:"gender"`
	BirthDate            *string         `json:"birthDate"`
	PostCode             *string         `json:"postCode"`
	IsRegistered         bool            `json:"isRegistered"`
	NewsLetterSubscribed bool            `json:"newsLetterSubscribed"`
	FullProfile          json.RawMessage `json:"fullProfile"`
}

type CustomerDetailsResult struct {
	Customer CustomerProfile `json:"customer"`
}

type OrdersSummary struct {
	OrdersOnThisPage int `json:"ordersOnThisPage"`
	TotalOrdersFound int `json:"totalOrdersFound"`
}

type CustomerOrdersResult struct {
	Pagination domain.Pagination     `json:"pagination"`
	Orders     []domain.OrderSummary `json:"orders"`
	Summary    OrdersSummary         `json:"summary"`
}

type OrderDetailsResult struct {
	DetailLevel domain.DetailLevel `json:"detailLevel"`
	Order       domain.OrderView   `json:"order"`
}

// Catalog builds the four commerce tools in their advertised order.
func Catalog(commerce Commerce) ([]Descriptor, error) {
	authSchema, err := inputSchema[AuthTokenInput]()
	if err != nil {
		return nil, fmt.Errorf("%s schema: %w", AuthTokenTool, err)
	}
	customerSchema, err := inputSchema[CustomerDetailsInput]()
	if err != nil {
		return nil, fmt.Errorf("%s schema: %w", CustomerDetailsTool, err)
	}
	stringProperty(customerSchema, "email", "email")
	ordersSchema, err := inputSchema[CustomerOrdersInput]()
	if err != nil {
		return nil, fmt.Errorf("%s schema: %w", CustomerOrdersTool, err)
	}
	integerProperty(ordersSchema, "pageNumber", 1, 0)
	integerProperty(ordersSchema, "pageSize", 1, domain.MaxPageSize)
	orderSchema, err := inputSchema[OrderDetailsInput]()
	if err != nil {
		return nil, fmt.Errorf("%s schema: %w", OrderDetailsTool, err)
	}
	enumProperty(orderSchema, "detailLevel", string(domain.DetailSummary), string(domain.DetailFull))

	return []Descriptor{
		NewDescriptor(AuthTokenTool,
			"Retrieves an authentication token for the BetterCommerce API. This token is required for all subsequent API calls. The token is automatically cached and reused until it expires.",
			authSchema,
			func(ctx context.Context, _ AuthTokenInput) (any, error) {
				cred, err := commerce.Authenticate(ctx)
				if err != nil {
					return nil, err
				}
				return AuthTokenResult{Token: cred.Token, ExpiresIn: cred.ExpiresInSeconds()}, nil
			},
		),
		NewDescriptor(CustomerDetailsTool,
			"Retrieves detailed customer information from the BetterCommerce API. You can search by email, phone number, username, or a combination of first name and last name. At least one search criterion must be provided. Returns comprehensive customer profile including userId, contact information, registration status, and preferences.",
			customerSchema,
			func(ctx context.Context, in CustomerDetailsInput) (any, error) {
				record, err := commerce.FindCustomer(ctx, in.Criteria())
				if err != nil {
					return nil, err
				}
				if record == nil {
					return nil, domain.E(domain.CodeNotFound, "tools.get_customer_details", "No customer found matching the provided criteria", domain.ErrCustomerNotFound)
				}
				return CustomerDetailsResult{Customer: CustomerProfile{
					UserID:               record.UserID,
					FirstName:            record.FirstName,
					LastName:             record.LastName,
					Email:                record.Email,
					Mobile:               record.Mobile,
					Telephone:            record.Telephone,
					Gender:               record.Gender,
					BirthDate:            record.BirthDate,
					PostCode:             record.PostCode,
					IsRegistered:         record.IsRegistered,
					NewsLetterSubscribed: record.NewsLetterSubscribed,
					FullProfile:          record.Profile,
				}}, nil
			},
		),
		NewDescriptor(CustomerOrdersTool,
			"Retrieves a paginated list of customer orders from the BetterCommerce API. Returns order summaries including order number, date, status, totals, and basic item information. Supports filtering by order status, date range, and custom sorting. Use the userId obtained from get_customer_details to fetch orders for a specific customer.",
			ordersSchema,
			func(ctx context.Context, in CustomerOrdersInput) (any, error) {
				page, err := commerce.ListOrders(ctx, in.Query())
				if err != nil {
					return nil, err
				}
				return CustomerOrdersResult{
					Pagination: page.Pagination,
					Orders:     page.Orders,
					Summary: OrdersSummary{
						OrdersOnThisPage: len(page.Orders),
						TotalOrdersFound: page.Pagination.TotalRecords,
					},
				}, nil
			},
		),
		NewDescriptor(OrderDetailsTool,
			"Retrieves detailed information about a specific order from the BetterCommerce API. By default, returns a summary with key information including order info, customer details, pricing, items, addresses, tracking, and payment. Use detailLevel=\"full\" to get the complete raw order data with all fields. This tool requires an orderId which can be obtained from get_customer_orders.",
			orderSchema,
			func(ctx context.Context, in OrderDetailsInput) (any, error) {
				level := in.Level()
				view, err := commerce.GetOrder(ctx, in.OrderID, level)
				if err != nil {
					return nil, err
				}
				return OrderDetailsResult{DetailLevel: level, Order: view}, nil
			},
		),
	}, nil
}

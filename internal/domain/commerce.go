package domain

import (
	"encoding/json"
	"fmt"
)

// CustomerCriteria selects a customer. At least one of Email, Phone or
// Username must be set, or both FirstName and LastName.
type CustomerCriteria struct {
	Email     string
	Phone     string
	Username  string
	FirstName string
	LastName  string
}

func (c CustomerCriteria) HasSearchKey() bool {
	if c.Email != "" || c.Phone != "" || c.Username != "" {
		return true
	}
	return c.FirstName != "" && c.LastName != ""
}

// CustomerRecord is one entry of the upstream customer search result.
type CustomerRecord struct {
	UserID               string  `json:"userId"`
	Username             *string `json:"username"`
	FirstName            string  `json:"firstName"`
	LastName             string  `json:"lastName"`
	Email                string  `json:"email"`
	Mobile               string  `json:"mobile"`
	Telephone            string  `json:"telephone"`
	Gender               *string `json:"gender"`
	BirthDate            *string `json:"birthDate"`
	PostCode             *string `json:"postCode"`
	NewsLetterSubscribed bool    `json:"newsLetterSubscribed"`
	IsRegistered         bool    `json:"isRegistered"`

	// Profile holds the record exactly as the upstream returned it.
	Profile json.RawMessage `json:"-"`
}

// OrderQuery filters a customer's order history.
type OrderQuery struct {
	UserID      string
	PageNumber  int
	PageSize    int
	OrderStatus string
	DateFrom    string
	DateTo      string
	SortBy      string
}

// Money pairs a numeric amount with its display string.
type Money struct {
	Raw       float64 `json:"raw"`
	Formatted string  `json:"formatted"`
}

type OrderItem struct {
	Name string `json:"name"`
	SKU  string `json:"sku"`
	Qty  int64  `json:"qty"`
}

type OrderSummary struct {
	ID         string      `json:"id"`
	OrderNo    string      `json:"orderNo"`
	OrderDate  string      `json:"orderDate"`
	Status     string      `json:"status"`
	SubTotal   Money       `json:"subTotal"`
	Total      Money       `json:"total"`
	ItemsCount int         `json:"itemsCount"`
	Items      []OrderItem `json:"items"`
}

type Pagination struct {
	PageNumber   int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

// OrderPage is a normalized page of order summaries.
type OrderPage struct {
	Pagination Pagination     `json:"pagination"`
	Orders     []OrderSummary `json:"orders"`
}

type DetailLevel string

const (
	DetailSummary DetailLevel = "summary"
	DetailFull    DetailLevel = "full"
)

func ParseDetailLevel(value string) (DetailLevel, error) {
	switch DetailLevel(value) {
	case "":
		return DetailSummary, nil
	case DetailSummary, DetailFull:
		return DetailLevel(value), nil
	default:
		return "", fmt.Errorf("unknown detail level %q", value)
	}
}

type OrderInfo struct {
	ID            string `json:"id"`
	OrderNo       string `json:"orderNo"`
	OrderDate     string `json:"orderDate"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	Channel       string `json:"channel"`
}

type OrderCustomer struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

type OrderPricing struct {
	SubTotal       Money `json:"subTotal"`
	Discount       Money `json:"discount"`
	ShippingCharge Money `json:"shippingCharge"`
	Total          Money `json:"total"`
}

type OrderLine struct {
	Name  string `json:"name"`
	SKU   string `json:"sku"`
	Qty   int64  `json:"qty"`
	Price Money  `json:"price"`
	Total Money  `json:"total"`
}

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	State     string `json:"state"`
	PostCode  string `json:"postCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type Shipment struct {
	PlanNo         string `json:"planNo"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
	TrackingLink   string `json:"trackingLink"`
	Status         string `json:"status"`
}

type Payment struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	Amount        Money  `json:"amount"`
	TransactionID string `json:"transactionId"`
}

// OrderDetail is the condensed view of a single order.
type OrderDetail struct {
	OrderInfo       OrderInfo     `json:"orderInfo"`
	Customer        OrderCustomer `json:"customer"`
	Pricing         OrderPricing  `json:"pricing"`
	Items           []OrderLine   `json:"items"`
	ShippingAddress *Address      `json:"shippingAddress"`
	BillingAddress  *Address      `json:"billingAddress"`
	Shipments       []Shipment    `json:"tracking"`
	Payment         *Payment      `json:"payment"`
}

// OrderView is either the upstream order verbatim or its summary,
// depending on Level.
type OrderView struct {
	Level   DetailLevel
	Full    json.RawMessage
	Summary *OrderDetail
}

func (v OrderView) MarshalJSON() ([]byte, error) {
	if v.Level == DetailFull {
		if len(v.Full) == 0 {
			return []byte("null"), nil
		}
		return v.Full, nil
	}
	return json.Marshal(v.Summary)
}

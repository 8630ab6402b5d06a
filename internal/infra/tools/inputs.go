package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"commercemcp/internal/domain"
)

// Input is a decoded tool argument object that can check itself.
type Input interface {
	Validate() []string
}

const searchCriterionMessage = "At least one search criterion must be provided (email, phone, username, or firstname + lastname)"

type AuthTokenInput struct{}

func (AuthTokenInput) Validate() []string { return nil }

type CustomerDetailsInput struct {
	Email     *string `json:"email,omitempty" jsonschema:"Customer email address for lookup"`
	Phone     string  `json:"phone,omitempty" jsonschema:"Customer phone number for lookup"`
	Username  string  `json:"username,omitempty" jsonschema:"Customer username for lookup"`
	FirstName string  `json:"firstname,omitempty" jsonschema:"Customer first name (use with lastname)"`
	LastName  string  `json:"lastname,omitempty" jsonschema:"Customer last name (use with firstname)"`
}

func (in CustomerDetailsInput) Criteria() domain.CustomerCriteria {
	var email string
	if in.Email != nil {
		email = *in.Email
	}
	return domain.CustomerCriteria{
		Email:     email,
		Phone:     in.Phone,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
}

// Validate checks field formats first and the search predicate only
// when every field is well formed. A supplied email must be well formed
// even when empty.
func (in CustomerDetailsInput) Validate() []string {
	if in.Email != nil && !validEmail(*in.Email) {
		return []string{"Invalid email"}
	}
	if !in.Criteria().HasSearchKey() {
		return []string{searchCriterionMessage}
	}
	return nil
}

type CustomerOrdersInput struct {
	UserID      string `json:"userId" jsonschema:"Customer user ID (obtained from get_customer_details)"`
	PageNumber  *int   `json:"pageNumber,omitempty" jsonschema:"Page number for pagination (default: 1)"`
	PageSize    *int   `json:"pageSize,omitempty" jsonschema:"Number of orders per page (default: 10, max: 100). Let the calling agent decide based on their needs."`
	OrderStatus string `json:"orderStatus,omitempty" jsonschema:"Filter by order status (e.g., \"Delivered\", \"Cancelled\", \"Incomplete\", \"Pending\")"`
	DateFrom    string `json:"dateFrom,omitempty" jsonschema:"Filter orders from this date (ISO format: YYYY-MM-DD)"`
	DateTo      string `json:"dateTo,omitempty" jsonschema:"Filter orders until this date (ISO format: YYYY-MM-DD)"`
	SortBy      string `json:"sortBy,omitempty" jsonschema:"Sort orders by field (e.g., \"orderDate\", \"total\")"`
}

func (in CustomerOrdersInput) Validate() []string {
	var problems []string
	if in.UserID == "" {
		problems = append(problems, "userId: String must contain at least 1 character(s)")
	}
	if in.PageNumber != nil && *in.PageNumber <= 0 {
		problems = append(problems, "pageNumber: Number must be greater than 0")
	}
	if in.PageSize != nil {
		switch {
		case *in.PageSize <= 0:
			problems = append(problems, "pageSize: Number must be greater than 0")
		case *in.PageSize > domain.MaxPageSize:
			problems = append(problems, fmt.Sprintf("pageSize: Number must be less than or equal to %d", domain.MaxPageSize))
		}
	}
	return problems
}

func (in CustomerOrdersInput) Query() domain.OrderQuery {
	query := domain.OrderQuery{
		UserID:      in.UserID,
		PageNumber:  domain.DefaultPageNumber,
		PageSize:    domain.DefaultPageSize,
		OrderStatus: in.OrderStatus,
		DateFrom:    in.DateFrom,
		DateTo:      in.DateTo,
		SortBy:      in.SortBy,
	}
	if in.PageNumber != nil {
		query.PageNumber = *in.PageNumber
	}
	if in.PageSize != nil {
		query.PageSize = *in.PageSize
	}
	return query
}

type OrderDetailsInput struct {
	OrderID     string `json:"orderId" jsonschema:"Order ID to retrieve details for (obtained from get_customer_orders)"`
	DetailLevel string `json:"detailLevel,omitempty" jsonschema:"Level of detail: \"summary\" (default) for key information, \"full\" for complete order data"`
}

func (in OrderDetailsInput) Validate() []string {
	var problems []string
	if in.OrderID == "" {
		problems = append(problems, "orderId: String must contain at least 1 character(s)")
	}
	if _, err := domain.ParseDetailLevel(in.DetailLevel); err != nil {
		problems = append(problems, fmt.Sprintf("detailLevel: Invalid enum value. Expected 'summary' | 'full', received '%s'", in.DetailLevel))
	}
	return problems
}

func (in OrderDetailsInput) Level() domain.DetailLevel {
	level, err := domain.ParseDetailLevel(in.DetailLevel)
	if err != nil {
		return domain.DetailSummary
	}
	return level
}

// validEmail accepts a bare address whose domain has at least two
// non-empty labels.
func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	if at < 0 {
		return false
	}
	labels := strings.Split(value[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}

func decodeArguments[In Input](raw json.RawMessage) (In, []string) {
	var in In
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return in, in.Validate()
	}
	if trimmed[0] != '{' {
		return in, []string{"Expected object, received " + jsonKind(trimmed[0])}
	}
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return in, []string{decodeProblem(err)}
	}
	return in, in.Validate()
}

func decodeProblem(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s: Expected %s, received %s", typeErr.Field, kindName(typeErr.Type), typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "arguments are not valid JSON"
	}
	return err.Error()
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return t.String()
	}
}

func jsonKind(first byte) string {
	switch first {
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

// inputSchema derives the advertised schema from the input struct.
func inputSchema[In Input]() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, err
	}
	if schema.Properties == nil {
		schema.Properties = map[string]*jsonschema.Schema{}
	}
	return schema, nil
}

// integerProperty narrows a pointer-typed integer property to a plain
// integer with bounds; absent means default.
func integerProperty(schema *jsonschema.Schema, name string, minimum, maximum float64) {
	prop, ok := schema.Properties[name]
	if !ok {
		return
	}
	prop.Types = nil
	prop.Type = "integer"
	prop.Minimum = jsonschema.Ptr(minimum)
	if maximum > 0 {
		prop.Maximum = jsonschema.Ptr(maximum)
	}
}

// stringProperty narrows a pointer-typed string property to a plain
// string with the given format.
func stringProperty(schema *jsonschema.Schema, name, format string) {
	prop, ok := schema.Properties[name]
	if !ok {
		return
	}
	prop.Types = nil
	prop.Type = "string"
	prop.Format = format
}

func enumProperty(schema *jsonschema.Schema, name string, values ...string) {
	prop, ok := schema.Properties[name]
	if !ok {
		return
	}
	prop.Enum = make([]any, 0, len(values))
	for _, value := range values {
		prop.Enum = append(prop.Enum, value)
	}
	if len(values) > 0 {
		prop.Default = json.RawMessage(`"` + values[0] + `"`)
	}
}

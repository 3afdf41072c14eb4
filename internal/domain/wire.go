package domain

// Request and response bodies shared by the API client and the server
// handlers.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type AddItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []OrderItem     `json:"items"`
	ShippingAddress Address         `json:"shippingAddress"`
	DeliveryMethod  DeliveryMethod  `json:"deliveryMethod"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentInfo     *PaymentDetails `json:"paymentInfo,omitempty"`
	DeliveryFee     float64         `json:"deliveryFee"`
}

type UpdateProfileRequest struct {
	Name      string    `json:"name,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

type CreateConversationRequest struct {
	Subject string `json:"subject"`
}

type PostMessageRequest struct {
	Body string `json:"body"`
}

type UpdateConversationStatusRequest struct {
	Status ConversationStatus `json:"status"`
}

// StockConflict is the structured payload returned when a requested
// quantity exceeds available inventory, so the caller can adjust instead
// of retrying blindly.
type StockConflict struct {
	ProductID string `json:"productId"`
	Available int    `json:"available"`
	InCart    int    `json:"inCart"`
	Requested int    `json:"requested"`
}

// ErrorResponse is the uniform error body. Code distinguishes the
// authentication-expired and stock-conflict branches from generic
// failures; Stock and Fields carry the structured variants.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Stock  *StockConflict    `json:"stock,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Error codes used by ErrorResponse.Code.
const (
	CodeAuthRequired  = "auth_required"
	CodeAdminNoCart   = "admin_no_cart"
	CodeStockConflict = "stock_conflict"
	CodeValidation    = "validation_failed"
	CodeNotFound      = "not_found"
	CodeInvalidInput  = "invalid_request"
	CodeInternal      = "internal_error"
)

package domain

import "time"

// Cart is the authoritative server-side shopping cart. Every mutating
// endpoint returns the full updated cart; clients replace their copy
// wholesale instead of merging deltas.
type Cart struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      string     `json:"userId" bson:"user_id"`
	Items       []CartItem `json:"items" bson:"items"`
	TotalAmount float64    `json:"totalAmount" bson:"total_amount"`
	CreatedAt   time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updated_at"`
}

// CartItem is a single cart line. UnitPrice is snapshotted when the item
// is added; later catalog price changes do not touch existing lines.
type CartItem struct {
	ID        string  `json:"id" bson:"id"`
	ProductID string  `json:"productId" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	UnitPrice float64 `json:"unitPrice" bson:"unit_price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Size      string  `json:"size,omitempty" bson:"size,omitempty"`
	Color     string  `json:"color,omitempty" bson:"color,omitempty"`
}

type Address struct {
	Street  string `json:"street" bson:"street" validate:"required"`
	City    string `json:"city" bson:"city" validate:"required"`
	Region  string `json:"region" bson:"region" validate:"required"`
	ZipCode string `json:"zipCode" bson:"zip_code" validate:"required"`
	Country string `json:"country" bson:"country" validate:"required"`
}

type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryPriority DeliveryMethod = "priority"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryStandard || m == DeliveryPriority
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentGCash          PaymentMethod = "gcash"
	PaymentPayMaya        PaymentMethod = "paymaya"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCashOnDelivery || m == PaymentGCash || m == PaymentPayMaya
}

// RequiresDetails reports whether the method needs a fully populated
// PaymentDetails record before an order may be submitted.
func (m PaymentMethod) RequiresDetails() bool {
	return m == PaymentGCash || m == PaymentPayMaya
}

type PaymentDetails struct {
	AccountName     string `json:"accountName" bson:"account_name" validate:"required"`
	AccountNumber   string `json:"accountNumber" bson:"account_number" validate:"required"`
	ReferenceNumber string `json:"referenceNumber" bson:"reference_number" validate:"required"`
	DateCreated     string `json:"dateCreated" bson:"date_created" validate:"required"`
}

type OrderStatus string

const (
	OrderPlaced     OrderStatus = "placed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Order is an immutable snapshot created from a checkout submission.
// Items are decoupled from the live cart; only the status fields change
// afterwards, and only server-side.
type Order struct {
	ID              string          `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          string          `json:"userId" bson:"user_id"`
	Items           []OrderItem     `json:"items" bson:"items"`
	ShippingAddress Address         `json:"shippingAddress" bson:"shipping_address"`
	DeliveryMethod  DeliveryMethod  `json:"deliveryMethod" bson:"delivery_method"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" bson:"payment_method"`
	PaymentInfo     *PaymentDetails `json:"paymentInfo,omitempty" bson:"payment_info,omitempty"`
	DeliveryFee     float64         `json:"deliveryFee" bson:"delivery_fee"`
	TotalAmount     float64         `json:"totalAmount" bson:"total_amount"`
	OrderStatus     OrderStatus     `json:"orderStatus" bson:"order_status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" bson:"payment_status"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
}

type OrderItem struct {
	ProductID string  `json:"productId" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	UnitPrice float64 `json:"unitPrice" bson:"unit_price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Size      string  `json:"size,omitempty" bson:"size,omitempty"`
	Color     string  `json:"color,omitempty" bson:"color,omitempty"`
}

type Product struct {
	ID          string   `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Category    string   `json:"category" bson:"category"`
	Price       float64  `json:"price" bson:"price"`
	Stock       int      `json:"stock" bson:"stock"`
	Sizes       []string `json:"sizes,omitempty" bson:"sizes,omitempty"`
	Colors      []string `json:"colors,omitempty" bson:"colors,omitempty"`
	Featured    bool     `json:"featured" bson:"featured"`
}

// FilterOptions is the distinct set of values the catalog can be
// filtered by.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Sizes      []string `json:"sizes"`
	Colors     []string `json:"colors"`
}

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	Role         string    `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Addresses    []Address `json:"addresses" bson:"addresses"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type ConversationStatus string

const (
	ConversationOpen   ConversationStatus = "open"
	ConversationClosed ConversationStatus = "closed"
)

type Conversation struct {
	ID        string             `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"user_id"`
	Subject   string             `json:"subject" bson:"subject"`
	Status    ConversationStatus `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type Message struct {
	ID             string    `json:"id" bson:"id"`
	ConversationID string    `json:"conversationId" bson:"conversation_id"`
	Sender         string    `json:"sender" bson:"sender"`
	Body           string    `json:"body" bson:"body"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
}

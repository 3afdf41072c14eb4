package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter narrows a catalog listing. Zero values mean no filter.
type ProductFilter struct {
	Category     string
	Size         string
	Color        string
	FeaturedOnly bool
}

// Interfaces are defined here, on the consumer side; MongoDB and the
// in-memory store both implement them.

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	FilterOptions(ctx context.Context) (*domain.FilterOptions, error)

	// AdjustStock changes a product's stock by delta, refusing to go
	// negative with ErrInsufficientStock.
	AdjustStock(ctx context.Context, productID string, delta int) error
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	UpdateConversationStatus(ctx context.Context, id string, status domain.ConversationStatus) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, conversationID, afterID string) ([]domain.Message, error)
}

// Repository is the full persistence surface of the storefront.
type Repository interface {
	UserRepository
	ProductRepository
	CartRepository
	OrderRepository
	ChatRepository
}

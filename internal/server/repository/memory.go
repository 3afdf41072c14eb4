package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fjod/go_storefront/internal/domain"
)

// MemoryRepository implements Repository with in-memory maps. Used for
// tests and for dev runs without a MongoDB instance.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[string]*domain.User
	products      map[string]*domain.Product
	carts         map[string]*domain.Cart // keyed by user ID
	orders        map[string]*domain.Order
	conversations map[string]*domain.Conversation
	messages      map[string][]domain.Message // keyed by conversation ID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[string]*domain.User),
		products:      make(map[string]*domain.Product),
		carts:         make(map[string]*domain.Cart),
		orders:        make(map[string]*domain.Order),
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string][]domain.Message),
	}
}

// --- users ---

func (r *MemoryRepository) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *MemoryRepository) GetUser(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) UpdateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

// --- products ---

func (r *MemoryRepository) CreateProduct(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	p := *product
	r.products[product.ID] = &p
	return nil
}

func (r *MemoryRepository) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := *product
	return &p, nil
}

func (r *MemoryRepository) ListProducts(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []domain.Product
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Size != "" && !contains(p.Sizes, filter.Size) {
			continue
		}
		if filter.Color != "" && !contains(p.Colors, filter.Color) {
			continue
		}
		if filter.FeaturedOnly && !p.Featured {
			continue
		}
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *MemoryRepository) FilterOptions(_ context.Context) (*domain.FilterOptions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make(map[string]struct{})
	sizes := make(map[string]struct{})
	colors := make(map[string]struct{})
	for _, p := range r.products {
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
		for _, s := range p.Sizes {
			sizes[s] = struct{}{}
		}
		for _, c := range p.Colors {
			colors[c] = struct{}{}
		}
	}

	return &domain.FilterOptions{
		Categories: sortedKeys(categories),
		Sizes:      sortedKeys(sizes),
		Colors:     sortedKeys(colors),
	}, nil
}

func (r *MemoryRepository) AdjustStock(_ context.Context, productID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return ErrNotFound
	}
	if product.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	product.Stock += delta
	return nil
}

// --- carts ---

func (r *MemoryRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *cart
	c.Items = append([]domain.CartItem(nil), cart.Items...)
	return &c, nil
}

func (r *MemoryRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}

	c := *cart
	c.Items = append([]domain.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &c
	return nil
}

func (r *MemoryRepository) DeleteCart(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[userID]; !ok {
		return ErrNotFound
	}
	delete(r.carts, userID)
	return nil
}

// --- orders ---

func (r *MemoryRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	o := *order
	o.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &o
	return nil
}

func (r *MemoryRepository) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o := *order
	o.Items = append([]domain.OrderItem(nil), order.Items...)
	return &o, nil
}

func (r *MemoryRepository) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// --- chat ---

func (r *MemoryRepository) CreateConversation(_ context.Context, conv *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	conv.CreatedAt = time.Now()
	c := *conv
	r.conversations[conv.ID] = &c
	return nil
}

func (r *MemoryRepository) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *conv
	return &c, nil
}

func (r *MemoryRepository) ListConversations(_ context.Context, userID string) ([]domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var convs []domain.Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			convs = append(convs, *c)
		}
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].CreatedAt.After(convs[j].CreatedAt) })
	return convs, nil
}

func (r *MemoryRepository) UpdateConversationStatus(_ context.Context, id string, status domain.ConversationStatus) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	conv.Status = status
	c := *conv
	return &c, nil
}

func (r *MemoryRepository) AppendMessage(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[msg.ConversationID]; !ok {
		return ErrNotFound
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], *msg)
	return nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, conversationID, afterID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := append([]domain.Message(nil), r.messages[conversationID]...)
	return messagesAfter(msgs, afterID), nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

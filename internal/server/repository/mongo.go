package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fjod/go_storefront/internal/domain"
)

type mongoRepository struct {
	users         *mongo.Collection
	products      *mongo.Collection
	carts         *mongo.Collection
	orders        *mongo.Collection
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoRepository wraps the database, creating the indexes the
// queries below depend on. The unique cart index is what keeps
// concurrent first-time upserts from leaving two cart documents for
// one user, so the repository is not usable until they exist.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (Repository, error) {
	m := &mongoRepository{
		users:         db.Collection("users"),
		products:      db.Collection("products"),
		carts:         db.Collection("carts"),
		orders:        db.Collection("orders"),
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *mongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = m.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create carts index: %w", err)
	}

	_, err = m.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}
	return nil
}

// --- users ---

func (m *mongoRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	user.CreatedAt = time.Now()

	_, err := m.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (m *mongoRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (m *mongoRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := m.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- products ---

func (m *mongoRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}
	if _, err := m.products.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := m.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (m *mongoRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Size != "" {
		query["sizes"] = filter.Size
	}
	if filter.Color != "" {
		query["colors"] = filter.Color
	}
	if filter.FeaturedOnly {
		query["featured"] = true
	}

	cursor, err := m.products.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (m *mongoRepository) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	opts := &domain.FilterOptions{}

	categories, err := m.products.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	for _, c := range categories {
		if s, ok := c.(string); ok && s != "" {
			opts.Categories = append(opts.Categories, s)
		}
	}

	sizes, err := m.products.Distinct(ctx, "sizes", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get sizes: %w", err)
	}
	for _, v := range sizes {
		if s, ok := v.(string); ok && s != "" {
			opts.Sizes = append(opts.Sizes, s)
		}
	}

	colors, err := m.products.Distinct(ctx, "colors", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get colors: %w", err)
	}
	for _, v := range colors {
		if s, ok := v.(string); ok && s != "" {
			opts.Colors = append(opts.Colors, s)
		}
	}

	return opts, nil
}

func (m *mongoRepository) AdjustStock(ctx context.Context, productID string, delta int) error {
	filter := bson.M{"_id": productID}
	if delta < 0 {
		// Guard in the filter so the decrement is atomic.
		filter["stock"] = bson.M{"$gte": -delta}
	}

	result, err := m.products.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stock": delta}})
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if result.MatchedCount == 0 {
		// Either the product is gone or the guard refused the decrement.
		if _, getErr := m.GetProduct(ctx, productID); getErr != nil {
			return getErr
		}
		return ErrInsufficientStock
	}
	return nil
}

// --- carts ---

func (m *mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

func (m *mongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	if cart.ID == "" {
		cart.ID = primitive.NewObjectID().Hex()
	}

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": cart}
	opts := options.Update().SetUpsert(true)

	if _, err := m.carts.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, userID string) error {
	result, err := m.carts.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- orders ---

func (m *mongoRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}
	order.CreatedAt = time.Now()

	if _, err := m.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := m.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoRepository) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	cursor, err := m.orders.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// --- chat ---

func (m *mongoRepository) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = primitive.NewObjectID().Hex()
	}
	conv.CreatedAt = time.Now()

	if _, err := m.conversations.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := m.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (m *mongoRepository) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	cursor, err := m.conversations.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var convs []domain.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return convs, nil
}

func (m *mongoRepository) UpdateConversationStatus(ctx context.Context, id string, status domain.ConversationStatus) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := m.conversations.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update conversation status: %w", err)
	}
	return &conv, nil
}

func (m *mongoRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	msg.CreatedAt = time.Now()

	if _, err := m.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (m *mongoRepository) ListMessages(ctx context.Context, conversationID, afterID string) ([]domain.Message, error) {
	cursor, err := m.messages.Find(ctx, bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var msgs []domain.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messagesAfter(msgs, afterID), nil
}

// messagesAfter trims a chronologically sorted batch to those after the
// given message ID. An unknown or empty ID returns the whole batch.
func messagesAfter(msgs []domain.Message, afterID string) []domain.Message {
	if afterID == "" {
		return msgs
	}
	for i, msg := range msgs {
		if msg.ID == afterID {
			return msgs[i+1:]
		}
	}
	return msgs
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internity/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig carries the connection settings for the document backend.
// Zero pool sizes fall back to the defaults below.
type MongoConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	MinPoolSize uint64
}

const (
	defaultMaxPoolSize = 100
	defaultMinPoolSize = 10
)

func (c MongoConfig) withDefaults() MongoConfig {
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = defaultMaxPoolSize
	}
	if c.MinPoolSize == 0 {
		c.MinPoolSize = defaultMinPoolSize
	}
	return c
}

// ConnectMongo dials the backend and verifies it with a ping before any
// session state is served from it. The caller's context bounds the whole
// handshake.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	cfg = cfg.withDefaults()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return client.Database(cfg.Database), nil
}

type cartDocument struct {
	SessionID string                `bson:"session_id"`
	Version   int                   `bson:"version"`
	Items     []domain.CartLineItem `bson:"items"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

type wishlistDocument struct {
	SessionID string                `bson:"session_id"`
	Version   int                   `bson:"version"`
	Items     []domain.WishlistItem `bson:"items"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

// MongoStateRepository persists both stores as per-session documents,
// one collection each, full-state upsert on every save.
type MongoStateRepository struct {
	carts     *mongo.Collection
	wishlists *mongo.Collection
}

func NewMongoStateRepository(db *mongo.Database) *MongoStateRepository {
	return &MongoStateRepository{
		carts:     db.Collection("carts"),
		wishlists: db.Collection("wishlists"),
	}
}

// CreateIndexes sets up the unique session index and a 90-day TTL on
// abandoned state for both collections.
func (m *MongoStateRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60),
		},
	}

	for _, coll := range []*mongo.Collection{m.carts, m.wishlists} {
		if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Carts returns the cart-facing view of the repository.
func (m *MongoStateRepository) Carts() CartRepository {
	return mongoCartRepository{m}
}

// Wishlists returns the wishlist-facing view of the repository.
func (m *MongoStateRepository) Wishlists() WishlistRepository {
	return mongoWishlistRepository{m}
}

type mongoCartRepository struct {
	state *MongoStateRepository
}

func (r mongoCartRepository) Load(ctx context.Context, sessionID string) ([]domain.CartLineItem, error) {
	var doc cartDocument
	err := r.state.carts.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to load cart state: %w", err)
	}
	if doc.Version != stateVersion {
		return nil, fmt.Errorf("unsupported state version %d", doc.Version)
	}
	return doc.Items, nil
}

func (r mongoCartRepository) Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error {
	doc := cartDocument{
		SessionID: sessionID,
		Version:   stateVersion,
		Items:     items,
		UpdatedAt: time.Now(),
	}

	filter := bson.M{"session_id": sessionID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := r.state.carts.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart state: %w", err)
	}
	return nil
}

func (r mongoCartRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.state.carts.DeleteOne(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete cart state: %w", err)
	}
	return nil
}

type mongoWishlistRepository struct {
	state *MongoStateRepository
}

func (r mongoWishlistRepository) Load(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	var doc wishlistDocument
	err := r.state.wishlists.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to load wishlist state: %w", err)
	}
	if doc.Version != stateVersion {
		return nil, fmt.Errorf("unsupported state version %d", doc.Version)
	}
	return doc.Items, nil
}

func (r mongoWishlistRepository) Save(ctx context.Context, sessionID string, items []domain.WishlistItem) error {
	doc := wishlistDocument{
		SessionID: sessionID,
		Version:   stateVersion,
		Items:     items,
		UpdatedAt: time.Now(),
	}

	filter := bson.M{"session_id": sessionID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := r.state.wishlists.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert wishlist state: %w", err)
	}
	return nil
}

func (r mongoWishlistRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.state.wishlists.DeleteOne(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete wishlist state: %w", err)
	}
	return nil
}

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/obmertz/stocksync/internal/domain/models"
)

// ErrProductNotFound is returned when no product matches the requested SKU.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the persistence operations the sync core relies
// on. The store is a plain document collection: no transactions, each call is
// an independent read or write.
type ProductRepository interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListSyncable(ctx context.Context) ([]models.Product, error)
	UpdateOnHand(ctx context.Context, id string, onHand int) error
}

// MongoDBRepository implements ProductRepository on MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "products",
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// FindBySKU returns the product carrying the given SKU, or ErrProductNotFound.
func (r *MongoDBRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.collection().FindOne(ctx, bson.M{"sku": sku}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: sku %q", ErrProductNotFound, sku)
	}
	if err != nil {
		return nil, fmt.Errorf("find product by sku %q: %w", sku, err)
	}
	return &product, nil
}

// ListSyncable returns every product with a non-empty SKU. Products without a
// SKU cannot be matched remotely and are skipped by every sync path.
func (r *MongoDBRepository) ListSyncable(ctx context.Context) ([]models.Product, error) {
	filter := bson.M{"sku": bson.M{"$exists": true, "$ne": ""}}

	cursor, err := r.collection().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list syncable products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode syncable products: %w", err)
	}
	return products, nil
}

// UpdateOnHand persists a new authoritative quantity and bumps lastUpdated.
func (r *MongoDBRepository) UpdateOnHand(ctx context.Context, id string, onHand int) error {
	update := bson.M{"$set": bson.M{
		"onHand":      onHand,
		"lastUpdated": time.Now().UTC(),
	}}

	result, err := r.collection().UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update on-hand for product %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: id %s", ErrProductNotFound, id)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

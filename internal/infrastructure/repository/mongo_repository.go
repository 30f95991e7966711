package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/infrastructure/repository/entity"
	"ims-storefront-bridge/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShopRepository implements ShopRepository using MongoDB
type MongoShopRepository struct {
	shopsCollection *mongo.Collection
}

// NewMongoShopRepository creates a new MongoDB shop repository
func NewMongoShopRepository(db *mongo.Database) *MongoShopRepository {
	return &MongoShopRepository{
		shopsCollection: db.Collection("shops"),
	}
}

// EnsureIndexes creates the unique shop index
func (r *MongoShopRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.shopsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shop", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create shop index: %w", err)
	}
	return nil
}

// SaveCredential saves or replaces the credential of a shop
func (r *MongoShopRepository) SaveCredential(ctx context.Context, cred *domain.ShopCredential) error {
	if cred.EncryptedToken == "" {
		return errors.New("refusing to store a shop credential without an encrypted token")
	}

	doc := entity.MongoShopDocFromDomain(cred)
	doc.UpdatedAt = time.Now()
	installedAt := doc.InstalledAt
	if installedAt.IsZero() {
		installedAt = doc.UpdatedAt
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"shop": cred.Shop}
	update := bson.M{
		"$set": bson.M{
			"shop":           doc.Shop,
			"encryptedToken": doc.EncryptedToken,
			"scope":          doc.Scope,
			"updatedAt":      doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{"installedAt": installedAt},
	}

	_, err := r.shopsCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save shop credential: %w", err)
	}

	return nil
}

// GetCredential retrieves the credential of a shop
func (r *MongoShopRepository) GetCredential(ctx context.Context, shop string) (*domain.ShopCredential, error) {
	var doc entity.MongoShopDoc
	filter := bson.M{"shop": shop}

	err := r.shopsCollection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop credential: %w", err)
	}

	return doc.ToDomain(), nil
}

// MongoSyncRunRepository implements SyncRunRepository using MongoDB
type MongoSyncRunRepository struct {
	runsCollection *mongo.Collection
}

// NewMongoSyncRunRepository creates a new MongoDB sync run repository
func NewMongoSyncRunRepository(db *mongo.Database) *MongoSyncRunRepository {
	return &MongoSyncRunRepository{
		runsCollection: db.Collection("sync_runs"),
	}
}

// EnsureIndexes creates the seller history index
func (r *MongoSyncRunRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.runsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sellerNumber", Value: 1}, {Key: "startedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create sync run index: %w", err)
	}
	return nil
}

// SaveRun appends a sync report to the history
func (r *MongoSyncRunRepository) SaveRun(ctx context.Context, report *domain.SyncReport) error {
	doc := entity.MongoSyncRunDocFromDomain(report)
	doc.ID = primitive.NewObjectID()

	_, err := r.runsCollection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}

	return nil
}

// LatestRun returns the most recent report of a seller, or nil when there is none
func (r *MongoSyncRunRepository) LatestRun(ctx context.Context, sellerNumber string) (*domain.SyncReport, error) {
	var doc entity.MongoSyncRunDoc
	filter := bson.M{"sellerNumber": sellerNumber}
	opts := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	err := r.runsCollection.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}

	return doc.ToDomain(), nil
}

var (
	_ ports.ShopRepository    = (*MongoShopRepository)(nil)
	_ ports.SyncRunRepository = (*MongoSyncRunRepository)(nil)
)

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultCartsCollection = "Carts"

// addItemAttempts bounds the retry after losing a cart creation race.
const addItemAttempts = 2

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database, collection string) *MongoRepository {
	if collection == "" {
		collection = DefaultCartsCollection
	}
	return &MongoRepository{
		collection: db.Collection(collection),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, owner string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"owner": owner}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// AddItem pushes item unless the owner's cart already holds its petId. The
// filter only matches carts without the pet, so an existing duplicate turns
// the upsert into an insert that the unique owner index rejects.
func (m *MongoRepository) AddItem(ctx context.Context, owner string, item domain.CartItem) (domain.AddResult, error) {
	now := time.Now().UTC()

	filter := bson.M{
		"owner":       owner,
		"items.petId": bson.M{"$ne": item.PetID},
	}
	update := bson.M{
		"$push":        bson.M{"items": item},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	for attempt := 0; attempt < addItemAttempts; attempt++ {
		var cart domain.Cart
		err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart)
		if err == nil {
			return domain.AddResult{Outcome: domain.OutcomeAdded, Items: cart.Items}, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return domain.AddResult{}, fmt.Errorf("failed to add item: %w", err)
		}

		existing, errGet := m.GetCart(ctx, owner)
		if errGet != nil && !errors.Is(errGet, ErrCartNotFound) {
			return domain.AddResult{}, errGet
		}
		if existing.HasItem(item.PetID) {
			return domain.AddResult{Outcome: domain.OutcomeAlreadyExists, Items: existing.Items}, nil
		}
		// another request created the cart between our filter and insert
	}

	return domain.AddResult{}, fmt.Errorf("failed to add item: cart for %q kept changing", owner)
}

func (m *MongoRepository) ReplaceItems(ctx context.Context, owner string, items []domain.CartItem) (domain.WriteAck, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	now := time.Now().UTC()

	filter := bson.M{"owner": owner}
	update := bson.M{
		"$set":         bson.M{"items": items, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	result, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return domain.WriteAck{}, fmt.Errorf("failed to replace cart: %w", err)
	}

	return toWriteAck(result), nil
}

func (m *MongoRepository) RemoveItem(ctx context.Context, owner, petID string) (domain.WriteAck, error) {
	filter := bson.M{"owner": owner}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"petId": petID},
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return domain.WriteAck{}, fmt.Errorf("failed to remove item: %w", err)
	}

	return toWriteAck(result), nil
}

func (m *MongoRepository) DeleteCarts(ctx context.Context, owner string) (int64, error) {
	filter := bson.M{"owner": owner}

	result, err := m.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart: %w", err)
	}

	return result.DeletedCount, nil
}

// CreateIndexes must run before AddItem is used: the unique owner index is
// what keeps one cart per owner.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func toWriteAck(result *mongo.UpdateResult) domain.WriteAck {
	return domain.WriteAck{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedCount: result.UpsertedCount,
		UpsertedID:    result.UpsertedID,
	}
}

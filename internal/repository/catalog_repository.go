package repository

import (
	"context"
	"fmt"

	"github.com/fjod/go_petshop/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultProductsCollection = "Products"
	DefaultBreedsCollection   = "Breeds"
	DefaultPetsCollection     = "Pet"
)

// MongoListingRepository backs both the product and the breed catalog; the
// two differ only in their collection.
type MongoListingRepository struct {
	collection *mongo.Collection
}

func NewMongoListingRepository(db *mongo.Database, collection string) *MongoListingRepository {
	return &MongoListingRepository{
		collection: db.Collection(collection),
	}
}

func (m *MongoListingRepository) InsertListing(ctx context.Context, listing *domain.Listing) (string, error) {
	result, err := m.collection.InsertOne(ctx, listing)
	if err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", m.collection.Name(), err)
	}
	listing.ID = insertedID(result)
	return listing.ID, nil
}

// ListListings returns entries in insertion order.
func (m *MongoListingRepository) ListListings(ctx context.Context, limit int64) ([]domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", m.collection.Name(), err)
	}

	listings := make([]domain.Listing, 0)
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", m.collection.Name(), err)
	}
	return listings, nil
}

func (m *MongoListingRepository) DeleteListing(ctx context.Context, id string) error {
	return deleteByID(ctx, m.collection, id, ErrListingNotFound)
}

type MongoPetRepository struct {
	collection *mongo.Collection
}

func NewMongoPetRepository(db *mongo.Database, collection string) *MongoPetRepository {
	if collection == "" {
		collection = DefaultPetsCollection
	}
	return &MongoPetRepository{
		collection: db.Collection(collection),
	}
}

func (m *MongoPetRepository) InsertPet(ctx context.Context, pet *domain.Pet) (string, error) {
	result, err := m.collection.InsertOne(ctx, pet)
	if err != nil {
		return "", fmt.Errorf("failed to insert pet: %w", err)
	}
	pet.ID = insertedID(result)
	return pet.ID, nil
}

func (m *MongoPetRepository) ListPets(ctx context.Context, q PetQuery) ([]domain.Pet, error) {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	// ObjectIDs grow with insertion time
	order := 1
	if q.NewestFirst {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: order}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}

	pets := make([]domain.Pet, 0)
	if err := cursor.All(ctx, &pets); err != nil {
		return nil, fmt.Errorf("failed to decode pets: %w", err)
	}
	return pets, nil
}

// ReviewPet records an admin decision. Approval clears an earlier rejection
// and the other way round.
func (m *MongoPetRepository) ReviewPet(ctx context.Context, id string, review domain.PetReview) (domain.WriteAck, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return domain.WriteAck{}, err
	}

	var update bson.M
	switch review.Status {
	case domain.PetApproved:
		update = bson.M{
			"$set":   bson.M{"status": review.Status, "approvedAt": review.At},
			"$unset": bson.M{"rejectReason": "", "rejectedAt": ""},
		}
	default:
		update = bson.M{
			"$set":   bson.M{"status": review.Status, "rejectReason": review.Reason, "rejectedAt": review.At},
			"$unset": bson.M{"approvedAt": ""},
		}
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return domain.WriteAck{}, fmt.Errorf("failed to review pet: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.WriteAck{}, ErrPetNotFound
	}
	return toWriteAck(result), nil
}

func (m *MongoPetRepository) DeletePet(ctx context.Context, id string) error {
	return deleteByID(ctx, m.collection, id, ErrPetNotFound)
}

func (m *MongoPetRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func deleteByID(ctx context.Context, collection *mongo.Collection, id string, notFound error) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection.Name(), err)
	}
	if result.DeletedCount == 0 {
		return notFound
	}
	return nil
}

func insertedID(result *mongo.InsertOneResult) string {
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		return id.Hex()
	}
	return fmt.Sprint(result.InsertedID)
}

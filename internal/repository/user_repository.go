package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_petshop/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultUsersCollection = "Users"

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database, collection string) *MongoUserRepository {
	if collection == "" {
		collection = DefaultUsersCollection
	}
	return &MongoUserRepository{
		collection: db.Collection(collection),
	}
}

// InsertUser relies on the unique email index, so two concurrent sign-ups
// for one address cannot both succeed.
func (m *MongoUserRepository) InsertUser(ctx context.Context, user *domain.User) (string, error) {
	result, err := m.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrUserExists
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = insertedID(result)
	return user.ID, nil
}

func (m *MongoUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := m.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (m *MongoUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := m.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (m *MongoUserRepository) SetRole(ctx context.Context, id string, role domain.Role) (domain.WriteAck, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return domain.WriteAck{}, err
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return domain.WriteAck{}, fmt.Errorf("failed to set user role: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.WriteAck{}, ErrUserNotFound
	}
	return toWriteAck(result), nil
}

func (m *MongoUserRepository) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, m.collection, id, ErrUserNotFound)
}

func (m *MongoUserRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_petshop/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const DefaultPaymentsCollection = "Payments"

type MongoPaymentRepository struct {
	collection *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database, collection string) *MongoPaymentRepository {
	if collection == "" {
		collection = DefaultPaymentsCollection
	}
	return &MongoPaymentRepository{
		collection: db.Collection(collection),
	}
}

func (m *MongoPaymentRepository) InsertPayment(ctx context.Context, payment *domain.Payment) (string, error) {
	result, err := m.collection.InsertOne(ctx, payment)
	if err != nil {
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}

	payment.ID = insertedID(result)
	return payment.ID, nil
}

func (m *MongoPaymentRepository) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoPaymentRepository) ListPaymentsByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	return m.find(ctx, bson.M{"email": email})
}

func (m *MongoPaymentRepository) find(ctx context.Context, filter bson.M) ([]domain.Payment, error) {
	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]domain.Payment, 0)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

func (m *MongoPaymentRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"email": email}}},
		{{Key: "$count", Value: "totalOrders"}},
	}

	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var rows []struct {
		TotalOrders int64 `bson:"totalOrders"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode order count: %w", err)
	}
	// $count emits nothing when no document matched
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalOrders, nil
}

func (m *MongoPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"orderStatus": status}}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *MongoPaymentRepository) DeletePayment(ctx context.Context, id string) error {
	return deleteByID(ctx, m.collection, id, ErrOrderNotFound)
}

func (m *MongoPaymentRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.Join(ErrInvalidID, err)
	}
	return objectID, nil
}

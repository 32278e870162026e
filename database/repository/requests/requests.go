package requestsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carebook/database"
	"carebook/models"
	"carebook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// RequestRepository stores service requests.
type RequestRepository interface {
	CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error
	GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Assign(ctx context.Context, id string, caregiver models.CaregiverView) (*models.ServiceRequest, error)
	ExistsForRecurring(ctx context.Context, recurringID, date string) (bool, error)
}

type MongoRequestRepo struct {
	coll *mongo.Collection
}

func NewMongoRequestRepo(db *mongo.Database) *MongoRequestRepo {
	repo := &MongoRequestRepo{coll: db.Collection("service_requests")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "requesterId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "recurringId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"recurringId": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		utils.GetLogger().Warn("failed to create request indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoRequestRepo) CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create service request: %w", err)
	}
	return nil
}

// GetRequest loads a request. Older documents carry the caregiver under
// several legacy keys; all of them are folded into Caregiver.
func (r *MongoRequestRepo) GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var raw bson.M
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("request %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch request %s: %w", id, err)
	}
	return decodeRequest(raw)
}

func (r *MongoRequestRepo) ListByRequester(ctx context.Context, requesterID string) ([]models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cursor, err := r.coll.Find(ctx, bson.M{"requesterId": requesterID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer cursor.Close(ctx)

	list := []models.ServiceRequest{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}
		req, err := decodeRequest(raw)
		if err != nil {
			return nil, err
		}
		list = append(list, *req)
	}
	return list, cursor.Err()
}

func (r *MongoRequestRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update status of %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("request %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// ErrAlreadyAssigned is returned when a caregiver tries to accept a request
// that is no longer pending.
var ErrAlreadyAssigned = errors.New("request is no longer open")

// Assign hands a pending request to caregiver and moves it to accepted.
func (r *MongoRequestRepo) Assign(ctx context.Context, id string, caregiver models.CaregiverView) (*models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{"status": models.StatusAccepted, "caregiver": caregiver}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to assign request %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetRequest(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("request %s: %w", id, ErrAlreadyAssigned)
	}
	return r.GetRequest(ctx, id)
}

// ExistsForRecurring reports whether the materializer already created the
// occurrence of recurringID on date.
func (r *MongoRequestRepo) ExistsForRecurring(ctx context.Context, recurringID, date string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"recurringId": recurringID, "date": date}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check occurrence %s/%s: %w", recurringID, date, err)
	}
	return n > 0, nil
}

func decodeRequest(raw bson.M) (*models.ServiceRequest, error) {
	b, err := bson.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode request: %w", err)
	}
	var req models.ServiceRequest
	if err := bson.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	req.Caregiver = models.NormalizeCaregiver(raw)
	return &req, nil
}

package recurringRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carebook/database"
	"carebook/models"
	"carebook/services/recurrence"
	"carebook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// RecurringRepository stores standing bookings.
type RecurringRepository interface {
	CreateRecurring(ctx context.Context, rb *models.RecurringBooking) error
	ListByParent(ctx context.Context, parentID string) ([]models.RecurringBooking, error)
	ListActive(ctx context.Context) ([]models.RecurringBooking, error)
	SetActive(ctx context.Context, parentID, id string, active bool) (*models.RecurringBooking, error)
	MarkMaterialized(ctx context.Context, id, date string) error
	Delete(ctx context.Context, parentID, id string) error
}

type MongoRecurringRepo struct {
	coll *mongo.Collection
}

func NewMongoRecurringRepo(db *mongo.Database) *MongoRecurringRepo {
	repo := &MongoRecurringRepo{coll: db.Collection("recurring_bookings")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "parentId", Value: 1}}},
		{Keys: bson.D{{Key: "active", Value: 1}}},
	})
	if err != nil {
		utils.GetLogger().Warn("failed to create recurring indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoRecurringRepo) CreateRecurring(ctx context.Context, rb *models.RecurringBooking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := recurrence.Parse(rb.Pattern); err != nil {
		return fmt.Errorf("refusing recurring booking with bad pattern: %w", err)
	}
	if _, err := r.coll.InsertOne(ctx, rb); err != nil {
		return fmt.Errorf("failed to create recurring booking: %w", err)
	}
	return nil
}

// ListByParent returns the parent's bookings with display labels filled in.
func (r *MongoRecurringRepo) ListByParent(ctx context.Context, parentID string) ([]models.RecurringBooking, error) {
	return r.find(ctx, bson.M{"parentId": parentID})
}

// ListActive returns every active booking, for the materializer.
func (r *MongoRecurringRepo) ListActive(ctx context.Context) ([]models.RecurringBooking, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *MongoRecurringRepo) find(ctx context.Context, filter bson.M) ([]models.RecurringBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring bookings: %w", err)
	}
	defer cursor.Close(ctx)

	list := []models.RecurringBooking{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode recurring bookings: %w", err)
	}
	for i := range list {
		list[i].PatternLabel = recurrence.Format(list[i].Pattern)
	}
	return list, nil
}

// SetActive toggles a booking owned by parentID and returns the updated record.
func (r *MongoRecurringRepo) SetActive(ctx context.Context, parentID, id string, active bool) (*models.RecurringBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.checkOwner(ctx, parentID, id); err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now()}}

	var rb models.RecurringBooking
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&rb); err != nil {
		return nil, fmt.Errorf("failed to update recurring booking %s: %w", id, err)
	}
	rb.PatternLabel = recurrence.Format(rb.Pattern)
	return &rb, nil
}

// MarkMaterialized records the last date expanded for a booking.
func (r *MongoRecurringRepo) MarkMaterialized(ctx context.Context, id, date string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"lastMaterialized": date}})
	if err != nil {
		return fmt.Errorf("failed to mark %s materialized: %w", id, err)
	}
	return nil
}

func (r *MongoRecurringRepo) Delete(ctx context.Context, parentID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.checkOwner(ctx, parentID, id); err != nil {
		return err
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete recurring booking %s: %w", id, err)
	}
	return nil
}

func (r *MongoRecurringRepo) checkOwner(ctx context.Context, parentID, id string) error {
	var existing struct {
		ParentID string `bson:"parentId"`
	}
	err := r.coll.FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(bson.M{"parentId": 1})).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("recurring booking %s: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load recurring booking %s: %w", id, err)
	}
	if existing.ParentID != parentID {
		return fmt.Errorf("recurring booking %s: %w", id, database.ErrForbidden)
	}
	return nil
}

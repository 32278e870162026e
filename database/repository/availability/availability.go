package availabilityRepo

import (
	"context"
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

// AvailabilityRepository stores caregiver availability blocks.
type AvailabilityRepository interface {
	CreateBlock(ctx context.Context, b *models.AvailabilityBlock) error
	ListByCaregiver(ctx context.Context, caregiverID string) ([]models.AvailabilityBlock, error)
	BlocksOn(ctx context.Context, caregiverID string, day time.Time) ([]models.AvailabilityBlock, error)
	Delete(ctx context.Context, caregiverID, id string) error
}

type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

func NewMongoAvailabilityRepo(db *mongo.Database) *MongoAvailabilityRepo {
	repo := &MongoAvailabilityRepo{coll: db.Collection("availability_blocks")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "caregiverId", Value: 1}, {Key: "start", Value: 1}}},
	})
	if err != nil {
		utils.GetLogger().Warn("failed to create availability indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoAvailabilityRepo) CreateBlock(ctx context.Context, b *models.AvailabilityBlock) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if b.IsRecurring {
		if _, err := recurrence.Parse(b.Pattern); err != nil {
			return fmt.Errorf("refusing block with bad pattern: %w", err)
		}
	}
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to create availability block: %w", err)
	}
	return nil
}

// ListByCaregiver returns recurring blocks first, then one-time blocks by start.
func (r *MongoAvailabilityRepo) ListByCaregiver(ctx context.Context, caregiverID string) ([]models.AvailabilityBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "isRecurring", Value: -1}, {Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"caregiverId": caregiverID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability for %s: %w", caregiverID, err)
	}
	defer cursor.Close(ctx)

	blocks := []models.AvailabilityBlock{}
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return blocks, nil
}

// BlocksOn returns the blocks that cover any part of day.
func (r *MongoAvailabilityRepo) BlocksOn(ctx context.Context, caregiverID string, day time.Time) ([]models.AvailabilityBlock, error) {
	all, err := r.ListByCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, err
	}
	return FilterDay(all, day), nil
}

// FilterDay keeps blocks that apply to day. Recurring blocks with a pattern
// that no longer parses are skipped.
func FilterDay(blocks []models.AvailabilityBlock, day time.Time) []models.AvailabilityBlock {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	out := []models.AvailabilityBlock{}
	for _, b := range blocks {
		if b.IsRecurring {
			p, err := recurrence.Parse(b.Pattern)
			if err == nil && p.Occurs(day) {
				out = append(out, b)
			}
			continue
		}
		if b.Start != nil && b.End != nil && b.Start.Before(end) && b.End.After(start) {
			out = append(out, b)
		}
	}
	return out
}

// Delete removes a block owned by caregiverID.
func (r *MongoAvailabilityRepo) Delete(ctx context.Context, caregiverID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var existing models.AvailabilityBlock
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("block %s: %w", id, database.ErrNotFound)
		}
		return fmt.Errorf("failed to load block %s: %w", id, err)
	}
	if existing.CaregiverID != caregiverID {
		return fmt.Errorf("block %s: %w", id, database.ErrForbidden)
	}

	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "caregiverId": caregiverID}); err != nil {
		return fmt.Errorf("failed to delete block %s: %w", id, err)
	}
	return nil
}

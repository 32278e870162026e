package familyRepo

import (
	"context"
	"fmt"
	"time"

	"carebook/models"
	"carebook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// FamilyRepository stores a parent's child profiles.
type FamilyRepository interface {
	ListChildren(ctx context.Context, ownerID string) ([]models.ChildProfile, error)
	CreateChild(ctx context.Context, child *models.ChildProfile) error
}

type MongoFamilyRepo struct {
	coll *mongo.Collection
}

func NewMongoFamilyRepo(db *mongo.Database) *MongoFamilyRepo {
	repo := &MongoFamilyRepo{coll: db.Collection("children")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		utils.GetLogger().Warn("failed to create children indexes", zap.Error(err))
	}
	return repo
}

// ListChildren returns the owner's profiles, oldest first.
func (r *MongoFamilyRepo) ListChildren(ctx context.Context, ownerID string) ([]models.ChildProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list children for %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	children := []models.ChildProfile{}
	if err := cursor.All(ctx, &children); err != nil {
		return nil, fmt.Errorf("failed to decode children: %w", err)
	}
	return children, nil
}

func (r *MongoFamilyRepo) CreateChild(ctx context.Context, child *models.ChildProfile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, child); err != nil {
		return fmt.Errorf("failed to create child profile: %w", err)
	}
	return nil
}

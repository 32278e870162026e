package catalogRepo

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

// CatalogRepository lists bookable services and their hourly rates.
type CatalogRepository interface {
	List(ctx context.Context) ([]models.CatalogService, error)
	HourlyRate(ctx context.Context, category models.ServiceCategory) (float64, error)
	Upsert(ctx context.Context, svc models.CatalogService) error
}

type MongoCatalogRepo struct {
	coll *mongo.Collection
}

func NewMongoCatalogRepo(db *mongo.Database) *MongoCatalogRepo {
	repo := &MongoCatalogRepo{coll: db.Collection("catalog")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		utils.GetLogger().Warn("failed to create catalog indexes", zap.Error(err))
	}
	return repo
}

// List returns active services ordered by name.
func (r *MongoCatalogRepo) List(ctx context.Context) ([]models.CatalogService, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	defer cursor.Close(ctx)

	services := []models.CatalogService{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return services, nil
}

// HourlyRate returns the active rate for category.
func (r *MongoCatalogRepo) HourlyRate(ctx context.Context, category models.ServiceCategory) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.CatalogService
	err := r.coll.FindOne(ctx, bson.M{"category": category, "active": true}).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("no rate for %s: %w", category, database.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rate for %s: %w", category, err)
	}
	return svc.HourlyRate, nil
}

// Upsert creates or replaces the entry of svc.Category.
func (r *MongoCatalogRepo) Upsert(ctx context.Context, svc models.CatalogService) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"category": svc.Category}, svc, opts); err != nil {
		return fmt.Errorf("failed to upsert catalog entry %s: %w", svc.Category, err)
	}
	return nil
}

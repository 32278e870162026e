// Command carebook-seed fills a development database with a catalog, one
// parent with children and a saved location, and caregivers placed around
// that location. It prints a bearer token for every seeded account.
package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"carebook/config"
	"carebook/database"
	catalogRepo "carebook/database/repository/catalog"
	familyRepo "carebook/database/repository/family"
	userRepo "carebook/database/repository/user"
	"carebook/models"
	"carebook/utils"

	"go.mongodb.org/mongo-driver/bson"
)

const caregiverCount = 5

func main() {
	config.LoadConfig()
	if config.IsProduction() {
		log.Fatal("refusing to seed a production database")
	}
	database.InitDB()
	db := database.DB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Clear previously seeded accounts.
	for _, coll := range []string{"users", "children"} {
		if _, err := db.Collection(coll).DeleteMany(ctx, bson.M{"seeded": true}); err != nil {
			log.Fatalf("Failed to clear %s: %v", coll, err)
		}
	}

	catalog := catalogRepo.NewMongoCatalogRepo(db)
	for _, svc := range []models.CatalogService{
		{ID: "svc-cc", Category: models.CategoryChildCare, Name: "Child care", HourlyRate: 15, Currency: "USD", Active: true},
		{ID: "svc-sn", Category: models.CategorySpecialNeeds, Name: "Special needs care", HourlyRate: 22.5, Currency: "USD", Active: true},
		{ID: "svc-st", Category: models.CategoryShadowTeacher, Name: "Shadow teacher", HourlyRate: 25, Currency: "USD", Active: true},
	} {
		if err := catalog.Upsert(ctx, svc); err != nil {
			log.Fatalf("Failed to upsert %s: %v", svc.ID, err)
		}
	}

	users := userRepo.NewMongoUserRepo(db)
	children := familyRepo.NewMongoFamilyRepo(db)

	// Fixed parent home for simulation (Nairobi).
	homeLat, homeLng := -1.2921, 36.8219
	home := models.NewGeoPoint(homeLat, homeLng)
	parent := &models.User{
		ID:          "parent-1",
		Email:       "parent@example.com",
		FirstName:   "Amina",
		Role:        models.RoleParent,
		LocationGeo: &home,
		CreatedAt:   time.Now(),
	}
	if err := users.Create(ctx, parent); err != nil {
		log.Fatalf("Failed to create parent: %v", err)
	}
	markSeeded(ctx, "users", parent.ID)

	for i, name := range []string{"Zawadi", "Baraka"} {
		child := &models.ChildProfile{
			ID:          fmt.Sprintf("child-%d", i+1),
			OwnerID:     parent.ID,
			FirstName:   name,
			ProfileType: models.ProfileStandard,
			CreatedAt:   time.Now(),
		}
		if i == 1 {
			child.ProfileType = models.ProfileSpecialNeeds
		}
		if err := children.CreateChild(ctx, child); err != nil {
			log.Fatalf("Failed to create child: %v", err)
		}
		markSeeded(ctx, "children", child.ID)
	}
	printToken(parent)

	// Caregivers are spread linearly from 5 km down to 0.2 km from home.
	maxDistance, minDistance := 5.0, 0.2
	spacing := (maxDistance - minDistance) / float64(caregiverCount-1)
	for i := 0; i < caregiverCount; i++ {
		distanceKm := maxDistance - spacing*float64(i)
		angle := rand.Float64() * 2 * math.Pi
		// 1 km is roughly 0.009 degrees near the equator.
		geo := models.NewGeoPoint(homeLat+distanceKm*0.009*math.Sin(angle), homeLng+distanceKm*0.009*math.Cos(angle))

		cg := &models.User{
			ID:          fmt.Sprintf("cg-%d", i+1),
			Email:       fmt.Sprintf("caregiver_%d@example.com", i+1),
			FirstName:   fmt.Sprintf("Caregiver %d", i+1),
			Role:        models.RoleCaregiver,
			LocationGeo: &geo,
			CreatedAt:   time.Now(),
		}
		if err := users.Create(ctx, cg); err != nil {
			log.Fatalf("Failed to create caregiver: %v", err)
		}
		markSeeded(ctx, "users", cg.ID)
		printToken(cg)
	}
}

func markSeeded(ctx context.Context, coll, id string) {
	if _, err := database.DB().Collection(coll).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"seeded": true}}); err != nil {
		log.Fatalf("Failed to mark %s/%s: %v", coll, id, err)
	}
}

func printToken(u *models.User) {
	token, err := utils.GenerateToken(u.ID, u.Role, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to sign token for %s: %v", u.ID, err)
	}
	fmt.Printf("%-10s %-9s %s\n", u.ID, u.Role, token)
}

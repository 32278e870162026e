package models

// CatalogService is one bookable service and its hourly rate.
type CatalogService struct {
	ID         string          `bson:"id" json:"id"`
	Category   ServiceCategory `bson:"category" json:"category"`
	Name       string          `bson:"name" json:"name"`
	HourlyRate float64         `bson:"hourlyRate" json:"hourlyRate"`
	Currency   string          `bson:"currency" json:"currency"`
	Active     bool            `bson:"active" json:"active"`
}

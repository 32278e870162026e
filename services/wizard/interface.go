package wizard

import (
	"context"

	"carebook/models"
)

// RequestCreator persists one-off service requests.
type RequestCreator interface {
	CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error
}

// RecurringCreator persists standing bookings.
type RecurringCreator interface {
	CreateRecurring(ctx context.Context, rb *models.RecurringBooking) error
}

// AvailabilityCreator persists caregiver availability blocks.
type AvailabilityCreator interface {
	CreateBlock(ctx context.Context, b *models.AvailabilityBlock) error
}

// ProfileSource lists and creates a parent's child profiles.
type ProfileSource interface {
	ListChildren(ctx context.Context, ownerID string) ([]models.ChildProfile, error)
	CreateChild(ctx context.Context, child *models.ChildProfile) error
}

// RateSource looks up the catalog hourly rate of a category.
type RateSource interface {
	HourlyRate(ctx context.Context, category models.ServiceCategory) (float64, error)
}

// UserSource reads the user record carrying the geocoded location.
type UserSource interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// DraftStore holds open drafts and the per-draft submit lock. Mutate is the
// only write path for an existing draft and is atomic per draft.
type DraftStore interface {
	Save(ctx context.Context, d *models.BookingDraft) error
	Mutate(ctx context.Context, id string, fn func(*models.BookingDraft) error) (*models.BookingDraft, error)
	Load(ctx context.Context, id string) (*models.BookingDraft, error)
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (bool, error)
	Unlock(ctx context.Context, id string) error
}

// WizardService is the draft lifecycle exposed to handlers.
type WizardService interface {
	Open(ctx context.Context, ownerID string, category models.ServiceCategory) (*View, error)
	Get(ctx context.Context, ownerID, draftID string) (*View, error)
	Update(ctx context.Context, ownerID, draftID string, u Update) (*View, error)
	Next(ctx context.Context, ownerID, draftID string) (*View, error)
	Back(ctx context.Context, ownerID, draftID string) (*View, error)
	AddChild(ctx context.Context, ownerID, draftID string, in models.NewChildInput) (*View, error)
	Submit(ctx context.Context, ownerID, draftID string) (*Result, error)
	Close(ctx context.Context, ownerID, draftID string) error
}

// Result is returned by a successful submit. Redirect is where the client goes next.
type Result struct {
	Category  models.ServiceCategory    `json:"category"`
	Request   *models.ServiceRequest    `json:"request,omitempty"`
	Recurring *models.RecurringBooking  `json:"recurring,omitempty"`
	Block     *models.AvailabilityBlock `json:"block,omitempty"`
	Redirect  string                    `json:"redirect"`
}

package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"carebook/models"
	"carebook/services/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWizardService keeps drafts in a DraftStore and hands finished drafts
// to the category collaborator.
type DefaultWizardService struct {
	Store        DraftStore
	Requests     RequestCreator
	Recurring    RecurringCreator
	Availability AvailabilityCreator
	Profiles     ProfileSource
	Rates        RateSource
	Users        UserSource
	Logger       *zap.Logger

	Now      func() time.Time
	Location *time.Location
}

func (s *DefaultWizardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultWizardService) controller(d *models.BookingDraft) *Controller {
	return NewController(d, s.now)
}

// Open starts a draft. Child profiles, the catalog rate and the user's
// location are fetched concurrently; each failure degrades the draft
// instead of failing the open.
func (s *DefaultWizardService) Open(ctx context.Context, ownerID string, category models.ServiceCategory) (*View, error) {
	if !category.Valid() {
		return nil, invalid(StepSchedule, "category", "Unknown service category")
	}

	d := &models.BookingDraft{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Category:    category,
		Step:        StepSchedule,
		StartSlot:   models.Unset,
		DurationIdx: models.Unset,
		Dials:       map[string]models.DialState{},
		CreatedAt:   s.now(),
	}

	var (
		children []models.ChildProfile
		rate     *float64
		user     *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	if category != models.CategoryAvailability {
		g.Go(func() error {
			list, err := s.Profiles.ListChildren(gctx, ownerID)
			if err != nil {
				s.Logger.Warn("Failed to fetch child profiles", zap.String("ownerID", ownerID), zap.Error(err))
				return nil
			}
			children = list
			return nil
		})
		g.Go(func() error {
			r, err := s.Rates.HourlyRate(gctx, rateCategory(category))
			if err != nil {
				s.Logger.Warn("Catalog rate unavailable, pricing TBD", zap.String("category", string(category)), zap.Error(err))
				return nil
			}
			rate = &r
			return nil
		})
	}
	g.Go(func() error {
		u, err := s.Users.GetUserByID(gctx, ownerID)
		if err != nil {
			s.Logger.Warn("Failed to fetch user location", zap.String("ownerID", ownerID), zap.Error(err))
			return nil
		}
		user = u
		return nil
	})
	_ = g.Wait()

	d.Children = children
	d.HourlyRate = rate
	applyLocation(d, user)

	if err := s.Store.Save(ctx, d); err != nil {
		s.Logger.Error("Failed to store draft", zap.String("draftID", d.ID), zap.Error(err))
		return nil, err
	}
	s.Logger.Info("Wizard opened", zap.String("draftID", d.ID), zap.String("category", string(category)))
	return s.controller(d).View(), nil
}

// Get returns the current view of a draft.
func (s *DefaultWizardService) Get(ctx context.Context, ownerID, draftID string) (*View, error) {
	d, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	return s.controller(d).View(), nil
}

// Update applies field changes and dial events.
func (s *DefaultWizardService) Update(ctx context.Context, ownerID, draftID string, u Update) (*View, error) {
	return s.mutate(ctx, ownerID, draftID, func(c *Controller) error {
		if err := c.Apply(u); err != nil {
			return err
		}
		return nil
	})
}

// Next advances the draft when the current step is complete.
func (s *DefaultWizardService) Next(ctx context.Context, ownerID, draftID string) (*View, error) {
	return s.mutate(ctx, ownerID, draftID, func(c *Controller) error {
		if err := c.Next(); err != nil {
			return err
		}
		return nil
	})
}

// Back moves one step back.
func (s *DefaultWizardService) Back(ctx context.Context, ownerID, draftID string) (*View, error) {
	return s.mutate(ctx, ownerID, draftID, func(c *Controller) error {
		c.Back()
		return nil
	})
}

// AddChild runs the "add new" sub-flow: the profile is created through the
// family collaborator, then appended to the draft and selected.
func (s *DefaultWizardService) AddChild(ctx context.Context, ownerID, draftID string, in models.NewChildInput) (*View, error) {
	d, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if d.Category == models.CategoryAvailability {
		return nil, invalid(StepDetails, "children", "Availability blocks have no participants")
	}

	name := strings.TrimSpace(in.FirstName)
	if name == "" {
		return nil, invalid(StepDetails, "firstName", "First name is required")
	}
	profileType := in.ProfileType
	if profileType == "" {
		profileType = models.ProfileStandard
		if d.Category == models.CategorySpecialNeeds {
			profileType = models.ProfileSpecialNeeds
		}
	}
	if profileType != models.ProfileStandard && profileType != models.ProfileSpecialNeeds {
		return nil, invalid(StepDetails, "profileType", "Unknown profile type")
	}

	child := &models.ChildProfile{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		FirstName:   name,
		ProfileType: profileType,
		BirthDate:   in.BirthDate,
		CareNotes:   in.CareNotes,
		CreatedAt:   s.now(),
	}
	if err := s.Profiles.CreateChild(ctx, child); err != nil {
		s.Logger.Error("Failed to create child profile", zap.String("draftID", draftID), zap.Error(err))
		return nil, &SubmitError{Category: "child", Err: err}
	}

	return s.mutate(ctx, ownerID, draftID, func(c *Controller) error {
		c.AppendChild(*child)
		return nil
	})
}

// Submit validates the draft and hands it to its collaborator. Order:
// structural validation, location precondition, in-flight guard, then the
// network call. A failed call leaves the draft in place for a retry.
func (s *DefaultWizardService) Submit(ctx context.Context, ownerID, draftID string) (*Result, error) {
	d, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if verr := s.controller(d).Validate(); verr != nil {
		return nil, verr
	}
	if !d.HasLocation {
		s.refreshLocation(ctx, d)
		if !d.HasLocation {
			return nil, ErrLocationRequired
		}
	}

	locked, err := s.Store.Lock(ctx, draftID)
	if err != nil {
		s.Logger.Error("Failed to take submit lock", zap.String("draftID", draftID), zap.Error(err))
		return nil, &SubmitError{Category: d.Category.Code(), Err: err}
	}
	if !locked {
		return nil, ErrSubmitInFlight
	}
	defer func() {
		if err := s.Store.Unlock(context.WithoutCancel(ctx), draftID); err != nil {
			s.Logger.Warn("Failed to release submit lock", zap.String("draftID", draftID), zap.Error(err))
		}
	}()

	// Re-read under the lock: an earlier submit may have consumed the draft,
	// or an edit may have landed since the first read.
	fresh, err := s.load(ctx, ownerID, draftID)
	if errors.Is(err, session.ErrDraftNotFound) {
		s.Logger.Info("Draft already submitted or closed", zap.String("draftID", draftID))
		return nil, ErrDraftClosed
	}
	if err != nil {
		return nil, err
	}
	if verr := s.controller(fresh).Validate(); verr != nil {
		return nil, verr
	}
	if !fresh.HasLocation {
		fresh.Location, fresh.HasLocation = d.Location, d.HasLocation
	}

	res, err := s.dispatch(ctx, fresh)
	if err != nil {
		s.Logger.Error("Wizard submission failed",
			zap.String("draftID", draftID),
			zap.String("category", string(fresh.Category)),
			zap.Error(err),
		)
		s.recordFailure(context.WithoutCancel(ctx), draftID)
		return nil, &SubmitError{Category: fresh.Category.Code(), Err: err}
	}

	if err := s.Store.Delete(context.WithoutCancel(ctx), draftID); err != nil {
		s.Logger.Warn("Failed to discard submitted draft", zap.String("draftID", draftID), zap.Error(err))
	}
	s.Logger.Info("Wizard submitted", zap.String("draftID", draftID), zap.String("category", string(fresh.Category)))
	return res, nil
}

// recordFailure bumps the attempt counter on the current stored draft so edits
// made while the request was in flight survive.
func (s *DefaultWizardService) recordFailure(ctx context.Context, draftID string) {
	_, err := s.Store.Mutate(ctx, draftID, func(d *models.BookingDraft) error {
		d.SubmitAttempts++
		d.LastError = SubmitRetryMessage
		return nil
	})
	switch {
	case errors.Is(err, session.ErrDraftNotFound):
		s.Logger.Info("Draft closed before write-back", zap.String("draftID", draftID))
	case err != nil:
		s.Logger.Warn("Failed to record submission failure", zap.String("draftID", draftID), zap.Error(err))
	}
}

// Close discards the draft without side effects.
func (s *DefaultWizardService) Close(ctx context.Context, ownerID, draftID string) error {
	if _, err := s.load(ctx, ownerID, draftID); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, draftID); err != nil {
		s.Logger.Error("Failed to discard draft", zap.String("draftID", draftID), zap.Error(err))
		return err
	}
	return nil
}

func (s *DefaultWizardService) dispatch(ctx context.Context, d *models.BookingDraft) (*Result, error) {
	now := s.now()
	res := &Result{Category: d.Category}

	switch d.Category {
	case models.CategoryRecurring:
		rb := BuildRecurring(d, now)
		rb.ID = uuid.New().String()
		if err := s.Recurring.CreateRecurring(ctx, rb); err != nil {
			return nil, err
		}
		res.Recurring = rb
		res.Redirect = "/recurring"
	case models.CategoryAvailability:
		b, err := BuildBlock(d, now, s.Location)
		if err != nil {
			return nil, err
		}
		b.ID = uuid.New().String()
		if err := s.Availability.CreateBlock(ctx, b); err != nil {
			return nil, err
		}
		res.Block = b
		res.Redirect = "/availability"
	default:
		req := &models.ServiceRequest{
			ID:                    uuid.New().String(),
			RequesterID:           d.OwnerID,
			ServiceRequestPayload: BuildRequestPayload(d),
			Status:                models.StatusPending,
			Location:              d.Location,
			CreatedAt:             now,
		}
		if err := s.Requests.CreateServiceRequest(ctx, req); err != nil {
			return nil, err
		}
		res.Request = req
		res.Redirect = "/bookings/" + req.ID
	}
	return res, nil
}

func (s *DefaultWizardService) load(ctx context.Context, ownerID, draftID string) (*models.BookingDraft, error) {
	d, err := s.Store.Load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return d, nil
}

// mutate runs fn against the stored draft atomically. A step or field error
// from fn is returned with the unsaved view so the client can show it.
func (s *DefaultWizardService) mutate(ctx context.Context, ownerID, draftID string, fn func(*Controller) error) (*View, error) {
	var (
		c    *Controller
		ferr error
	)
	_, err := s.Store.Mutate(ctx, draftID, func(d *models.BookingDraft) error {
		if d.OwnerID != ownerID {
			return ErrNotOwner
		}
		c = s.controller(d)
		if ferr = fn(c); ferr != nil {
			return ferr
		}
		d.LastError = ""
		return nil
	})
	if ferr != nil {
		return c.View(), ferr
	}
	if err != nil {
		if !errors.Is(err, session.ErrDraftNotFound) && !errors.Is(err, ErrNotOwner) {
			s.Logger.Error("Failed to store draft", zap.String("draftID", draftID), zap.Error(err))
		}
		return nil, err
	}
	return c.View(), nil
}

func (s *DefaultWizardService) refreshLocation(ctx context.Context, d *models.BookingDraft) {
	u, err := s.Users.GetUserByID(ctx, d.OwnerID)
	if err != nil {
		s.Logger.Warn("Failed to refresh user location", zap.String("ownerID", d.OwnerID), zap.Error(err))
		return
	}
	applyLocation(d, u)
}

func applyLocation(d *models.BookingDraft, u *models.User) {
	if u.HasLocation() {
		loc := *u.LocationGeo
		d.Location = &loc
		d.HasLocation = true
		return
	}
	d.Location = nil
	d.HasLocation = false
}

// rateCategory maps a flow to the catalog entry that prices it.
func rateCategory(c models.ServiceCategory) models.ServiceCategory {
	if c == models.CategoryRecurring {
		return models.CategoryChildCare
	}
	return c
}

var _ WizardService = (*DefaultWizardService)(nil)

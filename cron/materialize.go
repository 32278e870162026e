package cron

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carebook/models"
	"carebook/services/recurrence"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// RecurringSource is the slice of the recurring repository the materializer needs.
type RecurringSource interface {
	ListActive(ctx context.Context) ([]models.RecurringBooking, error)
	MarkMaterialized(ctx context.Context, id, date string) error
}

// RequestSink creates the concrete requests for a day.
type RequestSink interface {
	ExistsForRecurring(ctx context.Context, recurringID, date string) (bool, error)
	CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error
}

// Materializer expands active recurring bookings into one pending request per
// matching day.
type Materializer struct {
	Recurring RecurringSource
	Requests  RequestSink
	Logger    *zap.Logger
	Location  *time.Location
	Now       func() time.Time
}

func (m *Materializer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Today returns the current calendar day in the materializer's location.
func (m *Materializer) Today() string {
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}
	return m.now().In(loc).Format(dateLayout)
}

// Run creates the requests for date and returns how many were created. A
// booking that fails is logged and skipped; the first such error is returned
// after every booking has been tried so the task is retried.
func (m *Materializer) Run(ctx context.Context, date string) (int, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid materialize date %q: %w", date, err)
	}

	bookings, err := m.Recurring.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	var firstErr error
	for i := range bookings {
		rb := &bookings[i]
		ok, err := m.materializeOne(ctx, rb, day, date)
		if err != nil {
			m.Logger.Error("Failed to materialize recurring booking",
				zap.String("recurringID", rb.ID),
				zap.String("date", date),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			created++
		}
	}

	m.Logger.Info("Recurring bookings materialized",
		zap.String("date", date),
		zap.Int("active", len(bookings)),
		zap.Int("created", created),
	)
	return created, firstErr
}

func (m *Materializer) materializeOne(ctx context.Context, rb *models.RecurringBooking, day time.Time, date string) (bool, error) {
	if rb.StartDate != "" && date < rb.StartDate {
		return false, nil
	}
	if rb.LastMaterialized >= date {
		return false, nil
	}

	p, err := recurrence.Parse(rb.Pattern)
	if err != nil {
		m.Logger.Warn("Skipping recurring booking with unreadable pattern",
			zap.String("recurringID", rb.ID),
			zap.String("pattern", rb.Pattern),
		)
		return false, nil
	}
	if !p.Occurs(day) {
		return false, nil
	}

	exists, err := m.Requests.ExistsForRecurring(ctx, rb.ID, date)
	if err != nil {
		return false, err
	}
	if !exists {
		req, err := requestFor(rb, date, m.now())
		if err != nil {
			return false, err
		}
		if err := m.Requests.CreateServiceRequest(ctx, req); err != nil {
			return false, err
		}
	}
	if err := m.Recurring.MarkMaterialized(ctx, rb.ID, date); err != nil {
		return false, err
	}
	return !exists, nil
}

func requestFor(rb *models.RecurringBooking, date string, now time.Time) (*models.ServiceRequest, error) {
	end, nextDay, err := endClock(rb.StartTime, rb.DurationHours)
	if err != nil {
		return nil, err
	}

	category := rb.Category
	if category == models.CategoryRecurring {
		category = models.CategoryChildCare
	}

	return &models.ServiceRequest{
		ID:          uuid.New().String(),
		RequesterID: rb.ParentID,
		RecurringID: rb.ID,
		ServiceRequestPayload: models.ServiceRequestPayload{
			Category:            category.Code(),
			Date:                date,
			StartTime:           rb.StartTime,
			DurationHours:       rb.DurationHours,
			EndTime:             end,
			EndsNextDay:         nextDay,
			NumChildren:         rb.NumChildren,
			ChildIDs:            rb.ChildIDs,
			SpecialRequirements: rb.SpecialRequirements,
		},
		Status:    models.StatusPending,
		Location:  rb.Location,
		CreatedAt: now,
	}, nil
}

// endClock adds hours to an "HH:MM" clock and reports whether it wraps past midnight.
func endClock(start string, hours int) (string, bool, error) {
	parts := strings.Split(start, ":")
	if len(parts) != 2 {
		return "", false, fmt.Errorf("invalid start time %q", start)
	}
	h, err1 := strconv.Atoi(parts[0])
	mm, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || mm < 0 || mm > 59 {
		return "", false, fmt.Errorf("invalid start time %q", start)
	}
	total := h*60 + mm + hours*60
	return fmt.Sprintf("%02d:%02d", (total/60)%24, total%60), total >= 24*60, nil
}

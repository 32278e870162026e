package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carebook/models"
	"carebook/services/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRequests struct {
	mu     sync.Mutex
	err    error
	before func()
	got    []*models.ServiceRequest
}

func (m *mockRequests) CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	if m.before != nil {
		m.before()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.got = append(m.got, req)
	return nil
}

type mockRecurring struct{ got []*models.RecurringBooking }

func (m *mockRecurring) CreateRecurring(ctx context.Context, rb *models.RecurringBooking) error {
	m.got = append(m.got, rb)
	return nil
}

type mockBlocks struct{ got []*models.AvailabilityBlock }

func (m *mockBlocks) CreateBlock(ctx context.Context, b *models.AvailabilityBlock) error {
	m.got = append(m.got, b)
	return nil
}

type mockProfiles struct {
	children []models.ChildProfile
	listErr  error
	created  []*models.ChildProfile
}

func (m *mockProfiles) ListChildren(ctx context.Context, ownerID string) ([]models.ChildProfile, error) {
	return m.children, m.listErr
}

func (m *mockProfiles) CreateChild(ctx context.Context, child *models.ChildProfile) error {
	m.created = append(m.created, child)
	return nil
}

type mockRates struct {
	rate float64
	err  error
}

func (m *mockRates) HourlyRate(ctx context.Context, category models.ServiceCategory) (float64, error) {
	return m.rate, m.err
}

type mockUsers struct {
	mu   sync.Mutex
	user *models.User
}

func (m *mockUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, errors.New("user not found")
	}
	return m.user, nil
}

// gatedUsers parks the first lookup until release is closed.
type gatedUsers struct {
	user    *models.User
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.user, nil
}

type fixture struct {
	svc      *DefaultWizardService
	store    *session.RedisDraftStore
	requests *mockRequests
	users    *mockUsers
	profiles *mockProfiles
}

func setupService(t *testing.T) *fixture {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	geo := models.NewGeoPoint(-1.2921, 36.8219)
	f := &fixture{
		store:    session.NewRedisDraftStore(client, time.Minute),
		requests: &mockRequests{},
		users:    &mockUsers{user: &models.User{ID: "parent-1", LocationGeo: &geo}},
		profiles: &mockProfiles{children: []models.ChildProfile{{ID: "child-1", OwnerID: "parent-1", FirstName: "Ada"}}},
	}
	f.svc = &DefaultWizardService{
		Store:        f.store,
		Requests:     f.requests,
		Recurring:    &mockRecurring{},
		Availability: &mockBlocks{},
		Profiles:     f.profiles,
		Rates:        &mockRates{rate: 20},
		Users:        f.users,
		Logger:       zap.NewNop(),
		Now:          fixedNow,
		Location:     time.UTC,
	}
	return f
}

func completeChildCare(t *testing.T, f *fixture) string {
	ctx := context.Background()
	v, err := f.svc.Open(ctx, "parent-1", models.CategoryChildCare)
	require.NoError(t, err)
	id := v.Draft.ID

	_, err = f.svc.Next(ctx, "parent-1", id)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, "parent-1", id, Update{
		Date:        ptr("2026-10-20"),
		StartSlot:   ptr(4),
		DurationIdx: ptr(1),
	})
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, "parent-1", id)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, "parent-1", id, Update{ToggleChildren: []string{"child-1"}})
	require.NoError(t, err)
	return id
}

func TestOpen_FetchesOnce(t *testing.T) {
	f := setupService(t)
	v, err := f.svc.Open(context.Background(), "parent-1", models.CategoryChildCare)
	require.NoError(t, err)

	assert.Equal(t, StepSchedule, v.Draft.Step)
	assert.Equal(t, models.Unset, v.Draft.StartSlot)
	assert.Len(t, v.Draft.Children, 1)
	require.NotNil(t, v.Draft.HourlyRate)
	assert.Equal(t, 20.0, *v.Draft.HourlyRate)
	assert.True(t, v.Draft.HasLocation)
	assert.True(t, v.CanAdvance)
	assert.False(t, v.CanSubmit)
}

func TestOpen_DegradesOnFetchFailure(t *testing.T) {
	f := setupService(t)
	f.svc.Rates = &mockRates{err: errors.New("catalog down")}
	f.profiles.listErr = errors.New("family down")

	v, err := f.svc.Open(context.Background(), "parent-1", models.CategorySpecialNeeds)
	require.NoError(t, err)
	assert.Empty(t, v.Draft.Children)
	assert.Nil(t, v.Draft.HourlyRate)
	assert.Equal(t, PricingTBD, v.Estimate.Label)
}

func TestOpen_UnknownCategory(t *testing.T) {
	f := setupService(t)
	_, err := f.svc.Open(context.Background(), "parent-1", models.ServiceCategory("PET_CARE"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSubmit_ChildCareScenario(t *testing.T) {
	f := setupService(t)
	id := completeChildCare(t, f)

	res, err := f.svc.Submit(context.Background(), "parent-1", id)
	require.NoError(t, err)
	require.Len(t, f.requests.got, 1)

	req := f.requests.got[0]
	assert.Equal(t, "CC", req.Category)
	assert.Equal(t, "2026-10-20", req.Date)
	assert.Equal(t, "09:00", req.StartTime)
	assert.Equal(t, 2, req.DurationHours)
	assert.Equal(t, 1, req.NumChildren)
	assert.Equal(t, []string{"child-1"}, req.ChildIDs)
	assert.Equal(t, models.StatusPending, req.Status)
	require.NotNil(t, req.EstimatedPrice)
	assert.Equal(t, 40.0, *req.EstimatedPrice)
	assert.NotNil(t, req.Location)
	assert.Equal(t, "/bookings/"+req.ID, res.Redirect)

	_, err = f.store.Load(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrDraftNotFound, "wizard closes on success")
}

func TestSubmit_ValidationBeforeNetwork(t *testing.T) {
	f := setupService(t)
	v, err := f.svc.Open(context.Background(), "parent-1", models.CategoryChildCare)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), "parent-1", v.Draft.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.requests.got)
}

func TestSubmit_MissingLocation(t *testing.T) {
	f := setupService(t)
	f.users.user = &models.User{ID: "parent-1"}
	id := completeChildCare(t, f)

	v, err := f.svc.Get(context.Background(), "parent-1", id)
	require.NoError(t, err)
	assert.False(t, v.CanSubmit)
	require.NotEmpty(t, v.Warnings)
	assert.Equal(t, WarnLocationRequired, v.Warnings[0].Code)

	_, err = f.svc.Submit(context.Background(), "parent-1", id)
	assert.ErrorIs(t, err, ErrLocationRequired)
	assert.Empty(t, f.requests.got)

	// Fixing the profile unblocks the same draft.
	geo := models.NewGeoPoint(1, 2)
	f.users.mu.Lock()
	f.users.user = &models.User{ID: "parent-1", LocationGeo: &geo}
	f.users.mu.Unlock()
	_, err = f.svc.Submit(context.Background(), "parent-1", id)
	assert.NoError(t, err)
}

func TestSubmit_TransportFailureKeepsDraft(t *testing.T) {
	f := setupService(t)
	id := completeChildCare(t, f)
	f.requests.err = errors.New("connection reset")

	_, err := f.svc.Submit(context.Background(), "parent-1", id)
	var serr *SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, SubmitRetryMessage, serr.Message())

	v, err := f.svc.Get(context.Background(), "parent-1", id)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, v.Draft.Step)
	assert.Equal(t, []string{"child-1"}, v.Draft.ChildIDs)
	assert.Equal(t, 1, v.Draft.SubmitAttempts)
	assert.True(t, v.CanSubmit)

	f.requests.err = nil
	_, err = f.svc.Submit(context.Background(), "parent-1", id)
	assert.NoError(t, err)
}

func TestSubmit_InFlightGuard(t *testing.T) {
	f := setupService(t)
	id := completeChildCare(t, f)

	ok, err := f.store.Lock(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Submit(context.Background(), "parent-1", id)
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.Empty(t, f.requests.got)
}

func TestSubmit_ClosedWhileInFlight(t *testing.T) {
	f := setupService(t)
	id := completeChildCare(t, f)
	f.requests.err = errors.New("timeout")
	f.requests.before = func() {
		require.NoError(t, f.svc.Close(context.Background(), "parent-1", id))
	}

	_, err := f.svc.Submit(context.Background(), "parent-1", id)
	var serr *SubmitError
	require.ErrorAs(t, err, &serr)

	_, err = f.store.Load(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrDraftNotFound, "closed draft must not be written back")
}

func TestSubmit_StaleSubmitDoesNotDispatchTwice(t *testing.T) {
	f := setupService(t)
	f.users.user = &models.User{ID: "parent-1"}
	id := completeChildCare(t, f)

	geo := models.NewGeoPoint(-1.2921, 36.8219)
	gate := &gatedUsers{
		user:    &models.User{ID: "parent-1", LocationGeo: &geo},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f.svc.Users = gate

	slow := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), "parent-1", id)
		slow <- err
	}()
	<-gate.entered

	_, err := f.svc.Submit(context.Background(), "parent-1", id)
	require.NoError(t, err)

	close(gate.release)
	assert.ErrorIs(t, <-slow, ErrDraftClosed)
	assert.Len(t, f.requests.got, 1)
}

func TestSubmit_FailureKeepsConcurrentEdit(t *testing.T) {
	f := setupService(t)
	id := completeChildCare(t, f)
	f.requests.err = errors.New("gateway timeout")
	f.requests.before = func() {
		_, err := f.svc.Update(context.Background(), "parent-1", id, Update{Notes: ptr("allergic to peanuts")})
		require.NoError(t, err)
	}

	_, err := f.svc.Submit(context.Background(), "parent-1", id)
	var serr *SubmitError
	require.ErrorAs(t, err, &serr)

	v, err := f.svc.Get(context.Background(), "parent-1", id)
	require.NoError(t, err)
	assert.Equal(t, "allergic to peanuts", v.Draft.Notes)
	assert.Equal(t, 1, v.Draft.SubmitAttempts)
	assert.Equal(t, SubmitRetryMessage, v.Draft.LastError)
}

func TestUpdate_ConcurrentEditsAreKept(t *testing.T) {
	f := setupService(t)
	id := completeChildCare(t, f)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := f.svc.Update(context.Background(), "parent-1", id, Update{Notes: ptr("bring a jacket")})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := f.svc.Update(context.Background(), "parent-1", id, Update{DurationIdx: ptr(3)})
		assert.NoError(t, err)
	}()
	wg.Wait()

	v, err := f.svc.Get(context.Background(), "parent-1", id)
	require.NoError(t, err)
	assert.Equal(t, "bring a jacket", v.Draft.Notes)
	assert.Equal(t, 3, v.Draft.DurationIdx)
}

func TestAddChild_SelectsNewProfile(t *testing.T) {
	f := setupService(t)
	v, err := f.svc.Open(context.Background(), "parent-1", models.CategorySpecialNeeds)
	require.NoError(t, err)

	v, err = f.svc.AddChild(context.Background(), "parent-1", v.Draft.ID, models.NewChildInput{FirstName: " Bo "})
	require.NoError(t, err)
	require.Len(t, f.profiles.created, 1)
	assert.Equal(t, "Bo", f.profiles.created[0].FirstName)
	assert.Equal(t, models.ProfileSpecialNeeds, f.profiles.created[0].ProfileType)
	assert.Len(t, v.Draft.Children, 2)
	assert.Equal(t, []string{f.profiles.created[0].ID}, v.Draft.ChildIDs)
}

func TestDraftOwnership(t *testing.T) {
	f := setupService(t)
	v, err := f.svc.Open(context.Background(), "parent-1", models.CategoryChildCare)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), "parent-2", v.Draft.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, f.svc.Close(context.Background(), "parent-2", v.Draft.ID), ErrNotOwner)
}

func TestSubmit_RecurringAndAvailability(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	v, err := f.svc.Open(ctx, "parent-1", models.CategoryRecurring)
	require.NoError(t, err)
	id := v.Draft.ID
	_, err = f.svc.Update(ctx, "parent-1", id, Update{Frequency: ptr("weekly"), Days: &[]string{"fri", "tue"}})
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, "parent-1", id)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, "parent-1", id, Update{Date: ptr("2026-11-02"), StartSlot: ptr(2), DurationIdx: ptr(0)})
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, "parent-1", id)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, "parent-1", id, Update{Headcount: ptr(2)})
	require.NoError(t, err)

	res, err := f.svc.Submit(ctx, "parent-1", id)
	require.NoError(t, err)
	require.NotNil(t, res.Recurring)
	assert.Equal(t, "weekly:tuesday,friday", res.Recurring.Pattern)
	assert.Equal(t, "Weekly on Tue, Fri", res.Recurring.PatternLabel)
	assert.Equal(t, "08:00", res.Recurring.StartTime)
	assert.Equal(t, 2, res.Recurring.NumChildren)

	v, err = f.svc.Open(ctx, "parent-1", models.CategoryAvailability)
	require.NoError(t, err)
	id = v.Draft.ID
	_, err = f.svc.Update(ctx, "parent-1", id, Update{BlockType: ptr(models.BlockRecurring), ToggleDay: ptr("monday")})
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, "parent-1", id)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, "parent-1", id, Update{StartSlot: ptr(0), DurationIdx: ptr(3), Reason: ptr("School run")})
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, "parent-1", id)
	require.NoError(t, err)

	res, err = f.svc.Submit(ctx, "parent-1", id)
	require.NoError(t, err)
	require.NotNil(t, res.Block)
	assert.True(t, res.Block.IsRecurring)
	assert.Equal(t, "weekly:monday", res.Block.Pattern)
	assert.Equal(t, "11:00", res.Block.EndTime)
	assert.Equal(t, "School run", res.Block.Reason)
}

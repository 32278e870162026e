package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carebook/database"
	"carebook/models"
	"carebook/services/session"
	"carebook/services/wizard"
	"carebook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware.
func asUser(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Set("role", role)
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type fakeWizard struct {
	err      error
	opened   models.ServiceCategory
	update   wizard.Update
	ownerID  string
	draftID  string
	submitOK *wizard.Result
}

func (f *fakeWizard) view() *wizard.View {
	return &wizard.View{Draft: &models.BookingDraft{ID: f.draftID, OwnerID: f.ownerID}}
}

func (f *fakeWizard) Open(ctx context.Context, ownerID string, category models.ServiceCategory) (*wizard.View, error) {
	f.ownerID, f.opened, f.draftID = ownerID, category, "d1"
	return f.view(), f.err
}

func (f *fakeWizard) Get(ctx context.Context, ownerID, draftID string) (*wizard.View, error) {
	f.ownerID, f.draftID = ownerID, draftID
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeWizard) Update(ctx context.Context, ownerID, draftID string, u wizard.Update) (*wizard.View, error) {
	f.ownerID, f.draftID, f.update = ownerID, draftID, u
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeWizard) Next(ctx context.Context, ownerID, draftID string) (*wizard.View, error) {
	return f.Get(ctx, ownerID, draftID)
}

func (f *fakeWizard) Back(ctx context.Context, ownerID, draftID string) (*wizard.View, error) {
	return f.Get(ctx, ownerID, draftID)
}

func (f *fakeWizard) AddChild(ctx context.Context, ownerID, draftID string, in models.NewChildInput) (*wizard.View, error) {
	return f.Get(ctx, ownerID, draftID)
}

func (f *fakeWizard) Submit(ctx context.Context, ownerID, draftID string) (*wizard.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.submitOK, nil
}

func (f *fakeWizard) Close(ctx context.Context, ownerID, draftID string) error {
	return f.err
}

func wizardRouter(svc wizard.WizardService) *gin.Engine {
	h := NewWizardHandler(svc)
	r := gin.New()
	r.Use(asUser("parent-1", models.RoleParent))
	r.POST("/wizards", h.OpenHandler)
	r.GET("/wizards/:id", h.GetHandler)
	r.PATCH("/wizards/:id", h.UpdateHandler)
	r.POST("/wizards/:id/submit", h.SubmitHandler)
	r.DELETE("/wizards/:id", h.CloseHandler)
	return r
}

func TestWizardHandler_Open(t *testing.T) {
	svc := &fakeWizard{}
	r := wizardRouter(svc)

	w := do(r, http.MethodPost, "/wizards", `{"category":"cc"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.CategoryChildCare, svc.opened)
	assert.Equal(t, "parent-1", svc.ownerID)

	w = do(r, http.MethodPost, "/wizards", `{"category":"gardening"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/wizards", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardHandler_UpdateBindsDial(t *testing.T) {
	svc := &fakeWizard{}
	r := wizardRouter(svc)

	w := do(r, http.MethodPatch, "/wizards/d9", `{"startSlot":4,"dial":{"name":"duration","phase":"down","x":50,"track":{"left":0,"width":100}}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d9", svc.draftID)
	require.NotNil(t, svc.update.StartSlot)
	assert.Equal(t, 4, *svc.update.StartSlot)
	require.NotNil(t, svc.update.Dial)
	assert.Equal(t, "duration", svc.update.Dial.Name)
	assert.Equal(t, 50.0, svc.update.Dial.X)
	assert.Equal(t, 100.0, svc.update.Dial.Track.Width)
}

func TestWizardHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", &wizard.ValidationError{Step: 1, Field: "days", Message: "Pick at least one day"}, http.StatusUnprocessableEntity, utils.KindValidation},
		{"location", wizard.ErrLocationRequired, http.StatusConflict, utils.KindPrecondition},
		{"transient", &wizard.SubmitError{Category: "CC", Err: errors.New("connection reset")}, http.StatusBadGateway, utils.KindTransient},
		{"in flight", wizard.ErrSubmitInFlight, http.StatusConflict, utils.KindPrecondition},
		{"missing draft", fmt.Errorf("load: %w", session.ErrDraftNotFound), http.StatusNotFound, utils.KindNotFound},
		{"closed", wizard.ErrDraftClosed, http.StatusNotFound, utils.KindNotFound},
		{"contended", session.ErrDraftContended, http.StatusConflict, utils.KindPrecondition},
		{"owner", wizard.ErrNotOwner, http.StatusForbidden, ""},
		{"unknown dial", wizard.ErrUnknownDial, http.StatusBadRequest, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, utils.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(wizardRouter(&fakeWizard{err: tt.err}), http.MethodPost, "/wizards/d1/submit", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.kind, decodeError(t, w).Kind)
		})
	}
}

func TestWizardHandler_SubmitMessages(t *testing.T) {
	w := do(wizardRouter(&fakeWizard{err: &wizard.SubmitError{Err: errors.New("503")}}), http.MethodPost, "/wizards/d1/submit", "")
	assert.Equal(t, wizard.SubmitRetryMessage, decodeError(t, w).Message)

	w = do(wizardRouter(&fakeWizard{err: &wizard.ValidationError{Step: 3, Field: "children", Message: "Select at least one child"}}), http.MethodPost, "/wizards/d1/submit", "")
	resp := decodeError(t, w)
	assert.Equal(t, "children", resp.Field)
	assert.Equal(t, "Select at least one child", resp.Message)

	res := &wizard.Result{Category: models.CategoryChildCare, Redirect: "/bookings/r1"}
	w = do(wizardRouter(&fakeWizard{submitOK: res}), http.MethodPost, "/wizards/d1/submit", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/bookings/r1"`)
}

func TestWizardHandler_Close(t *testing.T) {
	w := do(wizardRouter(&fakeWizard{}), http.MethodDelete, "/wizards/d1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestWizardHandler_Unauthenticated(t *testing.T) {
	h := NewWizardHandler(&fakeWizard{})
	r := gin.New()
	r.GET("/wizards/:id", h.GetHandler)

	w := do(r, http.MethodGet, "/wizards/d1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFormatPatternHandler(t *testing.T) {
	r := gin.New()
	r.GET("/format", FormatPatternHandler)

	w := do(r, http.MethodGet, "/format?pattern=weekly:monday,wednesday", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Weekly on Mon, Wed", body["label"])
	assert.Equal(t, true, body["valid"])

	w = do(r, http.MethodGet, "/format?pattern=Every+Tuesday", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Every Tuesday", body["label"])
	assert.Equal(t, false, body["valid"])

	w = do(r, http.MethodGet, "/format", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeBlocks struct {
	blocks  []models.AvailabilityBlock
	owner   map[string]string
	deleted []string
}

func (f *fakeBlocks) ListByCaregiver(ctx context.Context, caregiverID string) ([]models.AvailabilityBlock, error) {
	return f.blocks, nil
}

func (f *fakeBlocks) BlocksOn(ctx context.Context, caregiverID string, day time.Time) ([]models.AvailabilityBlock, error) {
	return f.blocks[:1], nil
}

func (f *fakeBlocks) Delete(ctx context.Context, caregiverID, id string) error {
	owner, ok := f.owner[id]
	if !ok {
		return fmt.Errorf("block %s: %w", id, database.ErrNotFound)
	}
	if owner != caregiverID {
		return fmt.Errorf("block %s: %w", id, database.ErrForbidden)
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestAvailabilityHandler(t *testing.T) {
	store := &fakeBlocks{
		blocks: []models.AvailabilityBlock{{ID: "b1"}, {ID: "b2"}},
		owner:  map[string]string{"b1": "cg-1", "b2": "cg-2"},
	}
	h := NewAvailabilityHandler(store)
	r := gin.New()
	r.Use(asUser("cg-1", models.RoleCaregiver))
	r.GET("/availability", h.ListHandler)
	r.DELETE("/availability/:id", h.DeleteHandler)

	w := do(r, http.MethodGet, "/availability", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"b2"`)

	w = do(r, http.MethodGet, "/availability?date=2026-10-19", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"b2"`)

	w = do(r, http.MethodGet, "/availability?date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/availability/b2", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/availability/b9", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/availability/b1", "").Code)
	assert.Equal(t, []string{"b1"}, store.deleted)
}

type fakeRequests struct {
	req     *models.ServiceRequest
	updated string
}

func (f *fakeRequests) GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	if f.req == nil || f.req.ID != id {
		return nil, database.ErrNotFound
	}
	cp := *f.req
	return &cp, nil
}

func (f *fakeRequests) ListByRequester(ctx context.Context, requesterID string) ([]models.ServiceRequest, error) {
	return []models.ServiceRequest{*f.req}, nil
}

func (f *fakeRequests) UpdateStatus(ctx context.Context, id, status string) error {
	f.updated = status
	f.req.Status = status
	return nil
}

func (f *fakeRequests) Assign(ctx context.Context, id string, caregiver models.CaregiverView) (*models.ServiceRequest, error) {
	f.req.Caregiver = &caregiver
	f.req.Status = models.StatusAccepted
	return f.GetRequest(ctx, id)
}

type fakeUsers struct{}

func (fakeUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, FirstName: "Grace"}, nil
}

type fakeResetter struct{ reset []string }

func (f *fakeResetter) Reset(bookingID string) { f.reset = append(f.reset, bookingID) }

func requestRouter(h *RequestHandler, uid, role string) *gin.Engine {
	r := gin.New()
	r.Use(asUser(uid, role))
	r.GET("/requests/:id", h.GetHandler)
	r.POST("/requests/:id/accept", h.AcceptHandler)
	r.PATCH("/requests/:id/status", h.UpdateStatusHandler)
	return r
}

func TestRequestHandler_Lifecycle(t *testing.T) {
	store := &fakeRequests{req: &models.ServiceRequest{ID: "r1", RequesterID: "parent-1", Status: models.StatusPending}}
	resetter := &fakeResetter{}
	h := NewRequestHandler(store, fakeUsers{}, resetter)

	caregiver := requestRouter(h, "cg-1", models.RoleCaregiver)
	parent := requestRouter(h, "parent-1", models.RoleParent)
	stranger := requestRouter(h, "parent-2", models.RoleParent)

	assert.Equal(t, http.StatusForbidden, do(stranger, http.MethodGet, "/requests/r1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(parent, http.MethodGet, "/requests/r9", "").Code)

	w := do(caregiver, http.MethodPost, "/requests/r1/accept", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Grace"`)

	w = do(caregiver, http.MethodPatch, "/requests/r1/status", `{"status":"completed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(caregiver, http.MethodPatch, "/requests/r1/status", `{"status":"en_route"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusEnRoute, store.updated)
	assert.Equal(t, []string{"r1"}, resetter.reset)

	w = do(parent, http.MethodPatch, "/requests/r1/status", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

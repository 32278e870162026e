package tracking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"carebook/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrNotTrackable   = errors.New("booking is not in a trackable status")
	ErrNotAssigned    = errors.New("caregiver is not assigned to this booking")
	ErrScopeForbidden = errors.New("not allowed to follow this scope")
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// BookingSource resolves the booking a position or subscription refers to.
type BookingSource interface {
	GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
}

// AlertPublisher hands an alert to the push pipeline.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert models.GeofenceAlert, recipientID string) error
}

// Hub fans position and alert events out to websocket subscribers.
type Hub struct {
	bookings BookingSource
	alerts   AlertPublisher
	radius   float64
	logger   *zap.Logger
	upgrader websocket.Upgrader
	now      func() time.Time

	mu     sync.RWMutex
	scopes map[string]map[*subscriber]struct{}
	inside map[string]bool
}

type subscriber struct {
	userID string
	role   string
	conn   *websocket.Conn
	send   chan models.TrackingEvent
	scopes map[string]struct{} // guarded by Hub.mu
	closed bool                // guarded by Hub.mu
}

// NewHub builds a hub. alerts may be nil to skip push delivery.
func NewHub(bookings BookingSource, alerts AlertPublisher, radiusMeters float64, logger *zap.Logger) *Hub {
	if radiusMeters <= 0 {
		radiusMeters = 500
	}
	return &Hub{
		bookings: bookings,
		alerts:   alerts,
		radius:   radiusMeters,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		now:    time.Now,
		scopes: map[string]map[*subscriber]struct{}{},
		inside: map[string]bool{},
	}
}

// ServeWS upgrades the request and serves one subscriber until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID, role string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}
	s := &subscriber{
		userID: userID,
		role:   role,
		conn:   conn,
		send:   make(chan models.TrackingEvent, sendBuffer),
		scopes: map[string]struct{}{},
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writePump(s)
	}()
	h.readPump(r.Context(), s)
	h.unregister(s)
	wg.Wait()
	return nil
}

func (h *Hub) readPump(ctx context.Context, s *subscriber) {
	s.conn.SetReadLimit(4096)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd models.TrackingCommand
		if err := s.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Tracking subscriber dropped", zap.String("userID", s.userID), zap.Error(err))
			}
			return
		}
		h.handleCommand(ctx, s, cmd)
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, s *subscriber, cmd models.TrackingCommand) {
	switch cmd.Action {
	case "subscribe":
		if err := h.authorize(ctx, s, cmd.Scope); err != nil {
			h.reply(s, models.TrackingEvent{Type: models.EventError, Scope: cmd.Scope, Message: err.Error()})
			return
		}
		h.mu.Lock()
		if h.scopes[cmd.Scope] == nil {
			h.scopes[cmd.Scope] = map[*subscriber]struct{}{}
		}
		h.scopes[cmd.Scope][s] = struct{}{}
		s.scopes[cmd.Scope] = struct{}{}
		h.mu.Unlock()
		h.reply(s, models.TrackingEvent{Type: models.EventSubscribed, Scope: cmd.Scope})
	case "unsubscribe":
		h.mu.Lock()
		h.removeLocked(s, cmd.Scope)
		h.mu.Unlock()
	default:
		h.reply(s, models.TrackingEvent{Type: models.EventError, Message: "unknown action " + cmd.Action})
	}
}

func (h *Hub) authorize(ctx context.Context, s *subscriber, raw string) error {
	scope, err := ParseScope(raw)
	if err != nil {
		return err
	}
	if scope.Kind == ScopeRole {
		if scope.Role != s.role || scope.UserID != s.userID {
			return ErrScopeForbidden
		}
		return nil
	}

	req, err := h.bookings.GetRequest(ctx, scope.BookingID)
	if err != nil {
		return fmt.Errorf("booking lookup failed: %w", err)
	}
	if req.RequesterID == s.userID || (req.Caregiver != nil && req.Caregiver.ID == s.userID) {
		return nil
	}
	return ErrScopeForbidden
}

func (h *Hub) reply(s *subscriber, ev models.TrackingEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliverLocked(s, ev)
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for scope := range s.scopes {
		h.removeLocked(s, scope)
	}
	s.closed = true
	close(s.send)
}

func (h *Hub) removeLocked(s *subscriber, scope string) {
	delete(s.scopes, scope)
	if subs, ok := h.scopes[scope]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.scopes, scope)
		}
	}
}

// deliverLocked never blocks; a subscriber that cannot keep up loses events.
func (h *Hub) deliverLocked(s *subscriber, ev models.TrackingEvent) {
	if s.closed {
		return
	}
	select {
	case s.send <- ev:
	default:
		h.logger.Warn("Tracking subscriber too slow, event dropped", zap.String("userID", s.userID), zap.String("type", ev.Type))
	}
}

// Publish records a caregiver position for a trackable booking, fans it out,
// and raises an alert when the caregiver crosses the geofence radius.
func (h *Hub) Publish(ctx context.Context, caregiverID string, u models.LocationUpdate) (*models.GeofenceAlert, error) {
	req, err := h.bookings.GetRequest(ctx, u.BookingID)
	if err != nil {
		return nil, err
	}
	if req.Caregiver == nil || req.Caregiver.ID != caregiverID {
		return nil, ErrNotAssigned
	}
	if !models.IsTrackable(req.Status) {
		return nil, ErrNotTrackable
	}
	if u.At.IsZero() {
		u.At = h.now()
	}

	scopes := []string{
		BookingScope(req.ID),
		RoleScope(models.RoleParent, req.RequesterID),
		RoleScope(models.RoleCaregiver, caregiverID),
	}
	pos := u
	h.broadcast(scopes, models.TrackingEvent{Type: models.EventPosition, Position: &pos})

	alert := h.evaluate(req, u)
	if alert == nil {
		return nil, nil
	}
	h.broadcast(scopes, models.TrackingEvent{Type: models.EventGeofenceAlert, Alert: alert})

	if h.alerts != nil {
		if err := h.alerts.PublishAlert(ctx, *alert, req.RequesterID); err != nil {
			h.logger.Error("Failed to queue geofence push", zap.String("bookingID", req.ID), zap.Error(err))
		}
	}
	return alert, nil
}

// evaluate reports a crossing of the radius around the service location.
// The first position of a booking only seeds the state.
func (h *Hub) evaluate(req *models.ServiceRequest, u models.LocationUpdate) *models.GeofenceAlert {
	if req.Location == nil || !req.Location.Valid() {
		return nil
	}
	dist := DistanceMeters(req.Location.Lat(), req.Location.Lng(), u.Lat, u.Lng)
	inside := dist <= h.radius

	h.mu.Lock()
	prev, seen := h.inside[req.ID]
	h.inside[req.ID] = inside
	h.mu.Unlock()

	if !seen || prev == inside {
		return nil
	}

	alert := &models.GeofenceAlert{
		ID:             uuid.New().String(),
		BookingID:      req.ID,
		DistanceMeters: dist,
		At:             u.At,
	}
	if inside {
		alert.Kind = models.AlertEnteredArea
		alert.Message = "Caregiver arrived at the service location"
	} else {
		alert.Kind = models.AlertLeftArea
		alert.Message = fmt.Sprintf("Caregiver is %.0f m from the service location", dist)
	}
	return alert
}

// Reset forgets the geofence state of a booking, e.g. when its status changes.
func (h *Hub) Reset(bookingID string) {
	h.mu.Lock()
	delete(h.inside, bookingID)
	h.mu.Unlock()
}

func (h *Hub) broadcast(scopes []string, ev models.TrackingEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := map[*subscriber]bool{}
	for _, scope := range scopes {
		for s := range h.scopes[scope] {
			if sent[s] {
				continue
			}
			sent[s] = true
			scoped := ev
			scoped.Scope = scope
			h.deliverLocked(s, scoped)
		}
	}
}

// Subscribers counts live subscriptions to scope.
func (h *Hub) Subscribers(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scopes[scope])
}

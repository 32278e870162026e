package tracking

import (
	"context"
	"net/http"
	"sync"
	"time"

	"carebook/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is the connection state of a Listener, kept apart from its data.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateError      State = "error"
)

// Listener defaults.
const (
	DefaultMaxAlerts      = 20
	DefaultAlertTTL       = 10 * time.Second
	DefaultCoalesceWindow = 5 * time.Second
	DefaultMaxAttempts    = 5
	DefaultBackoff        = 2 * time.Second
)

// Options configures a Listener. Zero values take the defaults above.
type Options struct {
	URL   string // ws(s)://host/api/tracking/ws
	Token string
	Scope string

	DisableAutoDismiss bool
	AlertTTL           time.Duration
	MaxAlerts          int
	CoalesceWindow     time.Duration
	MaxAttempts        int
	Backoff            time.Duration

	Dialer   *websocket.Dialer
	Logger   *zap.Logger
	OnChange func()
	Now      func() time.Time
}

// Alert is a retained geofence alert.
type Alert struct {
	models.GeofenceAlert
	ReceivedAt time.Time `json:"receivedAt"`
	Count      int       `json:"count"`
}

// Listener follows one scope while the booking is trackable. It never blocks
// its caller: connecting, reading and reconnecting happen in goroutines that
// Close and SetStatus join before returning.
type Listener struct {
	opts Options

	mu          sync.Mutex
	state       State
	status      string
	position    *models.LocationUpdate
	lastUpdated time.Time
	alerts      []Alert
	timers      map[string]*time.Timer
	cancel      context.CancelFunc
	runID       uint64
	closed      bool

	wg sync.WaitGroup
}

// NewListener returns an idle listener.
func NewListener(opts Options) *Listener {
	if opts.AlertTTL <= 0 {
		opts.AlertTTL = DefaultAlertTTL
	}
	if opts.MaxAlerts <= 0 {
		opts.MaxAlerts = DefaultMaxAlerts
	}
	if opts.CoalesceWindow <= 0 {
		opts.CoalesceWindow = DefaultCoalesceWindow
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Listener{
		opts:   opts,
		state:  StateIdle,
		timers: map[string]*time.Timer{},
	}
}

// SetStatus subscribes when status enters the trackable set and disconnects
// as soon as it leaves it.
func (l *Listener) SetStatus(status string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.status = status
	running := l.cancel != nil
	want := models.IsTrackable(status)

	if want && !running {
		ctx, cancel := context.WithCancel(context.Background())
		l.cancel = cancel
		l.runID++
		id := l.runID
		l.wg.Add(1)
		l.mu.Unlock()
		go l.run(ctx, id)
		return
	}
	l.mu.Unlock()

	if !want && running {
		l.stop()
	}
}

// Close unsubscribes, disconnects and waits for every goroutine to exit.
func (l *Listener) Close() {
	l.mu.Lock()
	l.closed = true
	for id, t := range l.timers {
		t.Stop()
		delete(l.timers, id)
	}
	l.mu.Unlock()
	l.stop()
}

func (l *Listener) stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
	l.setState(StateIdle)
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Position returns the latest position and when it arrived.
func (l *Listener) Position() (*models.LocationUpdate, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.position == nil {
		return nil, time.Time{}
	}
	p := *l.position
	return &p, l.lastUpdated
}

// Alerts returns retained alerts, most recent first.
func (l *Listener) Alerts() []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

// Dismiss removes one alert. It reports whether the alert was present.
func (l *Listener) Dismiss(id string) bool {
	l.mu.Lock()
	ok := l.removeAlertLocked(id)
	l.mu.Unlock()
	if ok {
		l.changed()
	}
	return ok
}

func (l *Listener) run(ctx context.Context, id uint64) {
	defer l.wg.Done()

	failures := 0
	for {
		l.setState(StateConnecting)
		conn, err := l.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			l.opts.Logger.Warn("Tracking connect failed",
				zap.String("scope", l.opts.Scope),
				zap.Int("attempt", failures),
				zap.Error(err),
			)
			l.setState(StateError)
			if failures >= l.opts.MaxAttempts {
				l.giveUp(id)
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.opts.Backoff):
			}
			continue
		}

		failures = 0
		l.setState(StateConnected)
		err = l.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		l.opts.Logger.Warn("Tracking connection lost", zap.String("scope", l.opts.Scope), zap.Error(err))
		l.setState(StateError)
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.opts.Backoff):
		}
	}
}

// giveUp detaches an exhausted run so the next trackable SetStatus starts a
// fresh one. A run already replaced or stopped is left alone.
func (l *Listener) giveUp(id uint64) {
	l.mu.Lock()
	var cancel context.CancelFunc
	if l.runID == id {
		cancel = l.cancel
		l.cancel = nil
	}
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (l *Listener) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if l.opts.Token != "" {
		header.Set("Authorization", "Bearer "+l.opts.Token)
	}
	conn, _, err := l.opts.Dialer.DialContext(ctx, l.opts.URL, header)
	if err != nil {
		return nil, err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(models.TrackingCommand{Action: "subscribe", Scope: l.opts.Scope}); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// serve reads events until the connection fails or ctx is cancelled. On
// cancel it unsubscribes and closes the socket, which unblocks the read.
func (l *Listener) serve(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = conn.WriteJSON(models.TrackingCommand{Action: "unsubscribe", Scope: l.opts.Scope})
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		case <-done:
		}
		conn.Close()
	}()
	defer close(done)

	for {
		var ev models.TrackingEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		l.handle(ev)
	}
}

func (l *Listener) handle(ev models.TrackingEvent) {
	switch ev.Type {
	case models.EventPosition:
		if ev.Position == nil {
			return
		}
		l.mu.Lock()
		p := *ev.Position
		l.position = &p
		l.lastUpdated = l.opts.Now()
		l.mu.Unlock()
		l.changed()
	case models.EventGeofenceAlert:
		if ev.Alert != nil {
			l.addAlert(*ev.Alert)
		}
	case models.EventError:
		l.opts.Logger.Warn("Tracking channel error", zap.String("scope", ev.Scope), zap.String("message", ev.Message))
	}
}

// addAlert keeps the list bounded and most-recent-first. An alert for a
// booking that already alerted within the coalesce window replaces that entry.
func (l *Listener) addAlert(a models.GeofenceAlert) {
	now := l.opts.Now()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	entry := Alert{GeofenceAlert: a, ReceivedAt: now, Count: 1}
	for _, existing := range l.alerts {
		if existing.BookingID == a.BookingID && now.Sub(existing.ReceivedAt) <= l.opts.CoalesceWindow {
			entry.Count = existing.Count + 1
			l.removeAlertLocked(existing.ID)
			break
		}
	}

	l.alerts = append([]Alert{entry}, l.alerts...)
	for len(l.alerts) > l.opts.MaxAlerts {
		l.removeAlertLocked(l.alerts[len(l.alerts)-1].ID)
	}
	if !l.opts.DisableAutoDismiss {
		id := entry.ID
		l.timers[id] = time.AfterFunc(l.opts.AlertTTL, func() { l.Dismiss(id) })
	}
	l.mu.Unlock()
	l.changed()
}

func (l *Listener) removeAlertLocked(id string) bool {
	if t, ok := l.timers[id]; ok {
		t.Stop()
		delete(l.timers, id)
	}
	for i, a := range l.alerts {
		if a.ID == id {
			l.alerts = append(l.alerts[:i:i], l.alerts[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Listener) setState(s State) {
	l.mu.Lock()
	changed := l.state != s
	l.state = s
	l.mu.Unlock()
	if changed {
		l.changed()
	}
}

func (l *Listener) changed() {
	if l.opts.OnChange != nil {
		l.opts.OnChange()
	}
}

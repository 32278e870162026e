package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"carebook/models"
	"carebook/services/tracking"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultInterval = 10 * time.Second

var opts struct {
	server     string
	token      string
	booking    string
	interval   time.Duration
	keepAlerts bool
	verbose    bool
}

// snapshot is one printed line.
type snapshot struct {
	State    tracking.State         `json:"state"`
	Status   string                 `json:"status,omitempty"`
	Position *models.LocationUpdate `json:"position,omitempty"`
	Updated  *time.Time             `json:"updated,omitempty"`
	Alerts   []tracking.Alert       `json:"alerts"`
}

func runTrack(cmd *cobra.Command, args []string) error {
	if opts.token == "" {
		return errors.New("a token is required (--token or $CAREBOOK_TOKEN)")
	}
	wsURL, err := websocketURL(opts.server)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		logger, _ = zap.NewDevelopment()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &printer{out: cmd.OutOrStdout()}
	var l *tracking.Listener
	l = tracking.NewListener(tracking.Options{
		URL:                wsURL,
		Token:              opts.token,
		Scope:              tracking.BookingScope(opts.booking),
		DisableAutoDismiss: opts.keepAlerts,
		Logger:             logger,
		OnChange:           func() { p.print(l) },
	})
	defer l.Close()

	client := &statusClient{base: strings.TrimRight(opts.server, "/"), token: opts.token, http: &http.Client{Timeout: 10 * time.Second}}
	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for {
		status, err := client.status(ctx, opts.booking)
		switch {
		case err == nil:
			p.setStatus(status)
			l.SetStatus(status)
			if status == models.StatusCompleted || status == models.StatusCancelled {
				p.print(l)
				return nil
			}
		case ctx.Err() != nil:
			return nil
		default:
			logger.Warn("Status poll failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// websocketURL turns the API base into the tracking socket address.
func websocketURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/api/tracking/ws"
	return u.String(), nil
}

type statusClient struct {
	base  string
	token string
	http  *http.Client
}

func (c *statusClient) status(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/requests/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("GET request %s: %s: %s", id, resp.Status, strings.TrimSpace(string(body)))
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode request %s: %w", id, err)
	}
	return out.Status, nil
}

type printer struct {
	mu     sync.Mutex
	out    io.Writer
	status string
}

func (p *printer) setStatus(s string) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

func (p *printer) print(l *tracking.Listener) {
	if l == nil {
		return
	}
	snap := snapshot{State: l.State(), Alerts: l.Alerts()}
	if pos, at := l.Position(); pos != nil {
		snap.Position = pos
		snap.Updated = &at
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	snap.Status = p.status
	b, err := json.Marshal(snap)
	if err != nil {
		return
	}
	fmt.Fprintln(p.out, string(b))
}

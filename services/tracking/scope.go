// Package tracking carries live caregiver positions and geofence alerts for
// bookings in progress. Hub is the server side; Listener is the client.
package tracking

import (
	"errors"
	"fmt"
	"strings"

	"carebook/models"
)

var ErrInvalidScope = errors.New("invalid tracking scope")

// Scope kinds.
const (
	ScopeBooking = "booking"
	ScopeRole    = "role"
)

// BookingScope follows one booking.
func BookingScope(bookingID string) string {
	return ScopeBooking + ":" + bookingID
}

// RoleScope follows every booking where userID acts as role.
func RoleScope(role, userID string) string {
	return fmt.Sprintf("%s:%s:%s", ScopeRole, role, userID)
}

// Scope is a parsed subscription scope.
type Scope struct {
	Kind      string
	BookingID string
	Role      string
	UserID    string
}

// ParseScope accepts "booking:<id>" and "role:<parent|caregiver>:<userID>".
func ParseScope(s string) (Scope, error) {
	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 2 && parts[0] == ScopeBooking && parts[1] != "":
		return Scope{Kind: ScopeBooking, BookingID: parts[1]}, nil
	case len(parts) == 3 && parts[0] == ScopeRole && parts[2] != "":
		if parts[1] != models.RoleParent && parts[1] != models.RoleCaregiver {
			return Scope{}, fmt.Errorf("%w: unknown role %q", ErrInvalidScope, parts[1])
		}
		return Scope{Kind: ScopeRole, Role: parts[1], UserID: parts[2]}, nil
	}
	return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

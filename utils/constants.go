// File: utils/constants.go
package utils

import "time"

// DraftKeyPrefix is the prefix used for Redis wizard draft keys.
const DraftKeyPrefix = "wizard:draft:"

// DraftLockPrefix guards a draft while its submission is in flight.
const DraftLockPrefix = "wizard:lock:"

// DraftLockTTL bounds how long a crashed submission can hold a draft.
const DraftLockTTL = 30 * time.Second

// AlertDedupePrefix is the prefix for geofence push de-duplication keys.
const AlertDedupePrefix = "geofence:push:"

package tasks

import (
	"encoding/json"
	"testing"

	"carebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeofencePushTask(t *testing.T) {
	task, opts, err := NewGeofencePushTask(models.GeofencePushPayload{
		RecipientID: "parent-1",
		Alert:       models.GeofenceAlert{ID: "a1", BookingID: "b1"},
	})
	require.NoError(t, err)
	assert.Equal(t, TypeGeofencePush, task.Type())
	assert.NotEmpty(t, opts)

	var p models.GeofencePushPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "b1", p.Alert.BookingID)
}

func TestNewMaterializeTask(t *testing.T) {
	task, _, err := NewMaterializeTask("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, TypeRecurringMaterialize, task.Type())
	assert.JSONEq(t, `{"date":"2026-10-19"}`, string(task.Payload()))
}

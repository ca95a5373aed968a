package services_test

import (
	"encoding/json"
	"testing"

	"tracker/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEvent(t *testing.T) {
	body, err := json.Marshal(services.Event{
		Event:      services.EventActivityCreated,
		UserID:     "u-1",
		ActivityID: "a-1",
	})
	require.NoError(t, err)
	assert.NoError(t, services.AuditEvent(services.EventActivityCreated, body))

	body, err = json.Marshal(services.Event{Event: services.EventUserRegistered, UserID: "u-1"})
	require.NoError(t, err)
	assert.NoError(t, services.AuditEvent(services.EventUserRegistered, body))

	assert.Error(t, services.AuditEvent("activity.created", []byte("not json")))
	assert.Error(t, services.AuditEvent("activity.created", []byte(`{"event":"activity.created"}`)))
}

func TestEventPayloadCarriesNoSecrets(t *testing.T) {
	body, err := json.Marshal(services.Event{Event: services.EventUserRegistered, UserID: "u-1"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.NotContains(t, fields, "activity_id")
	for key := range fields {
		assert.NotContains(t, []string{"token", "api_token", "password"}, key)
	}
}

//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpeechRequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.doJSON(t, http.MethodPost, "/api/speeches", map[string]any{
		"title":      "No token",
		"text":       "Should fail.",
		"deadlineAt": "2030-01-01T00:00:00Z",
	}, "")

	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "unauthorized", body["error"])
}

func TestFullPracticeFlow(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.newUserToken(t)

	// Create a speech.
	status, speech := ts.doJSON(t, http.MethodPost, "/api/speeches", map[string]any{
		"title":      "Commencement",
		"text":       "Stay hungry. Stay foolish.",
		"deadlineAt": "2030-01-01T00:00:00Z",
	}, token)
	require.Equal(t, http.StatusCreated, status)
	speechID := speech["id"].(string)
	require.NotEmpty(t, speechID)

	// It shows up in the listing.
	status, list := ts.doJSON(t, http.MethodGet, "/api/speeches", nil, token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list["speeches"], 1)

	// Start a session.
	status, started := ts.doJSON(t, http.MethodPost, "/api/sessions", map[string]any{
		"speechId": speechID,
	}, token)
	require.Equal(t, http.StatusCreated, status)

	session := started["session"].(map[string]any)
	sessionID := session["id"].(string)
	require.Equal(t, "ACTIVE", session["status"])

	tokens := started["tokens"].([]any)
	require.Len(t, tokens, 4)

	// The first session shows everything.
	require.InDelta(t, 100.0, started["visibilityPercent"].(float64), 0.01)

	// Recite the whole speech.
	words := []map[string]any{
		{"text": "stay", "offsetMs": 500},
		{"text": "hungry", "offsetMs": 1100},
		{"text": "stay", "offsetMs": 1700},
		{"text": "foolish", "offsetMs": 2300},
	}
	status, fed := ts.doJSON(t, http.MethodPost, "/api/sessions/"+sessionID+"/feed", map[string]any{
		"words": words,
	}, token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, fed["done"])
	require.EqualValues(t, 4, fed["cursor"])

	// Finish.
	status, finished := ts.doJSON(t, http.MethodPost, "/api/sessions/"+sessionID+"/finish",
		map[string]any{}, token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FINISHED", finished["status"])

	result := finished["result"].(map[string]any)
	counts := result["counts"].(map[string]any)
	require.EqualValues(t, 4, counts["correct"].(float64)+counts["hesitated"].(float64))
	require.Greater(t, result["rawAccuracy"].(float64), 0.0)

	// The dashboard reflects the finished session.
	status, dash := ts.doJSON(t, http.MethodGet, "/api/dashboard", nil, token)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, dash["practicedToday"])
	require.EqualValues(t, 1, dash["streak"])

	// Session history has one entry.
	status, history := ts.doJSON(t, http.MethodGet, "/api/speeches/"+speechID+"/sessions", nil, token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history["sessions"], 1)

	// Every distinct word has a mastery record.
	status, mastery := ts.doJSON(t, http.MethodGet, "/api/mastery?speechId="+speechID, nil, token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mastery["records"], 3) // stay, hungry, foolish

	// The scheduling outcome was logged.
	status, logs := ts.doJSON(t, http.MethodGet, "/api/speeches/"+speechID+"/card/logs", nil, token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, logs["logs"], 1)
}

func TestAbandonFlow(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.newUserToken(t)

	status, speech := ts.doJSON(t, http.MethodPost, "/api/speeches", map[string]any{
		"title":      "Abandoned",
		"text":       "Never mind this one.",
		"deadlineAt": "2030-01-01T00:00:00Z",
	}, token)
	require.Equal(t, http.StatusCreated, status)

	status, _ = ts.doJSON(t, http.MethodPost, "/api/sessions", map[string]any{
		"speechId": speech["id"],
	}, token)
	require.Equal(t, http.StatusCreated, status)

	status, active := ts.doJSON(t, http.MethodGet, "/api/sessions/active", nil, token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ACTIVE", active["status"])

	status, _ = ts.doJSON(t, http.MethodPost, "/api/sessions/abandon", nil, token)
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.doJSON(t, http.MethodGet, "/api/sessions/active", nil, token)
	require.Equal(t, http.StatusNoContent, status)

	// Abandoning again is a noop.
	status, _ = ts.doJSON(t, http.MethodPost, "/api/sessions/abandon", nil, token)
	require.Equal(t, http.StatusOK, status)
}

func TestUsersAreIsolated(t *testing.T) {
	ts := setupTestServer(t)
	ownerToken, _ := ts.newUserToken(t)
	otherToken, _ := ts.newUserToken(t)

	status, speech := ts.doJSON(t, http.MethodPost, "/api/speeches", map[string]any{
		"title":      "Private",
		"text":       "Mine alone.",
		"deadlineAt": "2030-01-01T00:00:00Z",
	}, ownerToken)
	require.Equal(t, http.StatusCreated, status)

	speechID := speech["id"].(string)

	status, _ = ts.doJSON(t, http.MethodGet, "/api/speeches/"+speechID, nil, otherToken)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = ts.doJSON(t, http.MethodGet, "/api/speeches/"+speechID, nil, ownerToken)
	require.Equal(t, http.StatusOK, status)
}

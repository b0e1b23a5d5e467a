//go:build e2e

package test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPJSONStep is one request of a scripted API scenario.
type HTTPJSONStep struct {
	Name           string
	Method         string
	URL            string
	Body           any
	Headers        map[string]string
	ExpectedStatus int
	Validator      func(*testing.T, map[string]any)
}

// ExecuteHTTPJSONStep sends step against baseURL, checks the status and runs
// the step's validator on the decoded body.
func ExecuteHTTPJSONStep(t *testing.T, step HTTPJSONStep, baseURL string) map[string]any {
	t.Helper()
	t.Logf("step: %s", step.Name)

	resp, err := httpJSON(step.Method, baseURL+step.URL, step.Body, step.Headers)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	require.Equal(t, step.ExpectedStatus, resp.StatusCode, "step %s", step.Name)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	if step.Validator != nil {
		step.Validator(t, body)
	}
	return body
}

// ExecuteHTTPJSONSteps runs steps in order and returns every decoded body.
func ExecuteHTTPJSONSteps(t *testing.T, steps []HTTPJSONStep, baseURL string) []map[string]any {
	t.Helper()
	results := make([]map[string]any, 0, len(steps))
	for _, step := range steps {
		results = append(results, ExecuteHTTPJSONStep(t, step, baseURL))
	}
	return results
}

// AuthValidator checks a sign-up or sign-in body: a token plus the user it belongs to.
func AuthValidator(username string) func(*testing.T, map[string]any) {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		assert.NotEmpty(t, body["token"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok, "user object missing")
		assert.Equal(t, username, user["username"])
		assert.NotContains(t, user, "password_hash")
	}
}

// ErrorMessageValidator checks the "error" field of an httperr body.
func ErrorMessageValidator(substr string) func(*testing.T, map[string]any) {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		msg, ok := body["error"].(string)
		require.True(t, ok, "error field missing")
		assert.Contains(t, msg, substr)
	}
}

// FeedValidator checks that a feed or profile listing holds exactly ids, in order.
func FeedValidator(ids ...string) func(*testing.T, map[string]any) {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		assert.Equal(t, append([]string{}, ids...), noteIDs(body))
	}
}

// RatingValidator checks a rating summary returned by POST /notes/:id/rating.
func RatingValidator(avg float64, count int) func(*testing.T, map[string]any) {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		assert.InDelta(t, avg, body["avg_rating"], 0.001)
		assert.Equal(t, float64(count), body["count"])
	}
}

// GetTokenFromResponse returns the non-empty string stored under field.
func GetTokenFromResponse(t *testing.T, body map[string]any, field string) string {
	t.Helper()
	token, ok := body[field].(string)
	require.True(t, ok, "%s must be a string", field)
	require.NotEmpty(t, token)
	return token
}

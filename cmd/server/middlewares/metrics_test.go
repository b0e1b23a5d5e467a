package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct{}

func (fakeFeed) Stats() (int, uint64) { return 3, 7 }

func TestNormalizeRoutePath(t *testing.T) {
	t.Run("matched route returns template", func(t *testing.T) {
		app := fiber.New()
		app.Get("/notes/:id", func(c *fiber.Ctx) error {
			assert.Equal(t, "/notes/:id", normalizeRoutePath(c))
			return c.SendString("ok")
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/notes/abc123", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unmatched route returns a path", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			assert.NotEmpty(t, normalizeRoutePath(c))
			return c.SendStatus(404)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/nonexistent", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "2xx", normalizeStatus(201))
	assert.Equal(t, "4xx", normalizeStatus(404))
	assert.Equal(t, "5xx", normalizeStatus(503))
	assert.Equal(t, "301", normalizeStatus(301))
}

func TestAttachMetrics(t *testing.T) {
	app := fiber.New()
	AttachMetrics(app, fakeFeed{})
	app.Get("/feed", func(c *fiber.Ctx) error { return c.SendString("ok") })

	_, err := app.Test(httptest.NewRequest("GET", "/feed", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/feed",status="2xx"} 1`)
	assert.Contains(t, string(body), "feed_stream_subscribers 3")
	assert.Contains(t, string(body), "feed_stream_dropped_events_total 7")
}

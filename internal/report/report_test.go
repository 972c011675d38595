package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/shutterscout/internal/scout"
)

func testSnapshot() scout.Snapshot {
	return scout.Snapshot{
		ID:          "0b5a3c6e-1111-4a4a-9f9f-123456789abc",
		CollectedAt: time.Date(2025, 2, 12, 9, 30, 0, 0, time.UTC),
		Result: scout.CompositeResult{
			Location: scout.Location{
				Latitude:  51.9187,
				Longitude: 4.364,
				City:      "Vlaardingen",
				Region:    "South Holland",
				Country:   "The Netherlands",
				Timezone:  "Europe/Amsterdam",
			},
			Weather: []scout.DailyForecast{{
				Time:           "2025-02-12T05:00:00Z",
				TemperatureMin: 1.7,
				TemperatureMax: 6.2,
				CloudCover:     93,
				Visibility:     13.44,
				WindSpeed:      1.6,
				Humidity:       92,
			}},
			SunTimes: scout.SunTimes{Sunrise: "7:00:00 AM", Sunset: "7:00:00 PM", DayLength: "12:00:00"},
			Places: []scout.Place{
				{Name: "Test Museum", Latitude: 51.9187, Longitude: 4.364},
				{Name: "Quiet Harbour", Latitude: 51.9, Longitude: 4.35},
			},
			PhotosByPlace: map[string][]scout.Photo{
				"Test Museum": {{ID: "123", Title: "Test Photo", URL: "https://farm66.staticflickr.com/789/123_abc.jpg"}},
			},
		},
	}
}

func TestRender(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Render(&b, testSnapshot()))
	out := b.String()

	assert.Contains(t, out, "ShutterScout report for Vlaardingen, South Holland, The Netherlands")
	assert.Contains(t, out, "2025-02-12 09:30 UTC")
	assert.Contains(t, out, "51.9187,4.364")
	assert.Contains(t, out, "Sunrise:    7:00:00 AM")
	assert.Contains(t, out, "1.7..6.2 C, clouds 93%")
	assert.Contains(t, out, "1. Test Museum")
	assert.Contains(t, out, "- Test Photo: https://farm66.staticflickr.com/789/123_abc.jpg")
	assert.Contains(t, out, "2. Quiet Harbour")
	assert.Contains(t, out, "no sample photos found")
}

func TestRenderEmptySections(t *testing.T) {
	snap := testSnapshot()
	snap.Result.Weather = nil
	snap.Result.Places = nil
	snap.Result.PhotosByPlace = nil

	var b strings.Builder
	require.NoError(t, Render(&b, snap))

	assert.Contains(t, b.String(), "no forecast days returned")
	assert.Contains(t, b.String(), "no places found nearby")
}

func TestGenerateWithoutNarrator(t *testing.T) {
	text, err := Generate(context.Background(), testSnapshot(), nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Test Museum")
}

// fakeMessages serves the Anthropic messages endpoint.
func fakeMessages(t *testing.T, status int, reply string, prompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && prompt != nil &&
			len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
			*prompt = req.Messages[0].Content[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad request"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-sonnet-4-5-20250929",
			"content":       []map[string]any{{"type": "text", "text": reply}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNarrate(t *testing.T) {
	var prompt string
	srv := fakeMessages(t, http.StatusOK, "Shoot Test Museum at sunrise.", &prompt)

	n := NewNarrator("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	text, err := n.Narrate(context.Background(), testSnapshot().Result)
	require.NoError(t, err)

	assert.Equal(t, "Shoot Test Museum at sunrise.", text)
	assert.Contains(t, prompt, "recommend 2 interesting places")
	assert.Contains(t, prompt, `"city": "Vlaardingen"`)
}

func TestGenerateFallsBackWhenNarrationFails(t *testing.T) {
	srv := fakeMessages(t, http.StatusBadRequest, "", nil)

	n := NewNarrator("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	text, err := Generate(context.Background(), testSnapshot(), n)
	require.NoError(t, err)
	assert.Contains(t, text, "ShutterScout report for Vlaardingen")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, WriteFile(path, "hello"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "report.txt"), "x"))
}

// Package integration exercises the full client stack against a mock API
// server: config-shaped construction, rate limiting, window batching, and
// error propagation together.
package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rayve/wattwatchers-client/internal/testutil"
	"github.com/rayve/wattwatchers-client/pkg/interval"
	"github.com/rayve/wattwatchers-client/pkg/public"
	"github.com/rayve/wattwatchers-client/pkg/rest"
)

func TestShortEnergyBackfill(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	mock := testutil.NewMockAPI()
	defer mock.Close()

	// Two days of short energy: four half-day windows, each answered with
	// one record tagged by its window start.
	mock.SetHandler("/short-energy/DDEE000", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"timestamp":%s}]`, r.URL.Query().Get("fromTs"))
	})

	const rate = 20
	client, err := public.New(public.Config{
		Environment:          "staging",
		BaseURL:              mock.URL(),
		APIKey:               "integration-key",
		MaxRequestsPerSecond: rate,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	const halfDay = int64(12 * 3600)
	start := time.Now()
	data, err := client.LoadShortEnergy(context.Background(), "DDEE000", 0, 4*halfDay, public.UnitKWh)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("LoadShortEnergy() error = %v", err)
	}
	if len(data) != 4 {
		t.Fatalf("got %d records, want 4", len(data))
	}

	// Records arrive in window order.
	for i, record := range data {
		entry := record.(map[string]any)
		expected := float64(int64(i) * halfDay)
		if entry["timestamp"] != expected {
			t.Errorf("record %d timestamp = %v, want %v", i, entry["timestamp"], expected)
		}
	}

	if mock.RequestCount() != 4 {
		t.Errorf("request count = %d, want 4", mock.RequestCount())
	}

	// Four requests through one client at rate R take at least 3/R.
	minimum := time.Duration(3.0 / rate * float64(time.Second))
	if elapsed < minimum {
		t.Errorf("backfill took %v, want at least %v (rate limit)", elapsed, minimum)
	}
}

func TestLongEnergyFailurePropagation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/long-energy/DDEE000", testutil.MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"message":"invalid api key"}`,
	})

	client, err := public.New(public.Config{
		Environment:          "staging",
		BaseURL:              mock.URL(),
		APIKey:               "wrong-key",
		MaxRequestsPerSecond: 100,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	data, err := client.LoadLongEnergy(context.Background(), "DDEE000", 0, 3600, interval.FiveMinutes, public.UnitKWh)
	if data != nil {
		t.Errorf("data = %v, want nil alongside error", data)
	}
	if !rest.IsStatus(err) {
		t.Fatalf("error = %v, want status error", err)
	}

	restErr := err.(*rest.Error)
	if restErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want %d", restErr.StatusCode, http.StatusUnauthorized)
	}
	if restErr.Message != "invalid api key" {
		t.Errorf("Message = %q, want %q", restErr.Message, "invalid api key")
	}
}

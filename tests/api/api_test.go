//go:build api

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceURL = "http://localhost:8080"

// signToken issues an HS256 token the way the auth middleware expects.
// The secret must match the JWT_SECRET the service runs with.
func signToken(t *testing.T) string {
	t.Helper()
	secret := os.Getenv("TEST_JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "api-test-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// TestAPI_FullFlow runs the whole reservation flow end-to-end against a
// running service: seed a trip, reserve on it, list reservations with
// details, transition the status.
func TestAPI_FullFlow(t *testing.T) {
	waitForService(t)
	token := signToken(t)

	var tripID string

	// Step 1: Seed a trip (dev-only endpoint)
	t.Run("Step1_SeedTrip", func(t *testing.T) {
		resp := post(t, serviceURL+"/api/v1/trips/seed", nil, "")
		require.Equal(t, 202, resp.StatusCode, "seed should be accepted")
		resp.Body.Close()
	})

	// Give the snapshot a moment to refresh
	time.Sleep(500 * time.Millisecond)

	// Step 2: List trips
	t.Run("Step2_ListTrips", func(t *testing.T) {
		resp := get(t, serviceURL+"/api/v1/trips", "")
		require.Equal(t, 200, resp.StatusCode)

		var listResp struct {
			Trips []struct {
				ID                string  `json:"id"`
				Price             float64 `json:"price"`
				AvailableCapacity int     `json:"available_capacity"`
				Week              int     `json:"week"`
			} `json:"trips"`
			Loading bool `json:"loading"`
		}
		decodeJSON(t, resp, &listResp)

		assert.False(t, listResp.Loading)
		require.NotEmpty(t, listResp.Trips, "seeded trip should be listed")

		seeded := listResp.Trips[len(listResp.Trips)-1]
		assert.Equal(t, 10, seeded.AvailableCapacity)
		assert.Equal(t, float64(25), seeded.Price)
		assert.Greater(t, seeded.Week, 0)
		tripID = seeded.ID
	})

	// Step 3: Reservations require a token
	t.Run("Step3_Unauthorized", func(t *testing.T) {
		resp := post(t, serviceURL+"/api/v1/reservations", map[string]any{
			"selections": map[string]int{tripID: 1},
		}, "")
		assert.Equal(t, 401, resp.StatusCode)
		resp.Body.Close()
	})

	var reservationID string

	// Step 4: Create a reservation
	t.Run("Step4_CreateReservation", func(t *testing.T) {
		resp := post(t, serviceURL+"/api/v1/reservations", map[string]any{
			"selections": map[string]int{tripID: 3},
		}, token)
		require.Equal(t, 201, resp.StatusCode)

		var createResp struct {
			ReservationID string `json:"reservation_id"`
			Message       string `json:"message"`
		}
		decodeJSON(t, resp, &createResp)

		require.NotEmpty(t, createResp.ReservationID)
		assert.Contains(t, createResp.Message, "has been created successfully")
		reservationID = createResp.ReservationID
	})

	// Step 5: Empty selection is a no-op
	t.Run("Step5_EmptySelection", func(t *testing.T) {
		resp := post(t, serviceURL+"/api/v1/reservations", map[string]any{
			"selections": map[string]int{},
		}, token)
		assert.Equal(t, 204, resp.StatusCode)
		resp.Body.Close()
	})

	// Step 6: Capacity went down
	t.Run("Step6_CapacityDecremented", func(t *testing.T) {
		resp := get(t, serviceURL+"/api/v1/trips", "")
		require.Equal(t, 200, resp.StatusCode)

		var listResp struct {
			Trips []struct {
				ID                string `json:"id"`
				AvailableCapacity int    `json:"available_capacity"`
			} `json:"trips"`
		}
		decodeJSON(t, resp, &listResp)

		for _, trip := range listResp.Trips {
			if trip.ID == tripID {
				assert.Equal(t, 7, trip.AvailableCapacity)
				return
			}
		}
		t.Fatalf("trip %s not found in list", tripID)
	})

	// Step 7: List reservations with details
	t.Run("Step7_ListReservations", func(t *testing.T) {
		resp := get(t, serviceURL+"/api/v1/reservations", token)
		require.Equal(t, 200, resp.StatusCode)

		var reservations []struct {
			ID      string `json:"id"`
			Status  string `json:"status"`
			Badge   string `json:"badge"`
			Details *struct {
				TotalCapacity int     `json:"total_capacity"`
				TotalPrice    float64 `json:"total_price"`
			} `json:"details"`
		}
		decodeJSON(t, resp, &reservations)

		for _, r := range reservations {
			if r.ID != reservationID {
				continue
			}
			assert.Equal(t, "PENDING", r.Status)
			assert.Equal(t, "warning", r.Badge)
			require.NotNil(t, r.Details)
			assert.Equal(t, 3, r.Details.TotalCapacity)
			assert.Equal(t, float64(75), r.Details.TotalPrice)
			return
		}
		t.Fatalf("reservation %s not found in list", reservationID)
	})

	// Step 8: Confirm then cancel
	t.Run("Step8_StatusTransitions", func(t *testing.T) {
		resp := patch(t, serviceURL+"/api/v1/reservations/"+reservationID+"/status",
			map[string]string{"status": "CONFIRMED"}, token)
		require.Equal(t, 200, resp.StatusCode)

		var updated struct {
			Status string `json:"status"`
			Badge  string `json:"badge"`
		}
		decodeJSON(t, resp, &updated)
		assert.Equal(t, "CONFIRMED", updated.Status)
		assert.Equal(t, "success", updated.Badge)

		resp = patch(t, serviceURL+"/api/v1/reservations/"+reservationID+"/status",
			map[string]string{"status": "CANCELLED"}, token)
		require.Equal(t, 200, resp.StatusCode)
		decodeJSON(t, resp, &updated)
		assert.Equal(t, "CANCELLED", updated.Status)
		assert.Equal(t, "error", updated.Badge)
	})

	// Step 9: Bad status value
	t.Run("Step9_InvalidStatus", func(t *testing.T) {
		resp := patch(t, serviceURL+"/api/v1/reservations/"+reservationID+"/status",
			map[string]string{"status": "SHIPPED"}, token)
		assert.Equal(t, 400, resp.StatusCode)
		resp.Body.Close()
	})

	// Step 10: Unknown reservation
	t.Run("Step10_UnknownReservation", func(t *testing.T) {
		resp := patch(t, serviceURL+"/api/v1/reservations/does-not-exist/status",
			map[string]string{"status": "CONFIRMED"}, token)
		assert.Equal(t, 404, resp.StatusCode)
		resp.Body.Close()
	})
}

// Helper functions

func waitForService(t *testing.T) {
	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get(serviceURL + "/health")
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			return
		}
		time.Sleep(1 * time.Second)
	}
	t.Fatal("service did not become ready in time")
}

func get(t *testing.T, url, token string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func post(t *testing.T, url string, body any, token string) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func patch(t *testing.T, url string, body any, token string) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewBuffer(jsonBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target any) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(target)
	if err != nil && resp.StatusCode >= 400 {
		// For error responses, body might not be JSON
		return
	}
	require.NoError(t, err)
}

func TestMain(m *testing.M) {
	fmt.Println("Starting API tests...")
	fmt.Println("Make sure the service is running: make docker-up")
	fmt.Println("")

	code := m.Run()
	os.Exit(code)
}

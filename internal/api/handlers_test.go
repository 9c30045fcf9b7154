package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/talktuah/seatswitch/internal/models"
	"github.com/talktuah/seatswitch/internal/store"
)

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthHandler(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Status != "healthy" || resp.Name != DefaultAppName {
		t.Errorf("health = %+v", resp)
	}
	for _, bot := range []string{"bot1", "bot2", "bot3"} {
		if resp.Services[bot] == "" {
			t.Errorf("missing %s number", bot)
		}
	}
}

func TestCurrentSeatHandler(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/api/current-seat", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.CurrentSeatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Seat != store.InitialSeat {
		t.Errorf("seat = %q, want %q", resp.Seat, store.InitialSeat)
	}
}

func TestUpdateSeatHandler(t *testing.T) {
	s, st, _, b := newTestServer()
	obs := b.Subscribe()

	rec := doJSON(t, s, http.MethodPost, "/api/update-seat", `{"newSeat": "12A"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.UpdateSeatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.Seat != "A12" {
		t.Errorf("response = %+v", resp)
	}
	if got := st.CurrentSeat(); got != "A12" {
		t.Errorf("register = %q", got)
	}

	evs := drainEvents(obs)
	updated, ok := findEvent(evs, models.EventSeatUpdated)
	if !ok {
		t.Fatal("SEAT_UPDATED not broadcast")
	}
	data := updated.Data.(models.SeatUpdatedData)
	if data.PreviousSeat != store.InitialSeat || data.NewSeat != "A12" {
		t.Errorf("update broadcast = %+v", data)
	}
	if len(data.SeatSwap) != 2 {
		t.Errorf("seat swap payload = %+v", data.SeatSwap)
	}
}

func TestUpdateSeatRejectsInvalidSeat(t *testing.T) {
	s, st, _, b := newTestServer()
	obs := b.Subscribe()

	rec := doJSON(t, s, http.MethodPost, "/api/update-seat", `{"newSeat": "99Z"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp models.ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success || resp.Message == "" {
		t.Errorf("error response = %+v", resp)
	}
	if got := st.CurrentSeat(); got != store.InitialSeat {
		t.Errorf("register changed by rejected update: %q", got)
	}
	if len(drainEvents(obs)) != 0 {
		t.Error("rejected update must not broadcast")
	}
}

func TestUpdateSeatRejectsMissingField(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodPost, "/api/update-seat", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDynamicVariablesHandler(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodPost, "/dynamic-variables",
		`{"from_number": "+15551234567", "to_number": "+14697271468", "llm_id": "llm_1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.DynamicVariablesResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.CallerPhone != "+15551234567" || resp.CallerName != "User" {
		t.Errorf("response = %+v", resp)
	}
}

func TestTriggerAlertHandler(t *testing.T) {
	s, _, d, _ := newTestServer()
	rec := doJSON(t, s, http.MethodPost, "/api/trigger-alert",
		`{"alert_type": "gate_change", "gate_number": "B7"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.AlertResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.CallID != "alert_1" {
		t.Errorf("response = %+v", resp)
	}
	if len(d.alerts) != 1 || d.alerts[0].AlertType != "gate_change" {
		t.Errorf("alert not forwarded: %+v", d.alerts)
	}
}

func TestTriggerAlertProviderFailure(t *testing.T) {
	s, _, d, _ := newTestServer()
	d.alertErr = fmt.Errorf("provider down")

	rec := doJSON(t, s, http.MethodPost, "/api/trigger-alert", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp models.AlertResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success {
		t.Errorf("response = %+v", resp)
	}
}

func TestMethodRouting(t *testing.T) {
	s, _, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/webhook", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /webhook status = %d, want 405", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/api/current-seat", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/current-seat status = %d, want 405", rec.Code)
	}
}

// Package api: seat, health, dynamic-variable, and alert endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talktuah/seatswitch/internal/models"
	"github.com/talktuah/seatswitch/internal/store"
)

// healthHandler reports service health and the role-to-number map (GET /health).
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	numbers := s.dispatcher.Numbers()
	writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status: "healthy",
		Services: map[string]string{
			"bot1": numbers.InboundBot,
			"bot2": numbers.ConsentBot,
			"bot3": numbers.ConfirmationBot,
		},
		Name: s.appName,
	})
}

// currentSeatHandler returns the register value (GET /api/current-seat).
func (s *Server) currentSeatHandler(w http.ResponseWriter, r *http.Request) {
	current := s.store.CurrentSeat()
	slog.Debug("Server.currentSeatHandler: current seat requested", "seat", current)
	writeJSONResponse(w, http.StatusOK, models.CurrentSeatResponse{Seat: current})
}

// updateSeatHandler moves the register (POST /api/update-seat). Invalid
// seat syntax is a 400 and leaves the register untouched.
func (s *Server) updateSeatHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.UpdateSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.updateSeatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Fail("Invalid JSON format"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		slog.Warn("Server.updateSeatHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Fail("Missing required field: newSeat"))
		return
	}

	previous, current, err := s.store.SetCurrentSeat(req.NewSeat)
	if err != nil {
		if !errors.Is(err, store.ErrInvalidSeat) {
			slog.Error("Server.updateSeatHandler: unexpected error", "error", err)
		}
		slog.Warn("Server.updateSeatHandler: invalid seat rejected", "new_seat", req.NewSeat)
		writeJSONResponse(w, http.StatusBadRequest, models.Fail("Invalid seat format"))
		return
	}
	slog.Info("Server.updateSeatHandler: seat updated", "previous", previous, "current", current)

	s.broadcaster.Broadcast(models.NewEvent(models.EventSeatUpdated, models.SeatUpdatedData{
		PreviousSeat: previous,
		NewSeat:      current,
		SeatSwap: map[string]models.SeatOccupant{
			previous: {Occupied: true, Passenger: "Original Passenger", Class: "economy", Price: "$0"},
			current:  {Occupied: true, Passenger: "Mr. Khan", Class: "economy", Price: "$0"},
		},
	}))

	writeJSONResponse(w, http.StatusOK, models.UpdateSeatResponse{Success: true, Seat: current})
}

// dynamicVariablesHandler seeds an inbound call's variables before the
// provider connects it (POST /dynamic-variables).
func (s *Server) dynamicVariablesHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.DynamicVariablesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.dynamicVariablesHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Fail("Invalid JSON format"))
		return
	}
	slog.Info("Server.dynamicVariablesHandler: dynamic variables requested",
		"from", req.FromNumber, "to", req.ToNumber, "llm_id", req.LLMID)

	writeJSONResponse(w, http.StatusOK, models.DynamicVariablesResponse{
		CallerPhone: req.FromNumber,
		CallerName:  s.callerName,
	})
}

// triggerAlertHandler places a one-off flight-disruption call
// (POST /api/trigger-alert). Unlike the webhook fan-out this endpoint has a
// caller waiting for the result, so provider errors surface as a 500.
func (s *Server) triggerAlertHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.AlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.triggerAlertHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Fail("Invalid JSON format"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		slog.Warn("Server.triggerAlertHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Fail("Invalid alert payload"))
		return
	}
	slog.Info("Server.triggerAlertHandler: triggering alert call",
		"caller_name", req.CallerName, "flight_number", req.FlightNumber, "alert_type", req.AlertType)

	callID, err := s.dispatcher.TriggerAlert(r.Context(), req)
	if err != nil {
		slog.Error("Server.triggerAlertHandler: alert call failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.AlertResponse{
			Success: false,
			Message: "Failed to trigger alert call",
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, models.AlertResponse{
		Success: true,
		Message: "Alert call triggered successfully",
		CallID:  callID,
	})
}

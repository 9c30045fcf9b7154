// Package api: the webhook event router.
//
// This is the state machine that chains three independently initiated
// phone calls into one seat-switch workflow:
//
//	NEW -> AWAITING_CONSENT    inbound analysis stored, consent call placed
//	    -> CONSENT_RECEIVED    consent decision attached, confirmation placed
//	    -> CONFIRMED           confirmation analyzed, register updated
//	    -> CLOSED              request deleted
//
// A request whose consent call never produces an analysis stays in
// AWAITING_CONSENT for the life of the process.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/talktuah/seatswitch/internal/dispatch"
	"github.com/talktuah/seatswitch/internal/models"
	"github.com/talktuah/seatswitch/internal/seat"
)

// Custom-analysis field names emitted by the provider's post-call analysis.
const (
	fieldSwitchRequested = "seat_switch_requested"
	fieldCurrentSeat     = "current_seat_number"
	fieldRequestedSeat   = "requested_seat_number"
	fieldSwitchReason    = "seat_switch_reason"
	fieldSwitchConsent   = "seat_switch_consent"
)

// webhookHandler receives call lifecycle events from the provider. It
// always answers 204: the provider treats any non-2xx as a delivery
// failure and retries indefinitely, which only worsens duplicate pressure,
// so internal errors are absorbed here and logged.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var env models.WebhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		slog.Warn("Server.webhookHandler: undecodable webhook body", "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	slog.Info("Server.webhookHandler: event received",
		"event", env.Event,
		"call_id", env.Call.CallID,
		"bot_type", env.Call.Metadata.Role())

	s.routeEvent(&env)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) routeEvent(env *models.WebhookEnvelope) {
	call := &env.Call
	switch env.Event {
	case models.EventCallStarted:
		s.broadcaster.Broadcast(models.NewEvent(env.Event, models.CallEventData{
			CallID:          call.CallID,
			BotType:         call.Metadata.Role(),
			DurationSeconds: 0,
			Status:          "Started",
		}))
	case models.EventCallEnded:
		duration, _ := call.DurationSeconds()
		s.broadcaster.Broadcast(models.NewEvent(env.Event, models.CallEventData{
			CallID:              call.CallID,
			BotType:             call.Metadata.Role(),
			DurationSeconds:     duration,
			Status:              "Ended",
			DisconnectionReason: call.DisconnectionReason,
		}))
	case models.EventCallAnalyzed:
		s.handleCallAnalyzed(call)
	default:
		slog.Warn("Server.routeEvent: unknown event type ignored", "event", env.Event, "call_id", call.CallID)
	}
}

// handleCallAnalyzed sub-dispatches by bot role, then always broadcasts the
// generic analysis event for observability.
func (s *Server) handleCallAnalyzed(call *models.Call) {
	switch call.Metadata.Role() {
	case models.BotTypeConsent:
		s.handleConsentAnalyzed(call)
	case models.BotTypeConfirmation:
		s.handleConfirmationAnalyzed(call)
	case models.BotTypeAlert:
		// Alert calls carry no workflow state.
	default:
		// Inbound request calls arrive without a bot type.
		if analysisBool(call, fieldSwitchRequested) {
			s.handleInboundRequest(call)
		}
	}

	s.broadcastAnalysis(call)
}

// handleInboundRequest transitions NEW -> AWAITING_CONSENT: store the
// request under the inbound call's id, announce it, and fan out the
// consent call.
func (s *Server) handleInboundRequest(call *models.Call) {
	req := models.SeatSwitchRequest{
		RequestID:     call.CallID,
		CallerPhone:   call.FromNumber,
		CurrentSeat:   seat.ToCanonical(analysisString(call, fieldCurrentSeat)),
		RequestedSeat: seat.ToCanonical(analysisString(call, fieldRequestedSeat)),
		Reason:        analysisString(call, fieldSwitchReason),
	}
	s.store.PutRequest(req)
	slog.Info("Server.handleInboundRequest: seat switch requested",
		"request_id", req.RequestID,
		"current_seat", req.CurrentSeat,
		"requested_seat", req.RequestedSeat,
		"reason", req.Reason)

	s.broadcaster.Broadcast(models.NewEvent(models.EventSeatSwitchRequested, models.SeatSwitchRequestedData{
		CurrentSeat:   req.CurrentSeat,
		RequestedSeat: req.RequestedSeat,
	}))

	s.dispatchAsync(dispatch.Consent, req)
}

// handleConsentAnalyzed transitions AWAITING_CONSENT -> CONSENT_RECEIVED.
// The original request is resolved by the original_request_id the consent
// call was created with, falling back to the consent-call link when a
// provider strips metadata. The (request, decision) pair is claimed before
// dispatching so duplicate deliveries trigger at most one confirmation.
func (s *Server) handleConsentAnalyzed(call *models.Call) {
	requestID := call.Metadata.OriginalRequestID
	if linked, ok := s.store.ConsumeConsentLink(call.CallID); ok && requestID == "" {
		requestID = linked
	}
	if requestID == "" {
		slog.Warn("Server.handleConsentAnalyzed: no original request id for consent call", "consent_call_id", call.CallID)
		return
	}
	if _, ok := s.store.GetRequest(requestID); !ok {
		slog.Warn("Server.handleConsentAnalyzed: original request not found", "request_id", requestID, "consent_call_id", call.CallID)
		return
	}

	consent := analysisBool(call, fieldSwitchConsent)
	if !s.store.ClaimConsentOutcome(requestID, consent) {
		slog.Info("Server.handleConsentAnalyzed: duplicate consent delivery ignored", "request_id", requestID, "consent", consent)
		return
	}
	s.store.SetConsentResult(requestID, consent)
	slog.Info("Server.handleConsentAnalyzed: consent resolved", "request_id", requestID, "consent", consent)

	// Both outcomes are reported back to the requester.
	req, _ := s.store.GetRequest(requestID)
	s.dispatchAsync(dispatch.Confirmation, req)
}

// handleConfirmationAnalyzed transitions CONSENT_RECEIVED -> CONFIRMED ->
// CLOSED: announce the outcome, move the register, drop the request.
func (s *Server) handleConfirmationAnalyzed(call *models.Call) {
	requestID := call.Metadata.OriginalRequestID
	req, ok := s.store.GetRequest(requestID)
	if !ok {
		slog.Warn("Server.handleConfirmationAnalyzed: original request not found", "request_id", requestID, "call_id", call.CallID)
		return
	}

	success := call.CallAnalysis != nil && call.CallAnalysis.CallSuccessful
	s.broadcaster.Broadcast(models.NewEvent(models.EventSeatSwitchConfirmed, models.SeatSwitchConfirmedData{
		Success: success,
		OldSeat: req.CurrentSeat,
		NewSeat: req.RequestedSeat,
	}))

	if _, _, err := s.store.SetCurrentSeat(req.RequestedSeat); err != nil {
		slog.Error("Server.handleConfirmationAnalyzed: requested seat rejected by register", "request_id", requestID, "seat", req.RequestedSeat, "error", err)
	} else {
		slog.Info("Server.handleConfirmationAnalyzed: seat switch confirmed", "request_id", requestID, "new_seat", req.RequestedSeat, "success", success)
	}

	s.store.DeleteRequest(requestID)
}

// broadcastAnalysis pushes the full analysis payload to observers.
func (s *Server) broadcastAnalysis(call *models.Call) {
	data := models.CallAnalyzedData{
		CallID:     call.CallID,
		BotType:    call.Metadata.Role(),
		Status:     "Analyzed",
		Sentiment:  "neutral",
		Transcript: call.Transcript,
		CustomData: map[string]interface{}{},
	}
	if duration, ok := call.DurationSeconds(); ok {
		data.DurationSeconds = &duration
	}
	if a := call.CallAnalysis; a != nil {
		if a.UserSentiment != "" {
			data.Sentiment = a.UserSentiment
		}
		data.Summary = a.CallSummary
		data.CallSuccessful = a.CallSuccessful
		data.InVoicemail = a.InVoicemail
		data.AgentTaskCompletion = a.AgentTaskCompletionRating
		data.CallCompletion = a.CallCompletionRating
		if len(a.CustomAnalysisData) > 0 {
			var custom map[string]interface{}
			if err := json.Unmarshal(a.CustomAnalysisData, &custom); err == nil {
				data.CustomData = custom
			}
		}
	}
	s.broadcaster.Broadcast(models.NewEvent(models.EventCallAnalyzed, data))
}

// analysisBool reads a boolean field from custom analysis data. The
// provider is loose about types here: the same field arrives as true,
// "true", or 1 depending on the agent, so extraction goes through gjson's
// coercion rather than a rigid struct.
func analysisBool(call *models.Call, field string) bool {
	raw := customAnalysis(call)
	if raw == nil {
		return false
	}
	res := gjson.GetBytes(raw, field)
	return res.Exists() && res.Bool()
}

// analysisString reads a string field from custom analysis data, coercing
// numbers when the provider sends a bare row number.
func analysisString(call *models.Call, field string) string {
	raw := customAnalysis(call)
	if raw == nil {
		return ""
	}
	res := gjson.GetBytes(raw, field)
	if !res.Exists() {
		return ""
	}
	return res.String()
}

func customAnalysis(call *models.Call) []byte {
	if call.CallAnalysis == nil || len(call.CallAnalysis.CustomAnalysisData) == 0 {
		return nil
	}
	return call.CallAnalysis.CustomAnalysisData
}

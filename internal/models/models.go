// Package models defines the core data structures for SeatSwitch.
//
// It includes the webhook envelope delivered by the voice-call provider,
// the in-flight seat-switch request tracked by the correlation store, and
// the event payloads pushed to live observers.
package models

import (
	"encoding/json"
	"time"
)

// BotType identifies which agent a call belongs to, carried in call metadata.
type BotType string

const (
	// BotTypeConsent is the outbound call asking the requested seat's occupant.
	BotTypeConsent BotType = "outbound_consent"
	// BotTypeConfirmation is the outbound call reporting the outcome back.
	BotTypeConfirmation BotType = "outbound_confirmation"
	// BotTypeAlert is the ad hoc flight-disruption call.
	BotTypeAlert BotType = "alert_bot"
	// BotTypeUnknown is reported when metadata carries no bot type; inbound
	// request calls arrive this way.
	BotTypeUnknown BotType = "unknown"
)

// Webhook event types delivered by the call provider.
const (
	EventCallStarted  = "call_started"
	EventCallEnded    = "call_ended"
	EventCallAnalyzed = "call_analyzed"
)

// Event types originated by the server for live observers.
const (
	EventSeatSwitchRequested = "SEAT_SWITCH_REQUESTED"
	EventSeatSwitchConfirmed = "SEAT_SWITCH_CONFIRMED"
	EventSeatUpdated         = "SEAT_UPDATED"
)

// CallMetadata is the metadata attached to outbound calls at creation time
// and echoed back on every webhook for that call.
type CallMetadata struct {
	BotType           BotType `json:"bot_type,omitempty"`
	OriginalRequestID string  `json:"original_request_id,omitempty"`
	ConsentResult     *bool   `json:"consent_result,omitempty"`
	AlertType         string  `json:"alert_type,omitempty"`
}

// Role returns the bot type, defaulting to BotTypeUnknown when absent.
func (m *CallMetadata) Role() BotType {
	if m == nil || m.BotType == "" {
		return BotTypeUnknown
	}
	return m.BotType
}

// CallAnalysis is the provider's post-call analysis payload.
// CustomAnalysisData is kept raw because its shape differs per bot and the
// provider is loose about value types (booleans sometimes arrive as strings).
type CallAnalysis struct {
	UserSentiment             string          `json:"user_sentiment,omitempty"`
	CallSuccessful            bool            `json:"call_successful,omitempty"`
	InVoicemail               bool            `json:"in_voicemail,omitempty"`
	CallSummary               string          `json:"call_summary,omitempty"`
	AgentTaskCompletionRating string          `json:"agent_task_completion_rating,omitempty"`
	CallCompletionRating      string          `json:"call_completion_rating,omitempty"`
	CustomAnalysisData        json.RawMessage `json:"custom_analysis_data,omitempty"`
}

// Call is the call object carried in every webhook event.
type Call struct {
	CallID              string        `json:"call_id"`
	FromNumber          string        `json:"from_number,omitempty"`
	ToNumber            string        `json:"to_number,omitempty"`
	StartTimestamp      int64         `json:"start_timestamp,omitempty"`
	EndTimestamp        int64         `json:"end_timestamp,omitempty"`
	DisconnectionReason string        `json:"disconnection_reason,omitempty"`
	Transcript          string        `json:"transcript,omitempty"`
	Metadata            *CallMetadata `json:"metadata,omitempty"`
	CallAnalysis        *CallAnalysis `json:"call_analysis,omitempty"`
}

// DurationSeconds returns the call duration, or 0 and false if the call has
// not ended. Provider timestamps are unix milliseconds.
func (c *Call) DurationSeconds() (float64, bool) {
	if c.EndTimestamp == 0 {
		return 0, false
	}
	return float64(c.EndTimestamp-c.StartTimestamp) / 1000, true
}

// WebhookEnvelope is the body of POST /webhook.
type WebhookEnvelope struct {
	Event string `json:"event"`
	Call  Call   `json:"call"`
}

// SeatSwitchRequest is one in-flight request to move a passenger from
// CurrentSeat to RequestedSeat. It is created when an inbound call's
// analysis reports a switch request, gains ConsentResult when the consent
// call resolves, and is deleted once the confirmation outcome is broadcast.
type SeatSwitchRequest struct {
	RequestID     string `json:"request_id"`
	CallerPhone   string `json:"caller_phone"`
	CurrentSeat   string `json:"current_seat"`
	RequestedSeat string `json:"requested_seat"`
	Reason        string `json:"reason"`
	ConsentResult *bool  `json:"consent_result,omitempty"`
}

// Event is one message pushed to live observers.
type Event struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// NewEvent builds an Event stamped with the current UTC time.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
}

// CallEventData is the payload for call lifecycle events pushed to observers.
type CallEventData struct {
	CallID              string  `json:"call_id"`
	BotType             BotType `json:"bot_type"`
	DurationSeconds     float64 `json:"duration_seconds"`
	Status              string  `json:"status"`
	DisconnectionReason string  `json:"disconnection_reason,omitempty"`
}

// CallAnalyzedData is the payload for the generic call_analyzed observer event.
type CallAnalyzedData struct {
	CallID              string      `json:"call_id"`
	BotType             BotType     `json:"bot_type"`
	DurationSeconds     *float64    `json:"duration_seconds"`
	Status              string      `json:"status"`
	Sentiment           string      `json:"sentiment"`
	Transcript          string      `json:"transcript"`
	CustomData          interface{} `json:"custom_data"`
	Summary             string      `json:"summary"`
	CallSuccessful      bool        `json:"call_successful"`
	InVoicemail         bool        `json:"in_voicemail"`
	AgentTaskCompletion string      `json:"agent_task_completion,omitempty"`
	CallCompletion      string      `json:"call_completion,omitempty"`
}

// SeatSwitchRequestedData announces a new request with canonical seats.
type SeatSwitchRequestedData struct {
	CurrentSeat   string `json:"currentSeat"`
	RequestedSeat string `json:"requestedSeat"`
}

// SeatSwitchConfirmedData announces a resolved request.
type SeatSwitchConfirmedData struct {
	Success bool   `json:"success"`
	OldSeat string `json:"oldSeat"`
	NewSeat string `json:"newSeat"`
}

// SeatOccupant describes who holds a seat after a swap; consumed by the
// seat-map frontend.
type SeatOccupant struct {
	Occupied  bool   `json:"occupied"`
	Passenger string `json:"passenger"`
	Class     string `json:"class"`
	Price     string `json:"price"`
}

// SeatUpdatedData announces a manual or confirmed seat change.
type SeatUpdatedData struct {
	PreviousSeat string                  `json:"previousSeat"`
	NewSeat      string                  `json:"newSeat"`
	SeatSwap     map[string]SeatOccupant `json:"seatSwap,omitempty"`
}

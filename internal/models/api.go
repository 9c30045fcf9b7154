// Package models: request and response bodies for the HTTP API.
package models

// HealthResponse is the body of GET /health. Services maps bot roles to the
// phone numbers they originate from, for observability.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Name     string            `json:"name"`
}

// CurrentSeatResponse is the body of GET /api/current-seat.
type CurrentSeatResponse struct {
	Seat string `json:"seat"`
}

// UpdateSeatRequest is the body of POST /api/update-seat.
type UpdateSeatRequest struct {
	NewSeat string `json:"newSeat" validate:"required"`
}

// UpdateSeatResponse is the success body of POST /api/update-seat.
type UpdateSeatResponse struct {
	Success bool   `json:"success"`
	Seat    string `json:"seat"`
}

// ErrorResponse is the failure body shared by seat and alert endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Fail builds an ErrorResponse with the given message.
func Fail(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message}
}

// DynamicVariablesRequest is the body the provider posts before connecting
// an inbound call, to seed the call's variables.
type DynamicVariablesRequest struct {
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	LLMID      string `json:"llm_id"`
}

// DynamicVariablesResponse seeds the inbound call's variables.
type DynamicVariablesResponse struct {
	CallerPhone string `json:"caller_phone"`
	CallerName  string `json:"caller_name"`
}

// AlertRequest is the body of POST /api/trigger-alert. Every field is
// optional; the dispatcher substitutes demo defaults for blanks.
type AlertRequest struct {
	CallerName             string `json:"caller_name" validate:"omitempty,max=200"`
	FlightNumber           string `json:"flight_number" validate:"omitempty,max=20"`
	AlertType              string `json:"alert_type" validate:"omitempty,max=50"`
	ReasonForChange        string `json:"reason_for_change" validate:"omitempty,max=500"`
	GateNumber             string `json:"gate_number" validate:"omitempty,max=20"`
	EstimatedDelayDuration string `json:"estimated_delay_duration" validate:"omitempty,max=100"`
	ConfidenceLevel        string `json:"confidence_level" validate:"omitempty,max=50"`
	NewDepartureTime       string `json:"new_departure_time" validate:"omitempty,max=100"`
	Recommendation         string `json:"recommendation" validate:"omitempty,max=500"`
}

// AlertResponse is the body of POST /api/trigger-alert.
type AlertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	CallID  string `json:"call_id,omitempty"`
}

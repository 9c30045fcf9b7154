// Package dispatch assembles and places the outbound calls of the
// seat-switch workflow: the consent call to the requested seat's occupant,
// the confirmation call back to the requester, and the standalone
// flight-disruption alert call.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/talktuah/seatswitch/internal/models"
	"github.com/talktuah/seatswitch/internal/retell"
	"github.com/talktuah/seatswitch/internal/store"
)

// Kind selects which workflow call to place.
type Kind int

const (
	// Consent asks the occupant of the requested seat for permission.
	Consent Kind = iota
	// Confirmation reports the outcome back to the original requester.
	Confirmation
)

func (k Kind) String() string {
	switch k {
	case Consent:
		return "consent"
	case Confirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DenialMessage is spoken by the confirmation bot when consent was refused.
const DenialMessage = "Unfortunately, the passenger declined the seat switch request."

// Numbers holds the originating numbers per bot role and the fixed demo
// destination the consent and alert bots dial.
type Numbers struct {
	InboundBot      string
	ConsentBot      string
	ConfirmationBot string
	AlertBot        string
	DemoDestination string
}

// DefaultNumbers returns the demo deployment's number plan.
func DefaultNumbers() Numbers {
	return Numbers{
		InboundBot:      "+14697271468",
		ConsentBot:      "+14699723435",
		ConfirmationBot: "+14697463182",
		AlertBot:        "+19726946749",
		DemoDestination: "+19035700044",
	}
}

// CallCreator is the slice of the provider client the dispatcher needs.
type CallCreator interface {
	CreatePhoneCall(ctx context.Context, req retell.CreatePhoneCallRequest) (*retell.PhoneCall, error)
}

// Dispatcher places outbound calls and records consent-call correlation
// links in the store.
type Dispatcher struct {
	client        CallCreator
	store         *store.Store
	numbers       Numbers
	passengerName string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithNumbers overrides the default number plan.
func WithNumbers(n Numbers) Option {
	return func(d *Dispatcher) { d.numbers = n }
}

// WithPassengerName sets the name the consent bot addresses its callee by.
func WithPassengerName(name string) Option {
	return func(d *Dispatcher) { d.passengerName = name }
}

// New creates a Dispatcher.
func New(client CallCreator, st *store.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:        client,
		store:         st,
		numbers:       DefaultNumbers(),
		passengerName: "Ibrahim",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Numbers returns the active number plan; the health endpoint reports it.
func (d *Dispatcher) Numbers() Numbers {
	return d.numbers
}

// Dispatch places the next call in the chain for req and returns the new
// call's id. Provider errors are returned unretried; the caller decides how
// to absorb them. On a successful consent dispatch the consent call id is
// linked to the original request for later correlation.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, req models.SeatSwitchRequest) (string, error) {
	var callReq retell.CreatePhoneCallRequest
	switch kind {
	case Consent:
		// The consent call is framed from the consent target's point of
		// view: the seat they occupy is the requester's target seat.
		callReq = retell.CreatePhoneCallRequest{
			FromNumber: d.numbers.ConsentBot,
			ToNumber:   d.numbers.DemoDestination,
			DynamicVariables: map[string]string{
				"passenger_name": d.passengerName,
				"current_seat":   req.RequestedSeat,
				"requested_seat": req.CurrentSeat,
				"switch_reason":  req.Reason,
			},
			Metadata: &models.CallMetadata{
				BotType:           models.BotTypeConsent,
				OriginalRequestID: req.RequestID,
				ConsentResult:     req.ConsentResult,
			},
		}
	case Confirmation:
		consent := req.ConsentResult != nil && *req.ConsentResult
		denial := DenialMessage
		if consent {
			denial = ""
		}
		callReq = retell.CreatePhoneCallRequest{
			FromNumber: d.numbers.ConfirmationBot,
			ToNumber:   req.CallerPhone,
			DynamicVariables: map[string]string{
				"original_seat":  req.CurrentSeat,
				"requested_seat": req.RequestedSeat,
				"consent_given":  strconv.FormatBool(consent),
				"denial_message": denial,
			},
			Metadata: &models.CallMetadata{
				BotType:           models.BotTypeConfirmation,
				OriginalRequestID: req.RequestID,
				ConsentResult:     req.ConsentResult,
			},
		}
	default:
		return "", fmt.Errorf("dispatch: unknown call kind %d", int(kind))
	}

	call, err := d.client.CreatePhoneCall(ctx, callReq)
	if err != nil {
		return "", fmt.Errorf("dispatch: creating %s call for request %s: %w", kind, req.RequestID, err)
	}
	slog.Info("Dispatcher.Dispatch: outbound call created", "kind", kind.String(), "call_id", call.CallID, "request_id", req.RequestID)

	if kind == Consent {
		d.store.LinkConsentCall(call.CallID, req.RequestID)
		slog.Debug("Dispatcher.Dispatch: consent call linked to request", "consent_call_id", call.CallID, "request_id", req.RequestID)
	}
	return call.CallID, nil
}

// TriggerAlert places a one-off flight-disruption call. It is independent
// of the seat-switch state machine; blanks in req are replaced with demo
// defaults so the bot always has something to say.
func (d *Dispatcher) TriggerAlert(ctx context.Context, req models.AlertRequest) (string, error) {
	call, err := d.client.CreatePhoneCall(ctx, retell.CreatePhoneCallRequest{
		FromNumber: d.numbers.AlertBot,
		ToNumber:   d.numbers.DemoDestination,
		DynamicVariables: map[string]string{
			"caller_name":              orDefault(req.CallerName, "valued passenger"),
			"flight_number":            orDefault(req.FlightNumber, "AA2093"),
			"alert_type":               orDefault(req.AlertType, "delay"),
			"reason_for_change":        orDefault(req.ReasonForChange, "weather conditions"),
			"gate_number":              orDefault(req.GateNumber, "not available"),
			"estimated_delay_duration": orDefault(req.EstimatedDelayDuration, "unknown"),
			"confidence_level":         orDefault(req.ConfidenceLevel, "medium"),
			"new_departure_time":       orDefault(req.NewDepartureTime, "to be determined"),
			"recommendation":           orDefault(req.Recommendation, "stay tuned for updates"),
		},
		Metadata: &models.CallMetadata{
			BotType:   models.BotTypeAlert,
			AlertType: req.AlertType,
		},
	})
	if err != nil {
		return "", fmt.Errorf("dispatch: creating alert call: %w", err)
	}
	slog.Info("Dispatcher.TriggerAlert: alert call created", "call_id", call.CallID, "alert_type", req.AlertType)
	return call.CallID, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

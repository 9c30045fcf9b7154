// Package store owns all mutable state of the seat-switch workflow.
//
// A single Store instance tracks in-flight seat-switch requests, the
// consent-call correlation links, the set of already-processed consent
// outcomes, and the current-seat register. Webhook deliveries can race on
// the same request (the provider retries and duplicates), so every access
// goes through one mutex.
package store

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/talktuah/seatswitch/internal/models"
	"github.com/talktuah/seatswitch/internal/seat"
)

// Seat register defaults.
const (
	// InitialSeat is the seat held by the demo passenger at process start.
	InitialSeat = "B14"
	// FallbackSeat is the value a self-healing read resets the register to
	// when it somehow holds an invalid seat.
	FallbackSeat = "A12"
)

// ErrInvalidSeat is returned when a write path receives a seat string that
// is not a well-formed seat identifier in either notation.
var ErrInvalidSeat = errors.New("invalid seat format")

// Store is the single state owner for the request-correlation maps and the
// current-seat register.
type Store struct {
	mu           sync.Mutex
	requests     map[string]models.SeatSwitchRequest
	consentLinks map[string]string
	processed    map[string]struct{}
	currentSeat  string
}

// Option configures a Store.
type Option func(*Store)

// WithInitialSeat overrides the seat the register starts with.
func WithInitialSeat(s string) Option {
	return func(st *Store) { st.currentSeat = s }
}

// New creates an empty Store with the register set to InitialSeat.
func New(opts ...Option) *Store {
	st := &Store{
		requests:     make(map[string]models.SeatSwitchRequest),
		consentLinks: make(map[string]string),
		processed:    make(map[string]struct{}),
		currentSeat:  InitialSeat,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// PutRequest stores req keyed by its RequestID, replacing any previous
// entry with the same key.
func (st *Store) PutRequest(req models.SeatSwitchRequest) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.requests[req.RequestID] = req
}

// GetRequest returns the request stored under id, if any.
func (st *Store) GetRequest(id string) (models.SeatSwitchRequest, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	req, ok := st.requests[id]
	return req, ok
}

// DeleteRequest removes the request stored under id.
func (st *Store) DeleteRequest(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.requests, id)
}

// SetConsentResult attaches the consent decision to the request stored
// under id. Returns false if no such request exists.
func (st *Store) SetConsentResult(id string, consent bool) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	req, ok := st.requests[id]
	if !ok {
		return false
	}
	req.ConsentResult = &consent
	st.requests[id] = req
	return true
}

// LinkConsentCall records that consentCallID was dispatched for requestID.
func (st *Store) LinkConsentCall(consentCallID, requestID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.consentLinks[consentCallID] = requestID
}

// ConsumeConsentLink resolves a consent call id to its original request id
// and removes the link, so it never outlives the consent call.
func (st *Store) ConsumeConsentLink(consentCallID string) (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	requestID, ok := st.consentLinks[consentCallID]
	if ok {
		delete(st.consentLinks, consentCallID)
	}
	return requestID, ok
}

// ClaimConsentOutcome marks the (requestID, consent) pair processed and
// reports whether this call was the first to do so. Duplicate webhook
// deliveries lose the claim and must not dispatch a confirmation call.
// Markers are never removed; the set is bounded by the demo's lifetime.
func (st *Store) ClaimConsentOutcome(requestID string, consent bool) bool {
	key := requestID + ":false"
	if consent {
		key = requestID + ":true"
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, done := st.processed[key]; done {
		return false
	}
	st.processed[key] = struct{}{}
	return true
}

// CurrentSeat returns the register value. An invalid value is reset to
// FallbackSeat before returning, so readers always see a valid seat.
func (st *Store) CurrentSeat() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	formatted := seat.ToCanonical(st.currentSeat)
	if !seat.IsValid(formatted) {
		slog.Error("Store.CurrentSeat: register held invalid seat, resetting", "seat", st.currentSeat, "fallback", FallbackSeat)
		st.currentSeat = FallbackSeat
		return st.currentSeat
	}
	st.currentSeat = formatted
	return st.currentSeat
}

// SetCurrentSeat normalizes and validates newSeat, then stores it. It
// returns the previous and stored values. On ErrInvalidSeat the register is
// left untouched.
func (st *Store) SetCurrentSeat(newSeat string) (previous, current string, err error) {
	canonical, kind := seat.Parse(newSeat)
	if kind == seat.Unrecognized {
		return "", "", ErrInvalidSeat
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	previous = st.currentSeat
	st.currentSeat = canonical
	return previous, canonical, nil
}

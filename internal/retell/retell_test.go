package retell

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talktuah/seatswitch/internal/models"
)

func TestCreatePhoneCall(t *testing.T) {
	var gotAuth string
	var gotReq CreatePhoneCallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(PhoneCall{CallID: "call_abc", Status: "registered"})
	}))
	defer srv.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	call, err := client.CreatePhoneCall(context.Background(), CreatePhoneCallRequest{
		FromNumber:       "+14699723435",
		ToNumber:         "+19035700044",
		DynamicVariables: map[string]string{"passenger_name": "Ibrahim"},
		Metadata:         &models.CallMetadata{BotType: models.BotTypeConsent, OriginalRequestID: "in1"},
	})
	if err != nil {
		t.Fatalf("CreatePhoneCall: %v", err)
	}
	if call.CallID != "call_abc" {
		t.Errorf("call id = %q, want call_abc", call.CallID)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.FromNumber != "+14699723435" || gotReq.Metadata.OriginalRequestID != "in1" {
		t.Errorf("request not forwarded faithfully: %+v", gotReq)
	}
}

func TestCreatePhoneCallProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.CreatePhoneCall(context.Background(), CreatePhoneCallRequest{})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.StatusCode != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", provErr.StatusCode)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("RETELL_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when API key missing")
	}
}

package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talktuah/seatswitch/internal/events"
	"github.com/talktuah/seatswitch/internal/models"
)

// waitForObservers polls until the broadcaster has n observers, so tests
// only broadcast once the stream handler has subscribed.
func waitForObservers(t *testing.T, b *events.Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("broadcaster never reached %d observers", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSSEStreamDeliversEvents(t *testing.T) {
	s, _, _, b := newTestServer()
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events")
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	waitForObservers(t, b, 1)
	b.Broadcast(models.NewEvent(models.EventSeatUpdated, models.SeatUpdatedData{PreviousSeat: "B14", NewSeat: "A12"}))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") {
		t.Fatalf("line = %q, want data: prefix", line)
	}

	var ev models.Event
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Type != models.EventSeatUpdated {
		t.Errorf("event type = %q", ev.Type)
	}
}

func TestSSEObserverRemovedOnDisconnect(t *testing.T) {
	s, _, _, b := newTestServer()
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	waitForObservers(t, b, 1)

	resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for b.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("observer not removed after disconnect")
		}
		// The handler only notices the closed connection when it writes.
		b.Broadcast(models.NewEvent(models.EventCallStarted, nil))
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketStreamDeliversEvents(t *testing.T) {
	s, _, _, b := newTestServer()
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer conn.Close()

	waitForObservers(t, b, 1)
	b.Broadcast(models.NewEvent(models.EventSeatSwitchRequested, models.SeatSwitchRequestedData{CurrentSeat: "A12", RequestedSeat: "B14"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if ev.Type != models.EventSeatSwitchRequested {
		t.Errorf("event type = %q", ev.Type)
	}
}

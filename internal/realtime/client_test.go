package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"logviewer-client/internal/logging"
	"logviewer-client/internal/runstatus"
)

func quietLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

func TestReadEventsParsesFields(t *testing.T) {
	body := strings.Join([]string{
		": keep-alive",
		"event: identity",
		`data: {"GUID":"g-1"}`,
		"",
		"event:serial.data",
		"data: line one",
		"data: line two",
		"id: 7",
		"",
		"",
		"event: dlt.closed\r",
		`data: {"addr":"a"}`,
	}, "\n")

	events := make(chan Event, 8)
	errs := make(chan error, 1)
	readEvents(strings.NewReader(body), events, errs)

	var got []Event
	for event := range events {
		got = append(got, event)
	}
	want := []Event{
		{Name: "identity", Data: []byte(`{"GUID":"g-1"}`)},
		{Name: "serial.data", Data: []byte("line one\nline two")},
		{Name: "dlt.closed", Data: []byte(`{"addr":"a"}`)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %q, want %q", got, want)
	}
	if err := <-errs; !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

// sseServer serves one scripted body per connection; connections past the
// script block until the client goes away.
func sseServer(t *testing.T, bodies ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1))
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.URL.Query().Get("GUID") != "g-1" {
			t.Errorf("GUID query = %q", r.URL.Query().Get("GUID"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		if n > len(bodies) {
			w.(http.Flusher).Flush()
			<-r.Context().Done()
			return
		}
		_, _ = io.WriteString(w, bodies[n-1])
		w.(http.Flusher).Flush()
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

type recorder struct {
	mu          sync.Mutex
	statuses    []string
	identities  []string
	events      []string
	disconnects int
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnIdentity: func(guid string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.identities = append(r.identities, guid)
		},
		OnEvent: func(event Event) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, event.Name+"="+string(event.Data))
		},
		OnStatus: func(status string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.statuses = append(r.statuses, status)
		},
		OnDisconnect: func(error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.disconnects++
		},
	}
}

func (r *recorder) snapshot() ([]string, []string, []string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...), append([]string(nil), r.identities...), append([]string(nil), r.events...), r.disconnects
}

func TestRunDeliversEventsAndReconnects(t *testing.T) {
	session := "event: identity\ndata: {\"GUID\":\"g-1\"}\n\nevent: serial.data\ndata: {\"connection\":\"c\",\"data\":\"x\"}\n\n"
	server, hits := sseServer(t, session, session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	client := Client{
		HTTP:              server.Client(),
		EventsURL:         server.URL + "/api/events",
		GUID:              "g-1",
		Logger:            quietLogger(),
		ReconnectDelay:    time.Millisecond,
		ReconnectMaxDelay: 5 * time.Millisecond,
	}
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx, rec.handlers()) }()

	deadline := time.Now().Add(5 * time.Second)
	for hits.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("server hits = %d, want 3", hits.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run() did not return after cancel")
	}

	statuses, identities, events, disconnects := rec.snapshot()
	if !reflect.DeepEqual(identities, []string{"g-1", "g-1"}) {
		t.Fatalf("identities = %v", identities)
	}
	wantEvent := `serial.data={"connection":"c","data":"x"}`
	if !reflect.DeepEqual(events, []string{wantEvent, wantEvent}) {
		t.Fatalf("events = %v", events)
	}
	if disconnects != 2 {
		t.Fatalf("disconnects = %d, want 2", disconnects)
	}
	wantPrefix := []string{runstatus.Connecting, runstatus.Connected, runstatus.Reconnecting, runstatus.Connected, runstatus.Reconnecting}
	if len(statuses) < len(wantPrefix) || !reflect.DeepEqual(statuses[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("statuses = %v, want prefix %v", statuses, wantPrefix)
	}
	if last := statuses[len(statuses)-1]; last != runstatus.Disconnected {
		t.Fatalf("last status = %q, want %q", last, runstatus.Disconnected)
	}
}

func TestRunStopsWhenRefused(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unknown client", http.StatusForbidden)
	}))
	defer server.Close()

	rec := &recorder{}
	client := Client{HTTP: server.Client(), EventsURL: server.URL, GUID: "g-1", Logger: quietLogger(), ReconnectDelay: time.Millisecond}
	err := client.Run(context.Background(), rec.handlers())

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("Run() error = %v, want 403 HTTPStatusError", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}
	statuses, _, _, disconnects := rec.snapshot()
	if !reflect.DeepEqual(statuses, []string{runstatus.Connecting, runstatus.DisconnectedRefused}) {
		t.Fatalf("statuses = %v", statuses)
	}
	if disconnects != 0 {
		t.Fatalf("disconnects = %d for a session that never connected", disconnects)
	}
}

func TestSessionRejectsForeignIdentity(t *testing.T) {
	server, _ := sseServer(t, "event: identity\ndata: {\"GUID\":\"someone-else\"}\n\n")
	rec := &recorder{}
	client := Client{HTTP: server.Client(), EventsURL: server.URL, GUID: "g-1", Logger: quietLogger()}

	connected := false
	err := client.runSession(context.Background(), rec.handlers(), func() { connected = true })
	if !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("runSession() error = %v, want ErrIdentityMismatch", err)
	}
	if _, identities, _, _ := rec.snapshot(); len(identities) != 0 || connected {
		t.Fatalf("identities = %v, connected = %v", identities, connected)
	}
}

func TestIsRefused(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: &HTTPStatusError{StatusCode: 401}, want: true},
		{err: fmt.Errorf("wrapped: %w", &HTTPStatusError{StatusCode: 404}), want: true},
		{err: &HTTPStatusError{StatusCode: 429}, want: false},
		{err: &HTTPStatusError{StatusCode: 503}, want: false},
		{err: io.EOF, want: false},
	}
	for _, tt := range tests {
		if got := IsRefused(tt.err); got != tt.want {
			t.Fatalf("IsRefused(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRunRequiresGUID(t *testing.T) {
	err := Client{Logger: quietLogger()}.Run(context.Background(), Handlers{})
	if !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("Run() error = %v, want ErrMissingIdentity", err)
	}
}

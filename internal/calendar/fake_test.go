package calendar_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Tiliavir/shiftsync/internal/calendar"
)

// memAPI is an in-memory EventAPI that counts calls.
type memAPI struct {
	mu        sync.Mutex
	events    []calendar.Event
	nextID    int
	listErr   error
	deleteErr map[string]error
	createErr error

	lists, creates, deletes int
	lastQuery               calendar.Query
}

func (m *memAPI) ListEvents(_ context.Context, q calendar.Query) ([]calendar.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	m.lastQuery = q
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []calendar.Event
	for _, ev := range m.events {
		if q.Text == "" || strings.Contains(strings.ToLower(ev.Summary), strings.ToLower(q.Text)) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memAPI) CreateEvent(_ context.Context, ev calendar.Event) (calendar.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return calendar.Event{}, m.createErr
	}
	m.nextID++
	ev.ID = fmt.Sprintf("ev%d", m.nextID)
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *memAPI) DeleteEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	for i, ev := range m.events {
		if ev.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memAPI) seed(summaries ...string) {
	for _, s := range summaries {
		m.nextID++
		m.events = append(m.events, calendar.Event{ID: fmt.Sprintf("ev%d", m.nextID), Summary: s})
	}
}

// fakeGoogle serves the events endpoints of the Calendar v3 API from a memAPI.
func fakeGoogle(t *testing.T, api *memAPI) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		items, err := api.ListEvents(r.Context(), calendar.Query{Text: r.URL.Query().Get("q")})
		if err != nil {
			http.Error(w, `{"error":{"message":"backend"}}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	})
	mux.HandleFunc("POST /calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		var ev calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := api.CreateEvent(r.Context(), ev)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(created)
	})
	mux.HandleFunc("DELETE /calendars/primary/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		api.mu.Lock()
		found := false
		for _, ev := range api.events {
			if ev.ID == id {
				found = true
			}
		}
		api.mu.Unlock()
		if !found {
			http.Error(w, `{"error":{"code":410,"message":"Resource has been deleted"}}`, http.StatusGone)
			return
		}
		if err := api.DeleteEvent(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

var errBoom = errors.New("boom")

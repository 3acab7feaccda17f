package patterns

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  ", nil); err == nil {
		t.Fatalf("expected error for blank base URL")
	}
}

func TestClientList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/patterns" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"_id":"1","name":"Blinker","grid":[[0,1,0],[0,1,0],[0,1,0]],"createdAt":"2024-01-02T03:04:05Z"}]`))
	})

	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" || got[0].Name != "Blinker" {
		t.Fatalf("unexpected patterns %+v", got)
	}
	if !got[0].Grid[1][1] || got[0].Grid[1][0] {
		t.Fatalf("grid decoded wrong: %v", got[0].Grid)
	}
}

func TestClientListFailureIsFetchFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database down", http.StatusServiceUnavailable)
	})

	_, err := c.List(context.Background())
	if !errors.Is(err, model.ErrFetchFailed) {
		t.Fatalf("err=%v, want ErrFetchFailed", err)
	}
}

func TestClientCreate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/patterns" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req model.PatternRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Pattern{ID: "123", Name: req.Name, Grid: req.Grid})
	})

	got, err := c.Create(context.Background(), model.PatternRequest{Name: "Dot", Grid: model.Matrix{{true}}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "123" || got.Name != "Dot" || !got.Grid[0][0] {
		t.Fatalf("unexpected pattern %+v", got)
	}
}

func TestClientCreateFailureIsPersistFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Create(context.Background(), model.PatternRequest{Name: "x", Grid: model.Matrix{{true}}})
	if !errors.Is(err, model.ErrPersistFailed) {
		t.Fatalf("err=%v, want ErrPersistFailed", err)
	}
}

func TestClientMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	})

	if _, err := c.List(context.Background()); !errors.Is(err, model.ErrFetchFailed) {
		t.Fatalf("err=%v, want ErrFetchFailed", err)
	}
}

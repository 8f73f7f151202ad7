package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", 5*time.Second)
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Meta{{ID: "a", Name: "Fall"}})
	})

	metas, err := c.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer secret" || gotPath != "/api/schedules" {
		t.Fatalf("unexpected request %q %q", gotAuth, gotPath)
	}
	if len(metas) != 1 || metas[0].Name != "Fall" {
		t.Fatalf("unexpected metas %+v", metas)
	}
}

func TestClientCreateAndPatchBody(t *testing.T) {
	var patch map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"r1"}`))
		case http.MethodPatch:
			json.NewDecoder(r.Body).Decode(&patch)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	id, err := c.Create(ctx, "Fall")
	if err != nil || id != "r1" {
		t.Fatalf("create: %q %v", id, err)
	}
	name := "Spring"
	if err := c.Update(ctx, id, Patch{Name: &name}); err != nil {
		t.Fatal(err)
	}
	if string(patch["name"]) != `"Spring"` {
		t.Fatalf("unexpected patch body %v", patch)
	}
	if _, ok := patch["settings"]; ok {
		t.Fatal("unset settings should be omitted")
	}
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrUnauthenticated},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":"nope"}`))
		})
		if _, err := c.Get(context.Background(), "x"); !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestClientServerErrorIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	var ne *NetworkError
	if err := c.Delete(context.Background(), "x"); !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestClientUnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "secret", time.Second)
	var ne *NetworkError
	if _, err := c.List(context.Background()); !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestClientDeleteNotFoundIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if err := c.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("delete should be idempotent, got %v", err)
	}
}

func TestClientWithoutTokenOnlyAllowsPublic(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"r1","name":"Shared","tasks":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if _, err := c.List(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	r, err := c.GetPublic(context.Background(), "tok")
	if err != nil || r.Name != "Shared" {
		t.Fatalf("public get: %+v %v", r, err)
	}
	if gotAuth != "" {
		t.Fatal("public lookup must not send credentials")
	}
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	WithRateLimit(1)(c)

	ctx := context.Background()
	if _, err := c.List(ctx); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if _, err := c.List(ctx); err == nil {
		t.Fatal("expected the limiter to refuse within the deadline")
	}
}

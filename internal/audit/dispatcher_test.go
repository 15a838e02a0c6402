package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
)

type stubRepo struct {
	mu     sync.Mutex
	events []ports.AccessEvent
}

func (r *stubRepo) Insert(_ context.Context, event ports.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *stubRepo) ListByPath(_ context.Context, path string, _ int64) ([]ports.AccessEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.AccessEvent
	for _, e := range r.events {
		if e.Path == path {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestDispatcher_PersistsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &stubRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())
	d.Start(ctx)

	session := domain.Session{
		User:            &domain.User{ID: "u1", Role: domain.RoleAgent},
		IsAuthenticated: true,
		Hydrated:        true,
	}
	d.Record(NewEvent("/admin", "redirect", "/login", "role_mismatch", session))
	d.Record(NewEvent("/payments", "redirect", "/login", "unauthenticated", domain.Session{Hydrated: true}))

	waitFor(t, func() bool { return repo.count() == 2 })

	events, err := repo.ListByPath(context.Background(), "/admin", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one /admin event, got %d", len(events))
	}
	got := events[0]
	if got.Role != domain.RoleAgent || got.UserID != "u1" || got.Reason != "role_mismatch" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.ID == "" || got.Timestamp == 0 {
		t.Fatalf("event missing id/timestamp: %+v", got)
	}
}

func TestDispatcher_SamePathKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &stubRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(ctx)

	anon := domain.Session{Hydrated: true}
	first := NewEvent("/contracts", "redirect", "/login", "unauthenticated", anon)
	second := NewEvent("/contracts", "redirect", "/login", "unauthenticated", anon)
	d.Record(first)
	d.Record(second)

	waitFor(t, func() bool { return repo.count() == 2 })

	events, _ := repo.ListByPath(context.Background(), "/contracts", 10)
	if events[0].ID != first.ID || events[1].ID != second.ID {
		t.Fatalf("per-path ordering violated: %+v", events)
	}
}

package component

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/peertrack/logger"
)

type fakeComponent struct {
	name     string
	startErr error
	started  bool
	stopped  bool
	order    *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	if f.order != nil {
		*f.order = append(*f.order, "start:"+f.name)
	}
	return nil
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	f.stopped = true
	if f.order != nil {
		*f.order = append(*f.order, "stop:"+f.name)
	}
	return nil
}

func (f *fakeComponent) Health(ctx context.Context) Health {
	return Health{Name: f.name, Status: StatusHealthy}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(logger.Nop())
	if err := r.Register(&fakeComponent{name: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "a"}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRegistryStartStopOrder(t *testing.T) {
	var order []string
	a := &fakeComponent{name: "a", order: &order}
	b := &fakeComponent{name: "b", order: &order}

	r := NewRegistry(logger.Nop())
	r.Register(a)
	r.Register(b)

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	r.StopAll(ctx)

	want := []string{"start:a", "start:b", "stop:b", "stop:a"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("step %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestRegistryStartFailureRollsBack(t *testing.T) {
	a := &fakeComponent{name: "a"}
	b := &fakeComponent{name: "b", startErr: errors.New("boom")}

	r := NewRegistry(logger.Nop())
	r.Register(a)
	r.Register(b)

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected StartAll to fail")
	}
	if !a.stopped {
		t.Error("expected already-started component to be stopped on failure")
	}
}

func TestRegistryHealth(t *testing.T) {
	r := NewRegistry(logger.Nop())
	r.Register(&fakeComponent{name: "a"})
	r.Register(&fakeComponent{name: "b"})

	hs := r.Health(context.Background())
	if len(hs) != 2 {
		t.Fatalf("expected 2 health entries, got %d", len(hs))
	}
	for _, h := range hs {
		if h.Status != StatusHealthy {
			t.Errorf("component %s: expected healthy, got %s", h.Name, h.Status)
		}
	}
}

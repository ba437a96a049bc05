package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Makepad-fr/nexo/internal/resource"
)

type rec struct {
	ID   int64
	Name string
}

type fetchLog struct {
	mu    sync.Mutex
	calls []resource.Filter
}

func (f *fetchLog) add(flt resource.Filter) {
	f.mu.Lock()
	f.calls = append(f.calls, flt)
	f.mu.Unlock()
}

func (f *fetchLog) get() []resource.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]resource.Filter(nil), f.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSearchDebounceCollapses(t *testing.T) {
	log := &fetchLog{}
	l := NewList[rec](context.Background(), func(_ context.Context, f resource.Filter) ([]rec, error) {
		log.add(f)
		return nil, nil
	}, nil, nil, 40*time.Millisecond)
	defer l.Close()

	l.Search("Ac")
	l.Search("Acme")
	time.Sleep(10 * time.Millisecond)
	l.Search("")

	waitFor(t, func() bool { return len(log.get()) == 1 })
	time.Sleep(100 * time.Millisecond)
	l.Wait()
	calls := log.get()
	if len(calls) != 1 || calls[0].Search != "" {
		t.Fatalf("fetches = %+v, want one with empty search", calls)
	}
}

func TestLastWriteWins(t *testing.T) {
	release := make(chan struct{})
	l := NewList[rec](context.Background(), func(_ context.Context, f resource.Filter) ([]rec, error) {
		if f.Search == "slow" {
			<-release
			return []rec{{ID: 1, Name: "stale"}}, nil
		}
		return []rec{{ID: 2, Name: "fresh"}}, nil
	}, nil, nil, time.Millisecond)
	defer l.Close()

	l.Load(resource.Filter{Search: "slow"})
	l.Load(resource.Filter{Search: "fast"})
	waitFor(t, func() bool { return !l.State().Loading })
	close(release)
	l.Wait()

	st := l.State()
	if len(st.Records) != 1 || st.Records[0].Name != "fresh" {
		t.Fatalf("records = %+v", st.Records)
	}
	if st.Filter.Search != "fast" {
		t.Fatalf("filter = %+v", st.Filter)
	}
}

func TestEmptyState(t *testing.T) {
	l := NewList[rec](context.Background(), func(context.Context, resource.Filter) ([]rec, error) {
		return []rec{}, nil
	}, nil, nil, 0)
	defer l.Close()
	if l.State().Empty {
		t.Fatalf("empty before any load")
	}
	l.Load(resource.Filter{})
	l.Wait()
	if !l.State().Empty {
		t.Fatalf("want Empty after zero-record load")
	}
}

func TestNoNotifyAfterClose(t *testing.T) {
	release := make(chan struct{})
	var notified atomic.Int32
	var fetches atomic.Int32
	l := NewList[rec](context.Background(), func(ctx context.Context, _ resource.Filter) ([]rec, error) {
		fetches.Add(1)
		<-release
		return []rec{{ID: 1}}, nil
	}, nil, func() { notified.Add(1) }, 20*time.Millisecond)

	l.Load(resource.Filter{})
	l.Search("pending")
	l.Close()
	close(release)
	l.Wait()
	time.Sleep(60 * time.Millisecond)

	if notified.Load() != 0 {
		t.Fatalf("notify after close: %d", notified.Load())
	}
	if fetches.Load() != 1 {
		t.Fatalf("debounced search fired after close")
	}
	if len(l.State().Records) != 0 {
		t.Fatalf("state updated after close")
	}
}

func TestDelete(t *testing.T) {
	var (
		mu       sync.Mutex
		data     = []rec{{ID: 4}, {ID: 5}}
		removed  []int64
		failNext bool
	)
	fetch := func(context.Context, resource.Filter) ([]rec, error) {
		mu.Lock()
		defer mu.Unlock()
		return append([]rec(nil), data...), nil
	}
	remove := func(_ context.Context, id int64) error {
		mu.Lock()
		defer mu.Unlock()
		if failNext {
			failNext = false
			return errors.New("in use by a contract")
		}
		removed = append(removed, id)
		out := data[:0]
		for _, r := range data {
			if r.ID != id {
				out = append(out, r)
			}
		}
		data = out
		return nil
	}
	l := NewList[rec](context.Background(), fetch, remove, nil, 0)
	defer l.Close()
	l.Load(resource.Filter{})
	l.Wait()

	ctx := context.Background()
	if err := l.Delete(ctx, 5, "delete?", ConfirmFunc(func(string) bool { return false })); !errors.Is(err, ErrDeclined) {
		t.Fatalf("declined err = %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("declined delete reached remove")
	}

	mu.Lock()
	failNext = true
	mu.Unlock()
	yes := ConfirmFunc(func(string) bool { return true })
	if err := l.Delete(ctx, 5, "delete?", yes); err == nil {
		t.Fatalf("expected failure")
	}
	st := l.State()
	if len(st.Records) != 2 || st.Message != "in use by a contract" {
		t.Fatalf("after failed delete: %+v", st)
	}

	if err := l.Delete(ctx, 5, "delete?", yes); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	l.Wait()
	st = l.State()
	if len(st.Records) != 1 || st.Records[0].ID != 4 || st.Err != nil {
		t.Fatalf("after delete: %+v", st)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var n atomic.Int32
	d.Trigger(func() { n.Add(1) })
	d.Stop()
	d.Trigger(func() { n.Add(1) })
	time.Sleep(40 * time.Millisecond)
	if n.Load() != 0 {
		t.Fatalf("ran %d times after Stop", n.Load())
	}
}

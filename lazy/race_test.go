package lazy

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/lazyval/retain"
)

// recorder is a producer that hands out distinct values and remembers them.
type recorder struct {
	calls    atomic.Int64
	produced sync.Map // int -> struct{}
	delay    time.Duration
}

func (r *recorder) produce() (int, error) {
	v := int(r.calls.Add(1))
	r.produced.Store(v, struct{}{})
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return v, nil
}

func (r *recorder) check(v int) error {
	if _, ok := r.produced.Load(v); !ok {
		return fmt.Errorf("value %d was never produced", v)
	}
	return nil
}

// K goroutines force a fresh holder at once. Each must see a value some
// producer call returned, and the value left in the slot must be one too.
func TestRace_ValueFirstAccess(t *testing.T) {
	const K = 64

	rec := &recorder{delay: time.Millisecond}
	v := New(rec.produce)

	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < K; i++ {
		g.Go(func() error {
			<-start
			got, err := v.Get()
			if err != nil {
				return err
			}
			return rec.check(got)
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	calls := rec.calls.Load()
	require.GreaterOrEqual(t, calls, int64(1))
	require.LessOrEqual(t, calls, int64(K))

	final, err := v.Get()
	require.NoError(t, err)
	require.NoError(t, rec.check(final))

	// Settled: later readers agree and never call the producer.
	for i := 0; i < 10; i++ {
		got, err := v.Get()
		require.NoError(t, err)
		require.Equal(t, final, got)
	}
	require.Equal(t, calls, rec.calls.Load())
}

// No caller waits for another caller's producer: while one run is stuck, a
// second caller computes and publishes its own value, readers are served from
// the slot, and the stuck run overwrites it when it finally returns.
func TestRace_NoMutualExclusion(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls atomic.Int64

	v := New(func() (int, error) {
		n := calls.Add(1)
		if n == 1 {
			close(entered)
			<-release
			return 100, nil
		}
		return int(n), nil
	})

	slow := make(chan int, 1)
	go func() {
		got, _ := v.Get()
		slow <- got
	}()
	<-entered

	fast := make(chan int, 1)
	go func() {
		got, _ := v.Get()
		fast <- got
	}()
	select {
	case got := <-fast:
		require.Equal(t, 2, got)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller blocked behind an in-flight producer")
	}

	got, err := v.Get()
	require.NoError(t, err)
	require.Equal(t, 2, got, "occupied slot must be served without a producer call")

	close(release)
	require.Equal(t, 100, <-slow, "each caller receives its own computation")

	got, err = v.Get()
	require.NoError(t, err)
	require.Equal(t, 100, got, "last publish wins")
	require.EqualValues(t, 2, calls.Load())
}

// Concurrent Gets interleaved with purges and collections. Every result must
// come from some producer call; run with -race.
func TestRace_SoftUnderReclamation(t *testing.T) {
	r := retain.New(retain.Options{Capacity: 8, Shards: 1})
	t.Cleanup(func() { _ = r.Close() })

	rec := &recorder{}
	s := NewSoft(rec.produce, WithRetainer(r))

	workers := 4 * runtime.GOMAXPROCS(0)
	deadline := time.Now().Add(300 * time.Millisecond)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for time.Now().Before(deadline) {
				got, err := s.Get()
				if err != nil {
					return err
				}
				if err := rec.check(got); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for time.Now().Before(deadline) {
			r.Purge()
			runtime.GC()
		}
		return nil
	})
	require.NoError(t, g.Wait())
	require.GreaterOrEqual(t, rec.calls.Load(), int64(1))
}

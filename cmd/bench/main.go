// Command bench drives many lazy holders over a shared retainer and exposes
// optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/lazyval/lazy"
	pmet "github.com/IvanBrykalov/lazyval/metrics/prom"
	"github.com/IvanBrykalov/lazyval/policy/twoq"
	"github.com/IvanBrykalov/lazyval/retain"
)

func main() {
	// ---- Flags ----
	var (
		capacity = flag.Int("cap", 10_000, "retainer capacity (references)")
		shards   = flag.Int("shards", 0, "number of retainer shards (0=auto)")
		policy   = flag.String("policy", "lru", "release policy: lru | 2q")
		idle     = flag.Duration("idle", 0, "release references idle for this long (0=never)")
		heap     = flag.Uint64("heap_limit", 0, "release half the pool above this many live heap bytes (0=off)")
		check    = flag.Duration("check", time.Second, "watcher period for -idle/-heap_limit")

		holders   = flag.Int("holders", 50_000, "number of soft holders")
		strongPct = flag.Int("strong", 0, "percentage of holders that are strong [0..100]")
		valueSize = flag.Int("value_size", 1024, "bytes allocated per produced value")
		workers   = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration  = flag.Duration("duration", 10*time.Second, "benchmark duration")
		zipfS     = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV     = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
		debug       = flag.Bool("debug", false, "development logging")
	)
	flag.Parse()

	log := newLogger(*debug)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if *pprofAddr != "" {
		go serve(log, "pprof", *pprofAddr)
	}

	metrics := pmet.New(nil, "lazyval", "bench", nil)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go serve(log, "metrics", *metricsAddr)
	}

	// ---- Build retainer ----
	opt := retain.Options{
		Capacity:   *capacity,
		Shards:     *shards,
		IdleTTL:    *idle,
		HeapLimit:  *heap,
		CheckEvery: *check,
		Metrics:    metrics,
		Logger:     log,
	}
	switch *policy {
	case "lru":
		// nil => LRU by default
	case "2q":
		perShard := (*capacity + 63) / 64
		opt.Policy = twoq.New(perShard/4+1, perShard/2+1)
	default:
		log.Fatal("unknown policy", zap.String("policy", *policy))
	}
	pool := retain.New(opt)
	defer func() { _ = pool.Close() }()
	metrics.Observe(pool)

	// ---- Build holders ----
	var produced atomic.Uint64
	size := *valueSize
	produce := func() ([]byte, error) {
		produced.Add(1)
		return make([]byte, size), nil
	}
	hs := make([]lazy.Holder[[]byte], *holders)
	strongN := len(hs) * *strongPct / 100
	for i := range hs {
		if i < strongN {
			hs[i] = lazy.New(produce, lazy.WithMetrics(metrics))
		} else {
			hs[i] = lazy.NewSoft(produce, lazy.WithRetainer(pool), lazy.WithMetrics(metrics))
		}
	}

	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	keysMax := uint64(len(hs) - 1)
	seedBase := *seed
	zs, zv := *zipfS, *zipfV

	log.Info("starting",
		zap.String("policy", *policy),
		zap.Int("capacity", *capacity),
		zap.Int("holders", len(hs)),
		zap.Int("workers", workersN),
		zap.Duration("duration", *duration),
		zap.Int64("seed", seedBase),
	)

	// ---- Load generation ----
	var gets uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// rand.Rand is not goroutine-safe: one per worker.
			r := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			z := rand.NewZipf(r, zs, zv, keysMax)
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if _, err := hs[z.Uint64()].Get(); err != nil {
					log.Error("get failed", zap.Error(err))
					return
				}
				atomic.AddUint64(&gets, 1)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	n := atomic.LoadUint64(&gets)
	p := produced.Load()
	st := pool.Stats()
	hitRate := 0.0
	if n > 0 {
		hitRate = float64(n-min(n, p)) / float64(n) * 100
	}

	fmt.Printf("policy=%s cap=%d holders=%d workers=%d dur=%v seed=%d\n",
		*policy, *capacity, len(hs), workersN, elapsed, seedBase)
	fmt.Printf("gets=%d (%.0f gets/s)  produced=%d  hit-rate=%.2f%%\n",
		n, float64(n)/elapsed.Seconds(), p, hitRate)
	fmt.Printf("retained=%d admits=%d releases=%d\n", st.Entries, st.Admits, st.Releases)
}

func newLogger(debug bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}

func serve(log *zap.Logger, what, addr string) {
	log.Info("serving", zap.String("what", what), zap.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("server stopped", zap.String("what", what), zap.Error(err))
	}
}

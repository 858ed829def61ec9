package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/codewandler/actorkit/adapters/prometheus"
	"github.com/codewandler/actorkit/core/actor"
)

// === Config ===

var (
	logLevel    = slog.LevelInfo
	N           = getEnvInt("N", 1_000_000)
	producers   = getEnvInt("P", runtime.GOMAXPROCS(0))
	capacity    = getEnvInt("CAP", 1024)
	useAsync    = getEnvBool("ASYNC", false)
	promAddr    = getEnv("PROM_ADDR", "")
	holdMetrics = getEnvBool("HOLD", false)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	return v == "1" || strings.ToLower(v) == "true"
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// === Counter actor ===

type (
	counterMsg interface{ isCounterMsg() }

	increment struct{ by int }
	getValue  struct{ *actor.Reply[int] }
)

func (increment) isCounterMsg() {}
func (getValue) isCounterMsg()  {}

type counter struct{ value int }

func (c *counter) apply(msg counterMsg) {
	switch m := msg.(type) {
	case increment:
		c.value += m.by
	case getValue:
		m.Send(c.value)
	}
}

func (c *counter) HandleMessage(msg counterMsg) { c.apply(msg) }

// asyncCounter yields on every message to exercise the suspending variant.
type asyncCounter struct{ counter }

func (c *asyncCounter) HandleMessage(ctx context.Context, msg counterMsg) {
	runtime.Gosched()
	c.apply(msg)
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, log); err != nil {
		log.Error("loadtest failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	runID := gonanoid.Must(6)
	log = log.With(slog.String("run", runID))

	reg := prometheus.NewRegistry()
	metrics := promadapter.NewActorMetrics(reg)

	if promAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: promAddr, Handler: mux}
		go func() {
			log.Info("prometheus metrics server starting", slog.String("addr", promAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("prometheus server error", slog.Any("error", err))
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	opts := []actor.Option{
		actor.WithContext(ctx),
		actor.WithLogger(log),
		actor.WithMetrics(metrics),
		actor.WithID("counter-" + runID),
	}
	var h *actor.Handle[counterMsg]
	if useAsync {
		h = actor.NewAsync[counterMsg](&asyncCounter{}, capacity, opts...)
	} else {
		h = actor.New[counterMsg](&counter{}, capacity, opts...)
	}
	defer h.Release()

	fmt.Printf("N: %d | producers: %d | capacity: %d | async: %s\n", N, producers, capacity, strconv.FormatBool(useAsync))

	startAt := time.Now()

	if producers < 1 {
		producers = 1
	}
	perProducer := N / producers
	var wg sync.WaitGroup
	errs := make(chan error, producers)
	for p := 0; p < producers; p++ {
		c := h.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer c.Release()
			for i := 0; i < perProducer; i++ {
				if err := c.Send(ctx, increment{by: 1}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	if err, ok := <-errs; ok {
		return fmt.Errorf("produce: %w", err)
	}

	value, err := actor.Ask(ctx, h, func(r *actor.Reply[int]) counterMsg { return getValue{r} })
	if err != nil {
		return fmt.Errorf("read counter: %w", err)
	}
	took := time.Since(startAt)

	want := perProducer * producers
	if value != want {
		return fmt.Errorf("counter mismatch: want %d, got %d", want, value)
	}

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("throughput: %d msgs/s\n", int(float64(value)/took.Seconds()))

	if promAddr != "" && holdMetrics {
		log.Info("holding for metrics scrape, press Ctrl+C to stop")
		<-ctx.Done()
	}
	return nil
}

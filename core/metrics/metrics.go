// Package metrics holds the backend-neutral metric primitives shared by the
// runtime packages. Backends such as adapters/prometheus implement them; the
// core never imports a metrics library directly.
package metrics

import "time"

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}

// Observer receives a single measurement in seconds.
type Observer interface {
	Observe(seconds float64)
}

type observerTimer struct {
	o     Observer
	start time.Time
}

func (t *observerTimer) ObserveDuration() {
	t.o.Observe(time.Since(t.start).Seconds())
}

// NewTimer starts a Timer that reports to o.
func NewTimer(o Observer) Timer {
	return &observerTimer{o: o, start: time.Now()}
}

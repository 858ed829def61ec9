// Package prometheus implements actor.ActorMetrics on top of
// github.com/prometheus/client_golang.
package prometheus

import "strconv"

// Default histogram buckets for handler latency (in seconds).
var defaultBuckets = []float64{
	.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5,
}

// Opts configures metric naming.
type Opts struct {
	// Namespace prefixes every metric name. Defaults to "actorkit".
	Namespace string
	// Buckets overrides the handler duration buckets.
	Buckets []float64
}

func boolToStr(b bool) string { return strconv.FormatBool(b) }

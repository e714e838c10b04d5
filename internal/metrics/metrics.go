package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts forum interactions. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry
	votes    *prometheus.CounterVec
	comments *prometheus.CounterVec
	posts    prometheus.Counter
	failures *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "breadit",
			Name:      "votes_total",
			Help:      "Applied votes by target kind and outcome.",
		}, []string{"kind", "outcome"}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "breadit",
			Name:      "comments_total",
			Help:      "Created comments, split by top-level and reply.",
		}, []string{"depth"}),
		posts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "breadit",
			Name:      "posts_total",
			Help:      "Created posts.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "breadit",
			Name:      "operation_failures_total",
			Help:      "Failed operations by operation and error kind.",
		}, []string{"op", "kind"}),
	}
	reg.MustRegister(
		c.votes, c.comments, c.posts, c.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Vote(kind, outcome string) {
	if c == nil {
		return
	}
	c.votes.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) Comment(reply bool) {
	if c == nil {
		return
	}
	depth := "top"
	if reply {
		depth = "reply"
	}
	c.comments.WithLabelValues(depth).Inc()
}

func (c *Collector) Post() {
	if c == nil {
		return
	}
	c.posts.Inc()
}

func (c *Collector) Failure(op, kind string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(op, kind).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Package metrics exposes Prometheus counters for the import pipeline and
// the /metrics scrape endpoint.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ImportRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_import_runs_total",
		Help: "Completed import runs by outcome.",
	}, []string{"outcome"})

	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_import_rows_total",
		Help: "Rows seen by the importer, by disposition.",
	}, []string{"disposition"})

	EntitiesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_import_entities_created_total",
		Help: "New entities created during imports, by kind.",
	}, []string{"kind"})

	MustListRecomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_mustlist_recomputes_total",
		Help: "Must-list recompute passes.",
	})

	SampleOrdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_sample_orders_total",
		Help: "Sample orders placed.",
	})
)

type Controller struct {
	path string
}

func NewController(path string) *Controller {
	if path == "" {
		path = "/metrics"
	}
	return &Controller{path: path}
}

func (c *Controller) Key() string { return c.path }

func (c *Controller) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}

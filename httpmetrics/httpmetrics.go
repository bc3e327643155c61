// Package httpmetrics wraps an http.Handler with an opencensus request
// counter tagged by path and method.
package httpmetrics

import (
	"net/http"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

type Wrapper struct {
	requestCount     *stats.Int64Measure
	requestCountView *view.View

	inner http.Handler
}

func New(inner http.Handler) *Wrapper {
	r := &Wrapper{}

	r.requestCount = stats.Int64("requests", "", stats.UnitDimensionless)
	r.requestCountView = &view.View{
		Name:        "requests",
		Description: "Counter of requests that have been handled",

		TagKeys: []tag.Key{tag.MustNewKey("path"), tag.MustNewKey("method")},

		Measure:     r.requestCount,
		Aggregation: view.Count(),
	}

	r.inner = inner

	return r
}

func (h *Wrapper) RegisterMetrics() {
	view.Register(h.requestCountView)
}

func (h *Wrapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.inner.ServeHTTP(w, r)

	glog.Infof("Served path=%q method=%q remoteaddr=%q", r.URL.Path, r.Method, r.RemoteAddr)

	stats.RecordWithOptions(
		r.Context(),
		stats.WithTags(
			tag.Insert(tag.MustNewKey("path"), r.URL.Path),
			tag.Insert(tag.MustNewKey("method"), r.Method),
		),
		stats.WithMeasurements(h.requestCount.M(1)))
}

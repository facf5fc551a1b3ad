package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "navkit"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	reloadDuration *prom.HistogramVec
	reloads        *prom.CounterVec
	modelSize      *prom.GaugeVec
	resolutions    *prom.CounterVec
	cache          *prom.CounterVec
	verifications  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg, or on a
// fresh registry (with Go and process collectors) when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	pr := &PrometheusRecorder{
		reg: reg,
		reloadDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Duration of site model reloads",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Site model reloads by outcome",
		}, []string{"outcome"}),
		modelSize: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "model_entries",
			Help:      "Entries in the served model by section",
		}, []string{"section"}),
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sidebar_resolutions_total",
			Help:      "Sidebar resolutions by strategy",
		}, []string{"strategy"}),
		cache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_cache_total",
			Help:      "Expanded resolution cache lookups",
		}, []string{"result"}),
		verifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "encrypt_verifications_total",
			Help:      "Encrypted page password checks",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.reloadDuration, pr.reloads, pr.modelSize, pr.resolutions, pr.cache, pr.verifications)
	return pr
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveReload(outcome ReloadOutcome, d time.Duration) {
	if p == nil {
		return
	}
	p.reloadDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
	p.reloads.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetModelSize(navbar, sidebarRules, encryptRules int) {
	if p == nil {
		return
	}
	p.modelSize.WithLabelValues("navbar").Set(float64(navbar))
	p.modelSize.WithLabelValues("sidebar").Set(float64(sidebarRules))
	p.modelSize.WithLabelValues("encrypt").Set(float64(encryptRules))
}

func (p *PrometheusRecorder) IncResolution(strategy string) {
	if p == nil {
		return
	}
	p.resolutions.WithLabelValues(strategy).Inc()
}

func (p *PrometheusRecorder) IncCache(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cache.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncVerify(locked, ok bool) {
	if p == nil {
		return
	}
	res := "open"
	switch {
	case locked && ok:
		res = "accepted"
	case locked:
		res = "rejected"
	}
	p.verifications.WithLabelValues(res).Inc()
}

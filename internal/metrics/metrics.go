// Package metrics holds Prometheus instruments shared across regform.  All
// collectors are registered with the global registry, so mounting
// promhttp.Handler() in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_submissions_total",
			Help: "Submission outcomes by result (success, failure, dropped).",
		}, []string{"outcome"})

	SubmissionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "registration_submissions_in_flight",
			Help: "Submissions currently awaiting the users API.",
		})

	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_validation_failures_total",
			Help: "Submit attempts rejected locally, by failing field.",
		}, []string{"field"})

	CountryFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "country_list_fetch_total",
			Help: "Country list fetches by result (ok, error).",
		}, []string{"result"})

	CountriesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "country_list_size",
			Help: "Number of country names currently cached.",
		})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "form_sessions_active",
			Help: "Registration forms currently held in memory.",
		})

	SessionEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_sessions_evicted_total",
			Help: "Cumulative number of forms discarded by LRU pressure.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		SubmissionsInFlight,
		ValidationFailuresTotal,
		CountryFetchTotal,
		CountriesLoaded,
		ActiveSessions,
		SessionEvictTotal,
	)
}

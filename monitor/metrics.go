package monitor

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_submissions_total",
		Help: "Citizen applications submitted, by application type.",
	}, []string{"type"})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_status_transitions_total",
		Help: "Staff status transitions applied, by from and to status.",
	}, []string{"from", "to"})

	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_emails_sent_total",
		Help: "Notification emails sent, by kind.",
	}, []string{"kind"})

	EmailFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_email_failures_total",
		Help: "Notification emails that could not be sent, by kind.",
	}, []string{"kind"})
)

// RegisterMetricsEndpoint exposes the Prometheus registry on /metrics.
func RegisterMetricsEndpoint(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Counters are created eagerly so service code can increment them before (or
// without) registration; InitCustomMetrics only attaches them to a registry.
var (
	LoginSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kauth_logins_success_total",
		Help: "Total number of successful social logins.",
	})
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kauth_logins_failure_total",
		Help: "Total number of failed social logins.",
	})
	UsersRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kauth_users_registered_total",
		Help: "Total number of users created on first login.",
	})
	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kauth_tokens_issued_total",
		Help: "Total number of access and refresh tokens issued.",
	})
	RotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kauth_refresh_rotations_total",
		Help: "Total number of successful refresh-token rotations.",
	})
	ReuseDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kauth_refresh_reuse_detected_total",
		Help: "Total number of rotated refresh tokens presented again.",
	})
	LogoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kauth_logouts_total",
		Help: "Total number of logout calls.",
	})
)

// InitCustomMetrics registers the custom Prometheus metrics. It should be
// called once at application startup.
func InitCustomMetrics(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics.")
		return
	}

	collectors := []prometheus.Collector{
		LoginSuccessTotal,
		LoginFailureTotal,
		UsersRegisteredTotal,
		TokensIssuedTotal,
		RotationsTotal,
		ReuseDetectedTotal,
		LogoutsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register Prometheus metric")
		}
	}
	log.Info().Msg("Custom Prometheus metrics registered.")
}

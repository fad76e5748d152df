package relay

import (
	"relaybot/internal/domain"
	"relaybot/internal/metrics"
)

// MetricsObserver turns stage records into relay counters and a duration
// histogram on the shared collector.
type MetricsObserver struct {
	ignored            *metrics.Counter
	delivered          *metrics.Counter
	completionFailures *metrics.Counter
	deliveryFailures   *metrics.Counter
	stageDuration      *metrics.Histogram
}

func NewMetricsObserver(c *metrics.Collector) *MetricsObserver {
	return &MetricsObserver{
		ignored: c.Counter("relaybot_relay_ignored_total",
			"Webhook events rejected by normalization"),
		delivered: c.Counter("relaybot_relay_delivered_total",
			"Replies delivered to the gateway"),
		completionFailures: c.Counter("relaybot_completion_failures_total",
			"Completion calls that fell back to an apology reply"),
		deliveryFailures: c.Counter("relaybot_delivery_failures_total",
			"Outbound gateway sends that failed"),
		stageDuration: c.Histogram("relaybot_stage_duration_seconds",
			"Relay stage duration in seconds",
			[]float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}),
	}
}

func (o *MetricsObserver) Observe(rec domain.StageRecord) {
	o.stageDuration.Observe(rec.Duration.Seconds())

	switch rec.Stage {
	case domain.StageNormalize:
		if rec.Outcome == "ignored" {
			o.ignored.Inc()
		}
	case domain.StageComplete:
		if rec.Err != nil {
			o.completionFailures.Inc()
		}
	case domain.StageDeliver:
		if rec.Err != nil {
			o.deliveryFailures.Inc()
		} else {
			o.delivered.Inc()
		}
	}
}

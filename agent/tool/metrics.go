package tool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts tool calls by tool and outcome.
type Metrics struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the tool collectors on reg. A nil reg keeps them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_tool_calls_total",
		Help: "Total number of advising tool calls",
	}, []string{"tool", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "advisor_tool_duration_seconds",
		Help:    "Advising tool call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})

	if reg != nil {
		reg.MustRegister(calls)
		reg.MustRegister(duration)
	}

	return &Metrics{
		Calls:    calls,
		Duration: duration,
	}
}

const unknownToolLabel = "unknown"

// metricLabel keeps the tool label bounded: names the model invents share one series.
func metricLabel(tool string) string {
	switch tool {
	case ToolFAQAnswer, ToolCoursesEnrollable, ToolCoursesDetails, ToolCoursesOfferings, ToolScheduleRender:
		return tool
	default:
		return unknownToolLabel
	}
}

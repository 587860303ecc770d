package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutbot",
		Subsystem: "commands",
		Name:      "handled_total",
		Help:      "Number of chat commands handled, grouped by front end, command and outcome.",
	}, []string{"frontend", "command", "outcome"})

	storeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workoutbot",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Latency of record store operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	storeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutbot",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Number of failed store operations, not counting missing records.",
	}, []string{"backend", "operation"})

	remindersCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutbot",
		Subsystem: "scheduler",
		Name:      "reminders_sent_total",
		Help:      "Number of workout reminders sent, grouped by outcome.",
	}, []string{"outcome"})

	lastBackupGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutbot",
		Subsystem: "backup",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful backup upload.",
	})
)

func init() {
	prometheus.MustRegister(commandCounter, storeDuration, storeErrorCounter, remindersCounter, lastBackupGauge)
}

// RecordCommand counts a handled command. err decides the outcome label.
func RecordCommand(frontend, command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	commandCounter.WithLabelValues(frontend, command, outcome).Inc()
}

// RecordReminder counts a reminder delivery attempt
func RecordReminder(err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	remindersCounter.WithLabelValues(outcome).Inc()
}

// RecordBackup updates the backup watermark gauge.
func RecordBackup(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastBackupGauge.Set(float64(ts.Unix()))
}

package metrics

import "time"

// JobStarted should be called when a job begins processing
func JobStarted(jobType string) {
	JobsInFlight.WithLabelValues(jobType).Inc()
}

// JobCompleted records a successful job completion
func JobCompleted(jobType string, duration time.Duration) {
	JobsInFlight.WithLabelValues(jobType).Dec()
	JobsTotal.WithLabelValues(jobType, "completed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobFailed records a job failure. Permanent failures are counted
// separately from retryable ones.
func JobFailed(jobType string, duration time.Duration, permanent bool) {
	JobsInFlight.WithLabelValues(jobType).Dec()
	status := "retry"
	if permanent {
		status = "failed"
	}
	JobsTotal.WithLabelValues(jobType, status).Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobEnqueued records a job being added to the queue
func JobEnqueued(jobType string) {
	JobsEnqueued.WithLabelValues(jobType).Inc()
}

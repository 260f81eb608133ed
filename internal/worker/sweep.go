package worker

import (
	"context"
	"time"
)

// runComplianceSweep enqueues a recompute of all equipment every
// ComplianceSweepInterval until the worker stops. Expiry statuses depend on
// today's date, so stored snapshots go stale without writes.
func (w *Worker) runComplianceSweep(ctx context.Context) {
	defer w.wg.Done()

	interval := w.config.ComplianceSweepInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("Compliance sweep started", "interval", interval)
	for {
		select {
		case <-w.stopCh:
			w.logger.Info("Compliance sweep stopped")
			return
		case <-ctx.Done():
			w.logger.Info("Compliance sweep stopped")
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

// sweepOnce queues a single recompute-all job.
func (w *Worker) sweepOnce(ctx context.Context) {
	job, err := EnqueueRecomputeAll(ctx, w.queries)
	if err != nil {
		w.logger.Error("Failed to enqueue compliance sweep", "error", err)
		return
	}
	w.logger.Debug("Enqueued compliance sweep", "job_id", job.ID)
}

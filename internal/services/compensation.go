// internal/services/compensation.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/metrics"
	"github.com/javajoker/machinery-catalog/internal/models"
)

const (
	defaultCompensationAttempts = 3
	defaultCompensationBackoff  = 200 * time.Millisecond
)

// compensator runs undo actions after a failed asset write. Every action is
// idempotent: an object or record that is already gone counts as undone.
type compensator struct {
	storage  ObjectStorage
	issues   IssueLog
	attempts int
	backoff  time.Duration
}

func newCompensator(storage ObjectStorage, issues IssueLog, attempts int) *compensator {
	if attempts < 1 {
		attempts = defaultCompensationAttempts
	}
	return &compensator{
		storage:  storage,
		issues:   issues,
		attempts: attempts,
		backoff:  defaultCompensationBackoff,
	}
}

// retry runs op until it succeeds or attempts are exhausted. The caller's
// cancellation is not inherited: an undo must still run after the request ends.
func (c *compensator) retry(ctx context.Context, action string, op func(context.Context) error) error {
	ctx = context.WithoutCancel(ctx)

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = op(ctx); err == nil || errors.Is(err, errs.ErrNotFound) {
			metrics.CompensationsTotal.WithLabelValues(action, "ok").Inc()
			return nil
		}
		if attempt < c.attempts {
			time.Sleep(c.backoff * time.Duration(attempt))
		}
	}

	metrics.CompensationsTotal.WithLabelValues(action, "failed").Inc()
	return err
}

func (c *compensator) deleteObjects(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	return c.retry(ctx, "delete_object", func(ctx context.Context) error {
		return c.storage.Delete(ctx, bucket, paths...)
	})
}

// report persists an irreconcilable state for manual cleanup. A failure to persist
// is logged; the original error is what the caller sees either way.
func (c *compensator) report(ctx context.Context, issue *models.ReconciliationIssue) {
	metrics.ReconciliationIssuesTotal.Inc()

	entry := logrus.WithFields(logrus.Fields{
		"entity_type": issue.EntityType,
		"entity_id":   issue.EntityID,
		"operation":   issue.Operation,
		"bucket":      issue.Bucket,
		"paths":       []string(issue.Paths),
		"record_ids":  []string(issue.RecordIDs),
	})
	entry.WithField("cause", issue.Error).Error("Compensation failed, manual cleanup required")

	if c.issues == nil {
		return
	}
	if err := c.issues.Record(context.WithoutCancel(ctx), issue); err != nil {
		entry.WithError(err).Error("Failed to record reconciliation issue")
	}
}

// Package jobs defines the advisory task queue contract. The ledger core
// publishes events here and never waits on their outcome; consumers run the
// AI-assisted modules (categorization, anomaly scan, insight reports).
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	// KindTransactionCreated triggers the per-transaction advisors:
	// anomaly scan and category suggestion.
	KindTransactionCreated Kind = "transaction_created"
	// KindMonthlyInsight triggers narrative report generation for a month.
	KindMonthlyInsight Kind = "monthly_insight"
)

// AdvisoryJob carries the identifiers an advisor needs; the advisor re-reads
// current state from the store, so a job can safely outlive the request that
// published it.
type AdvisoryJob struct {
	JobID         string
	Kind          Kind
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Year          int
	Month         int
	CreatedAt     time.Time
}

// JobHandler processes a single advisory job
type JobHandler func(ctx context.Context, job *AdvisoryJob) error

// Publisher enqueues advisory jobs
type Publisher interface {
	Publish(ctx context.Context, job *AdvisoryJob) error
	Close() error
}

// Consumer drains advisory jobs into a handler
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

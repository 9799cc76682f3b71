package storage

import (
	"context"

	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/interfaces/store"
)

// UsageRecorder forwards tracker records into the usage repository so audits
// survive process restarts.
type UsageRecorder struct {
	repo   store.UsageRecordRepository
	logger logger.Logger
}

func NewUsageRecorder(repo store.UsageRecordRepository, log logger.Logger) *UsageRecorder {
	if log == nil {
		log = &logger.Nop{}
	}
	return &UsageRecorder{repo: repo, logger: log}
}

// Record implements resolver.UsageSink. Persistence failures are logged, not
// surfaced; usage tracking must never break a resolution.
func (r *UsageRecorder) Record(contextID, credentialID string) {
	if r.repo == nil {
		return
	}
	if err := r.repo.Touch(context.Background(), contextID, credentialID); err != nil {
		r.logger.Warn("usage record persist failed",
			logger.Field{Key: "context", Value: contextID},
			logger.Field{Key: "credential", Value: credentialID},
			logger.Field{Key: "error", Value: err})
	}
}

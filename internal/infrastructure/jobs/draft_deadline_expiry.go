package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"rumfor-market.backend/internal/domain/repositories"
	"rumfor-market.backend/pkg/logger"
)

// DraftDeadlineExpiryJob withdraws draft applications for markets whose
// application deadline has passed. The deadline is also enforced at save
// and submit time; the job cleans up drafts parked past it.
type DraftDeadlineExpiryJob struct {
	repo     repositories.ApplicationRepository
	interval time.Duration
	stop     chan struct{}
}

func NewDraftDeadlineExpiryJob(repo repositories.ApplicationRepository, interval time.Duration) *DraftDeadlineExpiryJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &DraftDeadlineExpiryJob{
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *DraftDeadlineExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting draft deadline expiry job")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "draft deadline expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "draft deadline expiry job stopped")
			return
		case <-ticker.C:
			j.processExpiredDrafts(ctx)
		}
	}
}

func (j *DraftDeadlineExpiryJob) Stop() {
	close(j.stop)
}

func (j *DraftDeadlineExpiryJob) processExpiredDrafts(ctx context.Context) {
	expired, err := j.repo.GetDraftsPastDeadline(ctx, time.Now(), 100)
	if err != nil {
		logger.Error(ctx, "fetching expired drafts failed", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, app := range expired {
		ids = append(ids, app.ID)
	}

	if err := j.repo.WithdrawApplications(ctx, ids, "Withdrawn: application deadline passed"); err != nil {
		logger.Error(ctx, "withdrawing expired drafts failed", zap.Error(err))
		return
	}
	logger.Info(ctx, "withdrew expired draft applications", zap.Int("count", len(ids)))
}

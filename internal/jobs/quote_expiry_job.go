package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// QuoteExpiryJobName is the scheduler name of the quote expiry job
const QuoteExpiryJobName = "quote_expiry"

const quoteExpiryLockKey = "jobs:quote_expiry"

// QuoteExpirer moves overdue SENT quotes to EXPIRED
type QuoteExpirer interface {
	ExpireSent(ctx context.Context, now time.Time) (int64, error)
}

// Locker serializes a job across replicas. It reports false when another
// replica holds the lock.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error)
}

// QuoteExpiryJob expires SENT quotes whose validity date has passed
type QuoteExpiryJob struct {
	quotes  QuoteExpirer
	locker  Locker
	logger  *zap.Logger
	lockTTL time.Duration
	now     func() time.Time
}

func NewQuoteExpiryJob(quotes QuoteExpirer, locker Locker, logger *zap.Logger, lockTTL time.Duration) *QuoteExpiryJob {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &QuoteExpiryJob{
		quotes:  quotes,
		locker:  locker,
		logger:  logger,
		lockTTL: lockTTL,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce performs one expiry pass and returns the number of quotes expired.
// A pass skipped because another replica holds the lock returns 0.
func (j *QuoteExpiryJob) RunOnce(ctx context.Context) (int64, error) {
	var expired int64
	run := func(ctx context.Context) error {
		n, err := j.quotes.ExpireSent(ctx, j.now())
		expired = n
		return err
	}

	if j.locker == nil {
		return expired, run(ctx)
	}

	acquired, err := j.locker.WithLock(ctx, quoteExpiryLockKey, j.lockTTL, run)
	if err != nil {
		return 0, err
	}
	if !acquired {
		j.logger.Debug("quote expiry skipped, lock held by another instance")
	}
	return expired, nil
}

// Run is the scheduler entry point
func (j *QuoteExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.lockTTL)
	defer cancel()

	expired, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("quote expiry failed", zap.Error(err))
		return
	}
	if expired > 0 {
		j.logger.Info("expired quotes", zap.Int64("count", expired))
	}
}

// RegisterQuoteExpiryJob adds the quote expiry job to the scheduler
func RegisterQuoteExpiryJob(scheduler *Scheduler, quotes QuoteExpirer, locker Locker, logger *zap.Logger, cronExpr string, lockTTL time.Duration) error {
	job := NewQuoteExpiryJob(quotes, locker, logger, lockTTL)
	return scheduler.AddJob(QuoteExpiryJobName, cronExpr, job.Run)
}

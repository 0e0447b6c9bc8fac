package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/logger"
)

const defaultSchedule = "@hourly"

// Cleaner periodically purges OTP challenges that can never verify again:
// consumed ones and those past expiry. The verification path rejects stale
// rows on its own; the cleaner only keeps the table from growing without
// bound.
type Cleaner struct {
	db       *gorm.DB
	cron     *cron.Cron
	schedule string
	now      func() time.Time
	log      *zap.Logger
	entryID  cron.EntryID
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithSchedule overrides the cron schedule expression.
func WithSchedule(schedule string) Option {
	return func(c *Cleaner) {
		if schedule != "" {
			c.schedule = schedule
		}
	}
}

// WithCron supplies a custom cron runner.
func WithCron(runner *cron.Cron) Option {
	return func(c *Cleaner) {
		if runner != nil {
			c.cron = runner
		}
	}
}

// WithNow overrides the time source. Used by tests.
func WithNow(now func() time.Time) Option {
	return func(c *Cleaner) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCleaner builds a Cleaner.
func NewCleaner(db *gorm.DB, opts ...Option) (*Cleaner, error) {
	if db == nil {
		return nil, errors.New("cleaner requires a database handle")
	}

	c := &Cleaner{
		db:       db,
		cron:     cron.New(),
		schedule: defaultSchedule,
		now:      time.Now,
		log:      logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start registers the purge job and launches the scheduler.
func (c *Cleaner) Start() error {
	id, err := c.cron.AddFunc(c.schedule, func() {
		if _, err := c.RunOnce(context.Background()); err != nil {
			c.log.Error("otp purge failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule otp purge: %w", err)
	}

	c.entryID = id
	c.cron.Start()
	c.log.Info("maintenance cleaner started", zap.String("schedule", c.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (c *Cleaner) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// RunOnce purges used and expired challenges, returning the number of rows
// removed. Partial failures are aggregated rather than aborting the sweep.
func (c *Cleaner) RunOnce(ctx context.Context) (int64, error) {
	var (
		removed int64
		errs    error
	)

	res := c.db.WithContext(ctx).
		Where("used = ?", true).
		Delete(&models.OtpChallenge{})
	if res.Error != nil {
		errs = multierr.Append(errs, fmt.Errorf("purge used challenges: %w", res.Error))
	} else {
		removed += res.RowsAffected
	}

	res = c.db.WithContext(ctx).
		Where("expires_at < ?", c.now()).
		Delete(&models.OtpChallenge{})
	if res.Error != nil {
		errs = multierr.Append(errs, fmt.Errorf("purge expired challenges: %w", res.Error))
	} else {
		removed += res.RowsAffected
	}

	if removed > 0 {
		c.log.Info("purged otp challenges", zap.Int64("removed", removed))
	}
	return removed, errs
}

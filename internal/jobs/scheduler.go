package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RefreshTokenPurger removes refresh-token rows whose expiry has passed.
type RefreshTokenPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// ResetTokenPurger clears reset fields whose window has closed. Expiry is
// already enforced lazily on use; the sweep only keeps the table tidy.
type ResetTokenPurger interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	tokens RefreshTokenPurger
	users  ResetTokenPurger
	log    zerolog.Logger
}

func NewScheduler(tokens RefreshTokenPurger, users ResetTokenPurger, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		tokens: tokens,
		users:  users,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.purgeExpired); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for any running purge to finish, up to a short grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) purgeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if s.tokens != nil {
		count, err := s.tokens.DeleteExpired(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("refresh token purge failed")
		} else if count > 0 {
			s.log.Info().Int64("count", count).Msg("expired refresh tokens purged")
		}
	}

	if s.users != nil {
		count, err := s.users.ClearExpiredResetTokens(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("reset token purge failed")
		} else if count > 0 {
			s.log.Info().Int64("count", count).Msg("expired reset tokens cleared")
		}
	}
}

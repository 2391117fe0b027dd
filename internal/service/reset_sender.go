package service

import (
	"context"

	"github.com/rs/zerolog"
)

// LogResetSender stands in for the mail delivery pipeline: it records that a
// reset was issued without ever logging the token itself.
type LogResetSender struct {
	log zerolog.Logger
}

func NewLogResetSender(log zerolog.Logger) LogResetSender {
	return LogResetSender{log: log}
}

func (s LogResetSender) SendPasswordReset(ctx context.Context, email string, token string) error {
	s.log.Info().Str("email", email).Msg("password reset token issued")
	return nil
}

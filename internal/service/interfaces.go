package service

import (
	"context"
	"time"

	"gardenbook/api/internal/models"
	"gardenbook/api/internal/repository"
)

// UserStore is the narrow persistence surface the auth logic reads and
// writes user records through.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, params repository.UpdateProfileParams) (models.User, error)
	SetResetToken(ctx context.Context, id string, tokenHash []byte, expiresAt time.Time) error
	ResetPassword(ctx context.Context, tokenHash []byte, passwordHash []byte) (string, error)
	List(ctx context.Context, limit int, offset int) ([]models.User, error)
}

// RefreshTokenStore holds the bounded per-user refresh-token list.
type RefreshTokenStore interface {
	InsertAndTrim(ctx context.Context, token models.RefreshToken, keep int) error
	Exists(ctx context.Context, userID string, tokenHash []byte) (bool, error)
	DeleteByHash(ctx context.Context, userID string, tokenHash []byte) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type PlantStore interface {
	Create(ctx context.Context, plant models.Plant) error
	GetByID(ctx context.Context, id string) (models.Plant, error)
	ListByUser(ctx context.Context, userID string) ([]models.Plant, error)
	Update(ctx context.Context, id string, params repository.UpdatePlantParams) (models.Plant, error)
	SetPhotoURL(ctx context.Context, id string, photoURL string) error
	Delete(ctx context.Context, id string) error
}

// ResetSender delivers password-reset tokens out of band. The production
// mailer lives outside this service.
type ResetSender interface {
	SendPasswordReset(ctx context.Context, email string, token string) error
}

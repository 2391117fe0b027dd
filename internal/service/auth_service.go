package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gardenbook/api/internal/cache"
	"gardenbook/api/internal/config"
	"gardenbook/api/internal/ids"
	"gardenbook/api/internal/models"
	"gardenbook/api/internal/repository"
	"gardenbook/api/internal/security"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so the response never reveals which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthService struct {
	users     UserStore
	tokens    RefreshTokenStore
	userCache *cache.UserCache
	sender    ResetSender
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewAuthService(
	users UserStore,
	tokens RefreshTokenStore,
	userCache *cache.UserCache,
	sender ResetSender,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		userCache: userCache,
		sender:    sender,
		cfg:       cfg,
		log:       log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	if input.Username == "" || input.Email == "" || len(input.Password) < minPasswordLength {
		return models.User{}, ErrInvalidInput
	}
	if !emailPattern.MatchString(input.Email) {
		return models.User{}, ErrInvalidInput
	}

	passwordHash, err := security.HashPassword(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
		Preferences:  models.DefaultPreferences(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret, user.ID, string(user.Role), s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return AuthResult{}, err
	}

	refreshToken, err := security.GenerateRefreshToken(
		s.cfg.Security.JWTRefreshSecret, user.ID, s.cfg.Security.JWTRefreshTTL)
	if err != nil {
		return AuthResult{}, err
	}

	entry := models.RefreshToken{
		ID:        ids.New(),
		UserID:    user.ID,
		TokenHash: security.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.cfg.Security.JWTRefreshTTL),
	}
	if err := s.tokens.InsertAndTrim(ctx, entry, s.cfg.Security.MaxRefreshTokens); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Refresh mints a new access token for a valid, still-stored refresh token.
// The refresh token itself is left unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	// Stored-list membership honors logout-based revocation: a signed,
	// unexpired token that was removed server-side no longer refreshes.
	stored, err := s.tokens.Exists(ctx, user.ID, security.HashToken(refreshToken))
	if err != nil {
		return "", err
	}
	if !stored {
		return "", ErrInvalidToken
	}

	return security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret, user.ID, string(user.Role), s.cfg.Security.JWTAccessTTL)
}

// Logout is best-effort: an unverifiable token still logs the caller out
// (cookies are cleared by the handler); only a stored entry is removed.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		s.log.Debug().Msg("logout with unverifiable refresh token")
		return
	}

	err = s.tokens.DeleteByHash(ctx, claims.UserID, security.HashToken(refreshToken))
	if err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("logout token removal failed")
	}
}

// RequestPasswordReset issues a single-use reset token. Unknown emails are a
// silent no-op; the caller always sees the same neutral outcome.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Info().Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, tokenHash, err := security.GenerateResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.cfg.Security.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return err
	}

	if s.sender != nil {
		if err := s.sender.SendPasswordReset(ctx, user.Email, token); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset token delivery failed")
		}
	}

	return nil
}

// ResetPassword consumes a reset token. One store-level check covers the
// invalid, expired and already-used cases; success clears the token and
// revokes every stored refresh token for the user.
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if token == "" || len(newPassword) < minPasswordLength {
		return ErrInvalidInput
	}

	passwordHash, err := security.HashPassword(newPassword, s.cfg.Security.BcryptCost)
	if err != nil {
		return err
	}

	userID, err := s.users.ResetPassword(ctx, security.HashToken(token), passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenInvalid) {
			return ErrInvalidToken
		}
		return err
	}

	if err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("refresh token purge after reset failed")
	}
	s.userCache.Invalidate(ctx, userID)

	return nil
}

type UpdateProfileInput struct {
	Username    *string
	Email       *string
	Password    *string
	Preferences models.Preferences
}

// UpdateProfile merges the supplied fields into the user record. A new
// password is re-hashed and revokes the user's stored refresh tokens.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (models.User, error) {
	params := repository.UpdateProfileParams{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return models.User{}, ErrInvalidInput
		}
		params.Username = &username
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if !emailPattern.MatchString(email) {
			return models.User{}, ErrInvalidInput
		}
		params.Email = &email
	}

	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return models.User{}, ErrInvalidInput
		}
		hash, err := security.HashPassword(*input.Password, s.cfg.Security.BcryptCost)
		if err != nil {
			return models.User{}, err
		}
		params.PasswordHash = hash
	}

	if input.Preferences != nil {
		current, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return models.User{}, ErrUserNotFound
			}
			return models.User{}, err
		}

		merged := models.Preferences{}
		for k, v := range current.Preferences {
			merged[k] = v
		}
		for k, v := range input.Preferences {
			merged[k] = v
		}
		params.Preferences = merged
	}

	user, err := s.users.UpdateProfile(ctx, userID, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return models.User{}, ErrEmailTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if input.Password != nil {
		if err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("refresh token purge after password change failed")
		}
	}
	s.userCache.Invalidate(ctx, userID)

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

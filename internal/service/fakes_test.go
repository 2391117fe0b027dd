package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"gardenbook/api/internal/models"
	"gardenbook/api/internal/repository"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, id string, params repository.UpdateProfileParams) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}

	if params.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *params.Email {
				return models.User{}, repository.ErrEmailTaken
			}
		}
		user.Email = *params.Email
	}
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.PasswordHash != nil {
		user.PasswordHash = params.PasswordHash
	}
	if params.Preferences != nil {
		user.Preferences = params.Preferences
	}
	user.UpdatedAt = time.Now()

	s.users[id] = user
	return user, nil
}

func (s *fakeUserStore) SetResetToken(ctx context.Context, id string, tokenHash []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.ResetTokenHash = tokenHash
	user.ResetExpiresAt = &expiresAt
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) ResetPassword(ctx context.Context, tokenHash []byte, passwordHash []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, user := range s.users {
		if user.ResetTokenHash != nil &&
			bytes.Equal(user.ResetTokenHash, tokenHash) &&
			user.ResetExpiresAt != nil &&
			user.ResetExpiresAt.After(time.Now()) {
			user.PasswordHash = passwordHash
			user.ResetTokenHash = nil
			user.ResetExpiresAt = nil
			user.UpdatedAt = time.Now()
			s.users[id] = user
			return id, nil
		}
	}
	return "", repository.ErrResetTokenInvalid
}

func (s *fakeUserStore) List(ctx context.Context, limit int, offset int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	if offset >= len(users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end], nil
}

func (s *fakeUserStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

type fakeTokenStore struct {
	mu      sync.Mutex
	seq     int
	entries []models.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{}
}

func (s *fakeTokenStore) InsertAndTrim(ctx context.Context, token models.RefreshToken, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	token.CreatedAt = time.Unix(int64(s.seq), 0)
	s.entries = append(s.entries, token)

	var mine []int
	for i, entry := range s.entries {
		if entry.UserID == token.UserID {
			mine = append(mine, i)
		}
	}
	if len(mine) <= keep {
		return nil
	}

	// Oldest first; drop everything beyond the newest `keep`.
	evict := len(mine) - keep
	drop := make(map[int]struct{}, evict)
	for _, i := range mine[:evict] {
		drop[i] = struct{}{}
	}

	kept := s.entries[:0]
	for i, entry := range s.entries {
		if _, gone := drop[i]; !gone {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	return nil
}

func (s *fakeTokenStore) Exists(ctx context.Context, userID string, tokenHash []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.UserID == userID && bytes.Equal(entry.TokenHash, tokenHash) && entry.ExpiresAt.After(time.Now()) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeTokenStore) DeleteByHash(ctx context.Context, userID string, tokenHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, entry := range s.entries {
		if entry.UserID == userID && bytes.Equal(entry.TokenHash, tokenHash) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrRefreshTokenNotFound
}

func (s *fakeTokenStore) DeleteAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.UserID != userID {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	return nil
}

func (s *fakeTokenStore) countForUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, entry := range s.entries {
		if entry.UserID == userID {
			count++
		}
	}
	return count
}

type captureSender struct {
	mu     sync.Mutex
	emails []string
	tokens []string
}

func (s *captureSender) SendPasswordReset(ctx context.Context, email string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, email)
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *captureSender) lastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tokens) == 0 {
		return ""
	}
	return s.tokens[len(s.tokens)-1]
}

func (s *captureSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.emails)
}

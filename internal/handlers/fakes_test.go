package handlers

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"gardenbook/api/internal/models"
	"gardenbook/api/internal/repository"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (s *memUserStore) Create(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) UpdateProfile(ctx context.Context, id string, params repository.UpdateProfileParams) (models.User, error) {
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

func (s *memUserStore) SetResetToken(ctx context.Context, id string, tokenHash []byte, expiresAt time.Time) error {
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

func (s *memUserStore) ResetPassword(ctx context.Context, tokenHash []byte, passwordHash []byte) (string, error) {
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
			s.users[id] = user
			return id, nil
		}
	}
	return "", repository.ErrResetTokenInvalid
}

func (s *memUserStore) List(ctx context.Context, limit int, offset int) ([]models.User, error) {
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

type memTokenStore struct {
	mu      sync.Mutex
	entries []models.RefreshToken
}

func (s *memTokenStore) InsertAndTrim(ctx context.Context, token models.RefreshToken, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token.CreatedAt = time.Now()
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

	drop := make(map[int]struct{})
	for _, i := range mine[:len(mine)-keep] {
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

func (s *memTokenStore) Exists(ctx context.Context, userID string, tokenHash []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.UserID == userID && bytes.Equal(entry.TokenHash, tokenHash) && entry.ExpiresAt.After(time.Now()) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memTokenStore) DeleteByHash(ctx context.Context, userID string, tokenHash []byte) error {
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

func (s *memTokenStore) DeleteAllForUser(ctx context.Context, userID string) error {
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

type memPlantStore struct {
	mu     sync.Mutex
	plants map[string]models.Plant
}

func newMemPlantStore() *memPlantStore {
	return &memPlantStore{plants: make(map[string]models.Plant)}
}

func (s *memPlantStore) Create(ctx context.Context, plant models.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	plant.CreatedAt = now
	plant.UpdatedAt = now
	s.plants[plant.ID] = plant
	return nil
}

func (s *memPlantStore) GetByID(ctx context.Context, id string) (models.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plant, ok := s.plants[id]
	if !ok {
		return models.Plant{}, repository.ErrPlantNotFound
	}
	return plant, nil
}

func (s *memPlantStore) ListByUser(ctx context.Context, userID string) ([]models.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var plants []models.Plant
	for _, plant := range s.plants {
		if plant.UserID == userID {
			plants = append(plants, plant)
		}
	}
	sort.Slice(plants, func(i, j int) bool { return plants[i].ID < plants[j].ID })
	return plants, nil
}

func (s *memPlantStore) Update(ctx context.Context, id string, params repository.UpdatePlantParams) (models.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plant, ok := s.plants[id]
	if !ok {
		return models.Plant{}, repository.ErrPlantNotFound
	}

	if params.Name != nil {
		plant.Name = *params.Name
	}
	if params.Species != nil {
		plant.Species = *params.Species
	}
	if params.Description != nil {
		plant.Description = *params.Description
	}
	if params.LastWateredAt != nil {
		plant.LastWateredAt = params.LastWateredAt
	}
	plant.UpdatedAt = time.Now()

	s.plants[id] = plant
	return plant, nil
}

func (s *memPlantStore) SetPhotoURL(ctx context.Context, id string, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plant, ok := s.plants[id]
	if !ok {
		return repository.ErrPlantNotFound
	}
	plant.PhotoURL = &photoURL
	s.plants[id] = plant
	return nil
}

func (s *memPlantStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plants[id]; !ok {
		return repository.ErrPlantNotFound
	}
	delete(s.plants, id)
	return nil
}

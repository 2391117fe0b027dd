package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gardenbook/api/internal/models"
)

// UserCache keeps short-lived copies of user records on the hot
// authentication path. Password hashes and reset fields are never cached.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

type cachedUser struct {
	ID          string             `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Role        models.UserRole    `json:"role"`
	Preferences models.Preferences `json:"preferences"`
	IsVerified  bool               `json:"isVerified"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (c *UserCache) Get(ctx context.Context, id string) (models.User, bool) {
	if c == nil || c.client == nil {
		return models.User{}, false
	}

	data, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		return models.User{}, false
	}

	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.User{}, false
	}

	return models.User{
		ID:          entry.ID,
		Username:    entry.Username,
		Email:       entry.Email,
		Role:        entry.Role,
		Preferences: entry.Preferences,
		IsVerified:  entry.IsVerified,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}, true
}

func (c *UserCache) Set(ctx context.Context, user models.User) {
	if c == nil || c.client == nil {
		return
	}

	entry := cachedUser{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		Preferences: user.Preferences,
		IsVerified:  user.IsVerified,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	c.client.Set(ctx, userKey(user.ID), data, c.ttl)
}

func (c *UserCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, userKey(id))
}

func userKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

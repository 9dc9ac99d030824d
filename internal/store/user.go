package store

import (
	"context"
	"time"

	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/identity"
	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/pkg/metrics"
)

// User profile hash field names.
const (
	fieldUserID    = "id"
	fieldUserEmail = "email"
	fieldUserName  = "name"
	fieldUserImage = "image"
)

// EnsureUser registers a first-time user's profile hash. Subsequent calls are
// no-ops; the profile is written once on first visit.
func (s *Store) EnsureUser(ctx context.Context, user model.User) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("ensure_user", time.Since(start).Seconds()) }()

	key := identity.UserKey(user.ID)

	exists, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, apperr.TransientStore("failed to check user", err)
	}
	if exists > 0 {
		return false, nil
	}

	err = s.rdb.HSet(ctx, key, map[string]interface{}{
		fieldUserID:    user.ID,
		fieldUserEmail: user.Email,
		fieldUserName:  user.Name,
		fieldUserImage: user.Image,
	}).Err()
	if err != nil {
		return false, apperr.TransientStore("failed to create user", err)
	}
	return true, nil
}

// GetUser fetches a user profile.
func (s *Store) GetUser(ctx context.Context, userID string) (*model.User, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("get_user", time.Since(start).Seconds()) }()

	fields, err := s.rdb.HGetAll(ctx, identity.UserKey(userID)).Result()
	if err != nil {
		return nil, apperr.TransientStore("failed to read user", err)
	}
	if len(fields) == 0 {
		return nil, apperr.NotFound("user not found")
	}

	return &model.User{
		ID:    fields[fieldUserID],
		Email: fields[fieldUserEmail],
		Name:  fields[fieldUserName],
		Image: fields[fieldUserImage],
	}, nil
}

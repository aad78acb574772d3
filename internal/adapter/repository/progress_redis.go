package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/repository"
)

// ProgressRedisRepository keeps each user's record under its own key and
// guards writes with WATCH/MULTI/EXEC.
type ProgressRedisRepository struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewRedisClient dials addr and checks the connection before returning.
func NewRedisClient(addr string, db int) (*goredis.Client, func(), error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, func() { _ = rdb.Close() }, nil
}

// NewProgressRedisRepository constructs a redis-backed repository. Every key
// it touches starts with prefix.
func NewProgressRedisRepository(rdb goredis.UniversalClient, prefix string) repository.ProgressRepository {
	return &ProgressRedisRepository{rdb: rdb, prefix: prefix}
}

func (r *ProgressRedisRepository) userKey(id string) string     { return r.prefix + "user:" + id }
func (r *ProgressRedisRepository) progressKey(id string) string { return r.prefix + "progress:" + id }
func (r *ProgressRedisRepository) usersKey() string             { return r.prefix + "users" }

func (r *ProgressRedisRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user == nil {
		return nil, entity.ErrInvalidUserID
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	created := *user
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	created.CreatedAt = created.CreatedAt.UTC()

	data, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	// The user key and the index entry go out in one MULTI so ListUsers never
	// misses a user that exists.
	var setCmd *goredis.BoolCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		setCmd = pipe.SetNX(ctx, r.userKey(created.ID), data, 0)
		pipe.SAdd(ctx, r.usersKey(), created.ID)
		return nil
	})
	if err != nil {
		return nil, storeErr("create user", err)
	}
	if !setCmd.Val() {
		return nil, entity.ErrUserAlreadyExists
	}
	return &created, nil
}

func (r *ProgressRedisRepository) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	data, err := r.rdb.Get(ctx, r.userKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return &user, nil
}

func (r *ProgressRedisRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	ids, err := r.rdb.SMembers(ctx, r.usersKey()).Result()
	if err != nil {
		return nil, storeErr("list users", err)
	}
	sort.Strings(ids)

	users := make([]entity.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetUser(ctx, id)
		if errors.Is(err, entity.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func (r *ProgressRedisRepository) Load(ctx context.Context, userID string) (*entity.UserProgressRecord, error) {
	if _, err := r.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	record, err := r.readRecord(ctx, r.rdb, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return entity.NewUserProgressRecord(userID), nil
	}
	return record, nil
}

// getter is the part of a client or a watching transaction readRecord needs.
type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func (r *ProgressRedisRepository) readRecord(ctx context.Context, c getter, userID string) (*entity.UserProgressRecord, error) {
	data, err := c.Get(ctx, r.progressKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get progress", err)
	}
	var record entity.UserProgressRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode progress %s: %w", userID, err)
	}
	if record.Entries == nil {
		record.Entries = map[string]entity.StoredProgress{}
	}
	return &record, nil
}

// Save commits the record only if nobody wrote the key since the version
// check. EXEC aborts when the watched key changed in between.
func (r *ProgressRedisRepository) Save(ctx context.Context, record *entity.UserProgressRecord) (*entity.UserProgressRecord, error) {
	if record == nil || record.UserID == "" {
		return nil, entity.ErrInvalidUserID
	}
	key := r.progressKey(record.UserID)
	next := record.Clone()
	next.Version = record.Version + 1
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now()
	}
	next.UpdatedAt = next.UpdatedAt.UTC()

	err := r.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		exists, err := tx.Exists(ctx, r.userKey(record.UserID)).Result()
		if err != nil {
			return storeErr("check user", err)
		}
		if exists == 0 {
			return entity.ErrUserNotFound
		}

		current, err := r.readRecord(ctx, tx, record.UserID)
		if err != nil {
			return err
		}
		var version int64
		if current != nil {
			version = current.Version
		}
		if version != record.Version {
			return &entity.ConflictError{UserID: record.UserID, Expected: record.Version, Current: version}
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode progress: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
	case errors.Is(err, goredis.TxFailedErr):
		// the watched key moved; the new version is unknown here
		return nil, &entity.ConflictError{UserID: record.UserID, Expected: record.Version, Current: -1}
	default:
		return nil, storeErr("save progress", err)
	}

	record.Version = next.Version
	record.UpdatedAt = next.UpdatedAt
	return record, nil
}

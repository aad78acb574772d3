package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/natefinch/atomic"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/repository"
)

// LockTimeout is the timeout for acquiring a per-user file lock.
const LockTimeout = 5 * time.Second

const (
	fileExt   = ".json"
	dirPerms  = 0o755
	filePerms = 0o644
)

var errLockTimeout = errors.New("lock timeout")

// userDocument is what one user's file holds.
type userDocument struct {
	User   entity.User                `json:"user"`
	Record *entity.UserProgressRecord `json:"record,omitempty"`
}

// ProgressFileRepository keeps one JSON document per user in a directory.
// Writers hold an flock on a sibling .lock file across the version check and
// the atomic rename; readers never block.
type ProgressFileRepository struct {
	dir         string
	lockTimeout time.Duration
}

// NewProgressFileRepository constructs a file-backed repository rooted at dir.
func NewProgressFileRepository(dir string) (repository.ProgressRepository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("progress file store: directory is required")
	}
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}
	return &ProgressFileRepository{dir: dir, lockTimeout: LockTimeout}, nil
}

func (r *ProgressFileRepository) path(userID string) string {
	return filepath.Join(r.dir, url.PathEscape(userID)+fileExt)
}

func (r *ProgressFileRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
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

	err := r.withLock(ctx, created.ID, func(doc *userDocument) (*userDocument, error) {
		if doc != nil {
			return nil, entity.ErrUserAlreadyExists
		}
		return &userDocument{User: created}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ProgressFileRepository) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	doc, err := r.read(userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, entity.ErrUserNotFound
	}
	return &doc.User, nil
}

func (r *ProgressFileRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	users := make([]entity.User, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
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

func (r *ProgressFileRepository) Load(ctx context.Context, userID string) (*entity.UserProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := r.read(userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, entity.ErrUserNotFound
	}
	if doc.Record == nil {
		return entity.NewUserProgressRecord(userID), nil
	}
	if doc.Record.Entries == nil {
		doc.Record.Entries = map[string]entity.StoredProgress{}
	}
	return doc.Record, nil
}

func (r *ProgressFileRepository) Save(ctx context.Context, record *entity.UserProgressRecord) (*entity.UserProgressRecord, error) {
	if record == nil || record.UserID == "" {
		return nil, entity.ErrInvalidUserID
	}
	next := record.Clone()
	next.Version = record.Version + 1
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now()
	}
	next.UpdatedAt = next.UpdatedAt.UTC()

	err := r.withLock(ctx, record.UserID, func(doc *userDocument) (*userDocument, error) {
		if doc == nil {
			return nil, entity.ErrUserNotFound
		}
		var current int64
		if doc.Record != nil {
			current = doc.Record.Version
		}
		if current != record.Version {
			return nil, &entity.ConflictError{UserID: record.UserID, Expected: record.Version, Current: current}
		}
		doc.Record = next
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	record.Version = next.Version
	record.UpdatedAt = next.UpdatedAt
	return record, nil
}

func (r *ProgressFileRepository) read(userID string) (*userDocument, error) {
	data, err := os.ReadFile(r.path(userID)) //nolint:gosec // path is escaped
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("read progress file", err)
	}
	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode progress file for %s: %w", userID, err)
	}
	return &doc, nil
}

// withLock gives handler the current document (nil if the user has no file)
// while holding the user's lock. A nil result means nothing to write.
func (r *ProgressFileRepository) withLock(ctx context.Context, userID string, handler func(doc *userDocument) (*userDocument, error)) error {
	path := r.path(userID)
	lock, err := acquireLock(ctx, path, r.lockTimeout)
	if err != nil {
		return storeErr("acquire lock", err)
	}
	defer lock.release()

	doc, err := r.read(userID)
	if err != nil {
		return err
	}
	updated, err := handler(doc)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress file: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return storeErr("write progress file", err)
	}
	return nil
}

type fileLock struct {
	file *os.File
}

// acquireLock takes an exclusive flock on path + ".lock", polling until
// timeout or ctx ends.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (*fileLock, error) {
	file, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, filePerms) //nolint:gosec // path is escaped
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	const retryInterval = 5 * time.Millisecond

	for {
		if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
			return &fileLock{file: file}, nil
		}
		if time.Now().After(deadline) {
			_ = file.Close()
			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}
		select {
		case <-ctx.Done():
			_ = file.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *fileLock) release() {
	if l.file != nil {
		_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		_ = l.file.Close()
	}
}

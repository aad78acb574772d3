package repository

import (
	"context"
	stdsql "database/sql"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/infrastructure/database"
	"github.com/sabucaps/brazilian/internal/infrastructure/database/types"
	"github.com/sabucaps/brazilian/internal/repository"
)

// ProgressSQLRepository keeps users and their progress records in the
// relational database, one row per user.
type ProgressSQLRepository struct {
	driver  dialect.Driver
	dialect string
}

// NewProgressSQLRepository constructs an ent-backed repository.
func NewProgressSQLRepository(db *database.DB) repository.ProgressRepository {
	return &ProgressSQLRepository{driver: db.Driver, dialect: db.Dialect}
}

func (r *ProgressSQLRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
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

	query, args := sql.Dialect(r.dialect).
		Insert(database.UsersTable.Name).
		Columns("id", "name", "created_at").
		Values(created.ID, created.Name, created.CreatedAt).
		Query()
	if err := r.driver.Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrUserAlreadyExists
		}
		return nil, storeErr("create user", err)
	}
	return &created, nil
}

func (r *ProgressSQLRepository) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	query, args := sql.Dialect(r.dialect).
		Select("id", "name", "created_at").
		From(sql.Table(database.UsersTable.Name)).
		Where(sql.EQ("id", userID)).
		Query()

	users, err := r.queryUsers(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, entity.ErrUserNotFound
	}
	return &users[0], nil
}

func (r *ProgressSQLRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	query, args := sql.Dialect(r.dialect).
		Select("id", "name", "created_at").
		From(sql.Table(database.UsersTable.Name)).
		OrderBy("id").
		Query()
	return r.queryUsers(ctx, query, args)
}

func (r *ProgressSQLRepository) queryUsers(ctx context.Context, query string, args []any) ([]entity.User, error) {
	rows := &sql.Rows{}
	if err := r.driver.Query(ctx, query, args, rows); err != nil {
		return nil, storeErr("query users", err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var user entity.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, storeErr("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate users", err)
	}
	return users, nil
}

func (r *ProgressSQLRepository) Load(ctx context.Context, userID string) (*entity.UserProgressRecord, error) {
	if _, err := r.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	record, err := r.loadRow(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return entity.NewUserProgressRecord(userID), nil
	}
	return record, nil
}

func (r *ProgressSQLRepository) loadRow(ctx context.Context, userID string) (*entity.UserProgressRecord, error) {
	query, args := sql.Dialect(r.dialect).
		Select("user_id", "version", "entries", "history", "mastered", "needs_review", "updated_at").
		From(sql.Table(database.UserProgressTable.Name)).
		Where(sql.EQ("user_id", userID)).
		Query()

	rows := &sql.Rows{}
	if err := r.driver.Query(ctx, query, args, rows); err != nil {
		return nil, storeErr("query progress", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, storeErr("query progress", err)
		}
		return nil, nil
	}

	var (
		record      entity.UserProgressRecord
		entries     types.JSON[map[string]entity.StoredProgress]
		history     types.JSON[[]entity.ProgressLogEntry]
		mastered    types.JSON[[]string]
		needsReview types.JSON[[]string]
	)
	if err := rows.Scan(&record.UserID, &record.Version, &entries, &history, &mastered, &needsReview, &record.UpdatedAt); err != nil {
		return nil, storeErr("scan progress", err)
	}
	record.Entries = entries.V
	if record.Entries == nil {
		record.Entries = map[string]entity.StoredProgress{}
	}
	record.History = history.V
	record.Mastered = mastered.V
	record.NeedsReview = needsReview.V
	return &record, nil
}

// Save writes the whole record in one statement guarded by its version.
func (r *ProgressSQLRepository) Save(ctx context.Context, record *entity.UserProgressRecord) (*entity.UserProgressRecord, error) {
	if record == nil || record.UserID == "" {
		return nil, entity.ErrInvalidUserID
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	updatedAt = updatedAt.UTC()
	next := record.Version + 1

	var (
		query string
		args  []any
	)
	if record.Version == 0 {
		query, args = sql.Dialect(r.dialect).
			Insert(database.UserProgressTable.Name).
			Columns("user_id", "version", "entries", "history", "mastered", "needs_review", "updated_at").
			Values(
				record.UserID,
				next,
				types.NewJSON(record.Entries),
				types.NewJSON(record.History),
				types.NewJSON(record.Mastered),
				types.NewJSON(record.NeedsReview),
				updatedAt,
			).
			Query()
	} else {
		query, args = sql.Dialect(r.dialect).
			Update(database.UserProgressTable.Name).
			Set("version", next).
			Set("entries", types.NewJSON(record.Entries)).
			Set("history", types.NewJSON(record.History)).
			Set("mastered", types.NewJSON(record.Mastered)).
			Set("needs_review", types.NewJSON(record.NeedsReview)).
			Set("updated_at", updatedAt).
			Where(sql.And(
				sql.EQ("user_id", record.UserID),
				sql.EQ("version", record.Version),
			)).
			Query()
	}

	var res stdsql.Result
	if err := r.driver.Exec(ctx, query, args, &res); err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, r.conflict(ctx, record)
		case isForeignKeyViolation(err):
			return nil, entity.ErrUserNotFound
		default:
			return nil, storeErr("save progress", err)
		}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("save progress", err)
	}
	if affected == 0 {
		return nil, r.conflict(ctx, record)
	}

	record.Version = next
	record.UpdatedAt = updatedAt
	return record, nil
}

func (r *ProgressSQLRepository) conflict(ctx context.Context, record *entity.UserProgressRecord) error {
	current, err := r.loadRow(ctx, record.UserID)
	if err != nil {
		return err
	}
	if current == nil {
		if _, err := r.GetUser(ctx, record.UserID); err != nil {
			return err
		}
		return &entity.ConflictError{UserID: record.UserID, Expected: record.Version}
	}
	return &entity.ConflictError{UserID: record.UserID, Expected: record.Version, Current: current.Version}
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/infrastructure/database"
	"github.com/sabucaps/brazilian/internal/infrastructure/database/types"
	"github.com/sabucaps/brazilian/internal/repository"
)

type vocabularyRow struct {
	ID          string               `db:"id"`
	Position    int64                `db:"position"`
	Term        string               `db:"term"`
	Translation string               `db:"translation"`
	Group       string               `db:"group_name"`
	Examples    types.JSON[[]string] `db:"examples"`
	Media       string               `db:"media"`
}

func (row vocabularyRow) toEntity() entity.VocabularyItem {
	return entity.VocabularyItem{
		ID:          row.ID,
		Term:        row.Term,
		Translation: row.Translation,
		Group:       row.Group,
		Examples:    row.Examples.V,
		Media:       row.Media,
	}
}

const vocabularyColumns = "id, position, term, translation, group_name, examples, media"

// VocabularyRepository reads the catalog with sqlx. Catalog order is the
// insertion position.
type VocabularyRepository struct {
	db *sqlx.DB
}

// NewSQLX wraps the shared handle for sqlx, keeping the bind style of the
// driver it was opened with.
func NewSQLX(db *database.DB) *sqlx.DB {
	return sqlx.NewDb(db.SQL, db.DriverName)
}

// NewVocabularyRepository constructs a sqlx-backed catalog.
func NewVocabularyRepository(db *sqlx.DB) repository.VocabularyRepository {
	return &VocabularyRepository{db: db}
}

func (r *VocabularyRepository) ListAll(ctx context.Context) ([]entity.VocabularyItem, error) {
	var rows []vocabularyRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+vocabularyColumns+" FROM vocabulary ORDER BY position"); err != nil {
		return nil, storeErr("list vocabulary", err)
	}
	items := make([]entity.VocabularyItem, len(rows))
	for i, row := range rows {
		items[i] = row.toEntity()
	}
	return items, nil
}

func (r *VocabularyRepository) GetByID(ctx context.Context, id string) (*entity.VocabularyItem, error) {
	var row vocabularyRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+vocabularyColumns+" FROM vocabulary WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrVocabularyNotFound
	}
	if err != nil {
		return nil, storeErr("get vocabulary item", err)
	}
	item := row.toEntity()
	return &item, nil
}

// Create appends item to the end of the catalog.
func (r *VocabularyRepository) Create(ctx context.Context, item *entity.VocabularyItem) (*entity.VocabularyItem, error) {
	if item == nil {
		return nil, entity.ErrInvalidWordID
	}
	created := *item
	created.Normalize()
	if err := created.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin transaction", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	var position int64
	if err := tx.GetContext(ctx, &position, "SELECT COALESCE(MAX(position), 0) + 1 FROM vocabulary"); err != nil {
		return nil, storeErr("next vocabulary position", err)
	}

	row := vocabularyRow{
		ID:          created.ID,
		Position:    position,
		Term:        created.Term,
		Translation: created.Translation,
		Group:       created.Group,
		Examples:    types.NewJSON(created.Examples),
		Media:       created.Media,
	}
	_, err = tx.NamedExecContext(ctx,
		"INSERT INTO vocabulary ("+vocabularyColumns+") VALUES (:id, :position, :term, :translation, :group_name, :examples, :media)",
		row,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateWord
		}
		return nil, storeErr("insert vocabulary item", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit vocabulary item", err)
	}
	commit = true
	return &created, nil
}

func (r *VocabularyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM vocabulary WHERE id = ?"), id)
	if err != nil {
		return storeErr("delete vocabulary item", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete vocabulary item", err)
	}
	if affected == 0 {
		return entity.ErrVocabularyNotFound
	}
	return nil
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabucaps/brazilian/internal/entity"
)

func TestVocabularyRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewVocabularyRepository(NewSQLX(db))
	ctx := context.Background()

	for _, item := range []entity.VocabularyItem{
		{ID: "w2", Term: "gato", Translation: "cat", Group: "animals", Examples: []string{"o gato", " "}},
		{ID: "w1", Term: " casa ", Translation: "house"},
		{ID: "w3", Term: "livro", Translation: "book", Media: "img/livro.png"},
	} {
		_, err := repo.Create(ctx, &item)
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, &entity.VocabularyItem{ID: "w1", Term: "lar", Translation: "home"})
	require.ErrorIs(t, err, entity.ErrDuplicateWord)
	_, err = repo.Create(ctx, &entity.VocabularyItem{ID: "w9", Term: "", Translation: "x"})
	require.ErrorIs(t, err, entity.ErrInvalidWordText)

	items, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"w2", "w1", "w3"}, []string{items[0].ID, items[1].ID, items[2].ID}, "insertion order is catalog order")
	assert.Equal(t, []string{"o gato"}, items[0].Examples)
	assert.Equal(t, "casa", items[1].Term)

	got, err := repo.GetByID(ctx, "w3")
	require.NoError(t, err)
	assert.Equal(t, "img/livro.png", got.Media)

	_, err = repo.GetByID(ctx, "nope")
	require.ErrorIs(t, err, entity.ErrVocabularyNotFound)

	require.NoError(t, repo.Delete(ctx, "w1"))
	require.ErrorIs(t, repo.Delete(ctx, "w1"), entity.ErrVocabularyNotFound)

	_, err = repo.Create(ctx, &entity.VocabularyItem{ID: "w4", Term: "mesa", Translation: "table"})
	require.NoError(t, err)
	items, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "w4", items[len(items)-1].ID)
}

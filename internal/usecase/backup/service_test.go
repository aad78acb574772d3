package backup

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/sabucaps/brazilian/internal/entity"
)

type memVocab struct {
	mu    sync.Mutex
	items []entity.VocabularyItem
}

func (m *memVocab) ListAll(context.Context) ([]entity.VocabularyItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.VocabularyItem{}, m.items...), nil
}

func (m *memVocab) GetByID(_ context.Context, id string) (*entity.VocabularyItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, entity.ErrVocabularyNotFound
}

func (m *memVocab) Create(_ context.Context, item *entity.VocabularyItem) (*entity.VocabularyItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ID == item.ID {
			return nil, entity.ErrDuplicateWord
		}
	}
	m.items = append(m.items, *item)
	return item, nil
}

func (m *memVocab) Delete(context.Context, string) error { return nil }

type memProgress struct {
	mu      sync.Mutex
	users   map[string]entity.User
	records map[string]*entity.UserProgressRecord
}

func newMemProgress() *memProgress {
	return &memProgress{users: map[string]entity.User{}, records: map[string]*entity.UserProgressRecord{}}
}

func (m *memProgress) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return nil, entity.ErrUserAlreadyExists
	}
	m.users[user.ID] = *user
	return user, nil
}

func (m *memProgress) GetUser(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return &user, nil
}

func (m *memProgress) ListUsers(context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProgress) Load(_ context.Context, id string) (*entity.UserProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return nil, entity.ErrUserNotFound
	}
	if rec, ok := m.records[id]; ok {
		return rec.Clone(), nil
	}
	return entity.NewUserProgressRecord(id), nil
}

func (m *memProgress) Save(_ context.Context, rec *entity.UserProgressRecord) (*entity.UserProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current int64
	if existing, ok := m.records[rec.UserID]; ok {
		current = existing.Version
	}
	if current != rec.Version {
		return nil, &entity.ConflictError{UserID: rec.UserID, Expected: rec.Version, Current: current}
	}
	rec.Version++
	m.records[rec.UserID] = rec.Clone()
	return rec, nil
}

var exportedAt = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func seededService(t *testing.T) (*Service, *memVocab, *memProgress) {
	t.Helper()
	ctx := context.Background()
	vocab := &memVocab{items: []entity.VocabularyItem{
		{ID: "w1", Term: "casa", Translation: "house"},
		{ID: "w2", Term: "gato", Translation: "cat", Group: "animals", Examples: []string{"o gato dorme"}},
	}}
	progress := newMemProgress()
	for _, id := range []string{"u1", "u2"} {
		if _, err := progress.CreateUser(ctx, &entity.User{ID: id, Name: strings.ToUpper(id), CreatedAt: exportedAt}); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	next := exportedAt.Add(72 * time.Hour)
	entry := entity.ProgressEntry{Ease: 2.35, Interval: 3, ReviewCount: 2, LastReviewed: &exportedAt, NextReview: &next}
	rec := entity.NewUserProgressRecord("u1")
	rec.Entries["w2"] = entry.Stored()
	rec.History = []entity.ProgressLogEntry{{WordID: "w2", Progress: entry.Stored()}}
	rec.NeedsReview = []string{"w2"}
	rec.UpdatedAt = exportedAt
	if _, err := progress.Save(ctx, rec); err != nil {
		t.Fatalf("save progress: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(vocab, progress, WithLogger(logger))
	svc.clock = func() time.Time { return exportedAt }
	return svc, vocab, progress
}

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, srcVocab, srcProgress := seededService(t)

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+2+2+1 {
		t.Fatalf("expected meta + 2 words + 2 users + 1 record, got %d lines:\n%s", len(lines), buf.String())
	}

	dstVocab := &memVocab{}
	dstProgress := newMemProgress()
	dst := NewService(dstVocab, dstProgress, WithLogger(logrus.New()))
	stats, err := dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if diff := cmp.Diff(Stats{SectionVocabulary: 2, SectionUsers: 2, SectionProgress: 1}, stats); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(srcVocab.items, dstVocab.items); diff != "" {
		t.Fatalf("vocabulary mismatch (-src +dst):\n%s", diff)
	}
	if diff := cmp.Diff(srcProgress.users, dstProgress.users); diff != "" {
		t.Fatalf("users mismatch (-src +dst):\n%s", diff)
	}
	want, _ := srcProgress.Load(ctx, "u1")
	got, _ := dstProgress.Load(ctx, "u1")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("progress mismatch (-src +dst):\n%s", diff)
	}

	// importing again keeps catalog and users and replaces the record
	stats, err = dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if stats[SectionVocabulary] != 0 || stats[SectionUsers] != 0 || stats[SectionProgress] != 1 {
		t.Fatalf("unexpected stats on re-import: %v", stats)
	}
	again, _ := dstProgress.Load(ctx, "u1")
	if again.Version != 2 {
		t.Fatalf("expected record version 2 after replace, got %d", again.Version)
	}
}

func TestServiceExportSectionsFilter(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seededService(t)

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf, WithSections([]string{"Vocabulary"})); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(buf.String(), `"type":"users"`) || strings.Contains(buf.String(), `"type":"progress"`) {
		t.Fatalf("unexpected sections in output:\n%s", buf.String())
	}

	if err := svc.Export(ctx, &buf, WithSections([]string{"lessons"})); err == nil {
		t.Fatal("expected unknown section to fail")
	}
}

func TestServiceImportRejectsTamperedBackup(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seededService(t)

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	tampered := strings.Replace(buf.String(), `"casa"`, `"lar"`, 1)

	dstVocab := &memVocab{}
	dst := NewService(dstVocab, newMemProgress())
	if _, err := dst.Import(ctx, strings.NewReader(tampered)); err == nil || !strings.Contains(err.Error(), "digest") {
		t.Fatalf("expected digest error, got %v", err)
	}
	if len(dstVocab.items) != 0 {
		t.Fatal("nothing may be applied from a rejected backup")
	}

	if _, err := dst.Import(ctx, strings.NewReader(`{"type":"vocabulary","payload":{"id":"x"}}`)); err == nil {
		t.Fatal("expected missing meta to fail")
	}
	if _, err := dst.Import(ctx, strings.NewReader(`{"type":"meta","version":9}`)); err == nil {
		t.Fatal("expected unsupported version to fail")
	}
}

package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/repository"
)

const (
	formatVersion = 1

	maxImportAttempts = 4
	maxLineBytes      = 64 << 20
)

// Backup sections, in the order they are written and applied.
const (
	SectionVocabulary = "vocabulary"
	SectionUsers      = "users"
	SectionProgress   = "progress"
)

var allSections = []string{SectionVocabulary, SectionUsers, SectionProgress}

var errNoSectionsSelected = errors.New("backup: no sections selected")

type ProgressReporter interface {
	StartSection(section string, total int)
	Increment(section string, delta int)
	FinishSection(section string)
}

type noopProgress struct{}

func (noopProgress) StartSection(string, int) {}
func (noopProgress) Increment(string, int)    {}
func (noopProgress) FinishSection(string)     {}

// Service dumps and restores the catalog, the users and their progress
// records as JSON lines. It talks to the repositories only, so it works the
// same against every configured store.
type Service struct {
	vocab    repository.VocabularyRepository
	progress repository.ProgressRepository
	logger   logrus.FieldLogger
	clock    func() time.Time
}

type Option func(*Service)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a backup service over the given repositories.
func NewService(vocab repository.VocabularyRepository, progress repository.ProgressRepository, opts ...Option) *Service {
	svc := &Service{
		vocab:    vocab,
		progress: progress,
		logger:   logrus.StandardLogger(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	sections []string
	reporter ProgressReporter
}

// WithSections restricts export to the named sections.
func WithSections(sections []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(sections) == 0 {
			return
		}
		cfg.sections = append([]string{}, sections...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	sections []string
}

// WithImportSections restricts import to the named sections.
func WithImportSections(sections []string) ImportOption {
	return func(cfg *importConfig) {
		if len(sections) == 0 {
			return
		}
		cfg.sections = append([]string{}, sections...)
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	Sections   []string       `json:"sections,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	Digest     string         `json:"digest,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	Sections   []string        `json:"sections"`
	Counts     map[string]int  `json:"counts"`
	Digest     string          `json:"digest"`
	Payload    json.RawMessage `json:"payload"`
}

// Stats reports how many rows an import applied per section.
type Stats map[string]int

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	sections, err := selectSections(cfg.sections)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	payloads, err := s.collect(ctx, sections)
	if err != nil {
		return err
	}

	// the digest covers every payload line so meta can go first
	var body bytes.Buffer
	digest := sha256.New()
	counts := make(map[string]int, len(sections))
	for _, section := range sections {
		rows := payloads[section]
		counts[section] = len(rows)
		reporter.StartSection(section, len(rows))
		for _, row := range rows {
			line, err := encodeRecord(record{Type: section, Payload: row})
			if err != nil {
				return err
			}
			digest.Write(line)
			body.Write(line)
			reporter.Increment(section, 1)
		}
		reporter.FinishSection(section)
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.clock().UTC()
	meta, err := encodeRecord(record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		Sections:   sections,
		Counts:     counts,
		Digest:     encodeDigest(digest),
	})
	if err != nil {
		return err
	}
	if _, err := writer.Write(meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	if _, err := body.WriteTo(writer); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return writer.Flush()
}

func (s *Service) collect(ctx context.Context, sections []string) (map[string][]any, error) {
	out := make(map[string][]any, len(sections))
	var users []entity.User
	for _, section := range sections {
		switch section {
		case SectionVocabulary:
			items, err := s.vocab.ListAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("list vocabulary: %w", err)
			}
			for _, item := range items {
				out[section] = append(out[section], item)
			}
		case SectionUsers, SectionProgress:
			if users == nil {
				list, err := s.progress.ListUsers(ctx)
				if err != nil {
					return nil, fmt.Errorf("list users: %w", err)
				}
				users = list
			}
			for _, user := range users {
				if section == SectionUsers {
					out[section] = append(out[section], user)
					continue
				}
				rec, err := s.progress.Load(ctx, user.ID)
				if err != nil {
					return nil, fmt.Errorf("load progress for %s: %w", user.ID, err)
				}
				if rec.Version == 0 {
					continue
				}
				out[section] = append(out[section], rec)
			}
		}
	}
	return out, nil
}

// Import verifies the whole stream before applying any of it, then writes
// catalog items, users and progress records in that order. Existing catalog
// items and users are kept; progress records replace whatever the target
// store holds for the user.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (Stats, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	sections, err := selectSections(cfg.sections)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		wanted[section] = struct{}{}
	}

	meta, rows, err := readBackup(r)
	if err != nil {
		return nil, err
	}

	stats := make(Stats, len(sections))
	for _, section := range allSections {
		if _, ok := wanted[section]; !ok {
			continue
		}
		for _, payload := range rows[section] {
			applied, err := s.importRow(ctx, section, payload)
			if err != nil {
				return stats, err
			}
			if applied {
				stats[section]++
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"exported_at": meta.ExportedAt,
		"vocabulary":  stats[SectionVocabulary],
		"users":       stats[SectionUsers],
		"progress":    stats[SectionProgress],
	}).Info("backup imported")
	return stats, nil
}

func readBackup(r io.Reader) (*rawRecord, map[string][]json.RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		meta   *rawRecord
		digest = sha256.New()
		rows   = make(map[string][]json.RawMessage, len(allSections))
	)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("decode record: %w", err)
		}
		if rec.Type == "meta" {
			if meta != nil {
				return nil, nil, errors.New("backup: duplicate meta record")
			}
			meta = &rec
			continue
		}
		if meta == nil {
			return nil, nil, errors.New("backup: meta record must come first")
		}
		if !isSection(rec.Type) {
			return nil, nil, fmt.Errorf("backup: unknown record type %q", rec.Type)
		}
		if len(rec.Payload) == 0 {
			return nil, nil, fmt.Errorf("backup: missing payload for %s record", rec.Type)
		}
		digest.Write(line)
		digest.Write([]byte{'\n'})
		rows[rec.Type] = append(rows[rec.Type], append(json.RawMessage(nil), rec.Payload...))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read backup: %w", err)
	}

	if meta == nil {
		return nil, nil, errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return nil, nil, fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}
	if meta.Digest != "" && meta.Digest != encodeDigest(digest) {
		return nil, nil, errors.New("backup: digest mismatch, file is truncated or modified")
	}
	for section, want := range meta.Counts {
		if got := len(rows[section]); got != want {
			return nil, nil, fmt.Errorf("backup: %s has %d records, meta says %d", section, got, want)
		}
	}
	return meta, rows, nil
}

func (s *Service) importRow(ctx context.Context, section string, payload json.RawMessage) (bool, error) {
	switch section {
	case SectionVocabulary:
		var item entity.VocabularyItem
		if err := json.Unmarshal(payload, &item); err != nil {
			return false, fmt.Errorf("decode vocabulary item: %w", err)
		}
		item.Normalize()
		if _, err := s.vocab.Create(ctx, &item); err != nil {
			if errors.Is(err, entity.ErrDuplicateWord) {
				return false, nil
			}
			return false, fmt.Errorf("import vocabulary item %s: %w", item.ID, err)
		}
		return true, nil
	case SectionUsers:
		var user entity.User
		if err := json.Unmarshal(payload, &user); err != nil {
			return false, fmt.Errorf("decode user: %w", err)
		}
		if _, err := s.progress.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, entity.ErrUserAlreadyExists) {
				return false, nil
			}
			return false, fmt.Errorf("import user %s: %w", user.ID, err)
		}
		return true, nil
	default:
		var rec entity.UserProgressRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return false, fmt.Errorf("decode progress record: %w", err)
		}
		if err := s.replaceRecord(ctx, &rec); err != nil {
			return false, fmt.Errorf("import progress for %s: %w", rec.UserID, err)
		}
		return true, nil
	}
}

// replaceRecord writes rec over the user's current record. The version check
// still applies so a concurrent writer is never silently clobbered mid-write.
func (s *Service) replaceRecord(ctx context.Context, rec *entity.UserProgressRecord) error {
	var err error
	for attempt := 0; attempt < maxImportAttempts; attempt++ {
		var current *entity.UserProgressRecord
		current, err = s.progress.Load(ctx, rec.UserID)
		if err != nil {
			return err
		}
		next := rec.Clone()
		if next.Entries == nil {
			next.Entries = map[string]entity.StoredProgress{}
		}
		next.Version = current.Version
		if _, err = s.progress.Save(ctx, next); err == nil {
			return nil
		}
		if !errors.Is(err, entity.ErrConcurrentUpdate) {
			return err
		}
	}
	return err
}

func selectSections(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return append([]string{}, allSections...), nil
	}
	picked := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !isSection(name) {
			return nil, fmt.Errorf("backup: unknown section %q", name)
		}
		picked[name] = struct{}{}
	}
	out := make([]string, 0, len(picked))
	for _, section := range allSections {
		if _, ok := picked[section]; ok {
			out = append(out, section)
		}
	}
	if len(out) == 0 {
		return nil, errNoSectionsSelected
	}
	return out, nil
}

func isSection(name string) bool {
	for _, section := range allSections {
		if section == name {
			return true
		}
	}
	return false
}

func encodeRecord(rec record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", rec.Type, err)
	}
	return append(data, '\n'), nil
}

func encodeDigest(h hash.Hash) string {
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

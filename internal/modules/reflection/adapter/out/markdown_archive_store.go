package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"agentcoach/internal/modules/reflection/domain"
	reflectionout "agentcoach/internal/modules/reflection/port/out"
	apperrors "agentcoach/internal/platform/errors"
	"agentcoach/internal/platform/fsx"
	"agentcoach/internal/platform/markdown"
)

type archiveFrontmatter struct {
	SchemaVersion int    `yaml:"schema_version"`
	ID            string `yaml:"id"`
	CreatedAt     string `yaml:"created_at"`
	SessionCount  int    `yaml:"session_count"`
	SkippedCount  int    `yaml:"skipped_count"`
	MaxAgeDays    int    `yaml:"max_age_days"`
	MaxCount      int    `yaml:"max_count"`
}

// MarkdownArchiveStore keeps one note per reflection run: YAML frontmatter with the run
// metadata and the rendered prompt as the body.
type MarkdownArchiveStore struct {
	dir string
}

func NewMarkdownArchiveStore(dir string) reflectionout.ArchiveStore {
	return &MarkdownArchiveStore{dir: dir}
}

func (s *MarkdownArchiveStore) Save(_ context.Context, document domain.RunDocument) (string, error) {
	run := document.Run
	if err := run.Validate(); err != nil {
		return "", err
	}
	rendered, err := markdown.Render(toFrontmatter(run), document.Prompt)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, run.ArchiveName())
	if err := fsx.WriteFileAtomic(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write reflection note: %w", err)
	}
	return path, nil
}

// FindByID accepts the full id or an unambiguous prefix of at least IDPrefixLen characters.
func (s *MarkdownArchiveStore) FindByID(ctx context.Context, id string) (domain.RunDocument, error) {
	id = strings.TrimSpace(id)
	if len(id) < domain.IDPrefixLen {
		return domain.RunDocument{}, fmt.Errorf("%w: reflection id %q needs at least %d characters", apperrors.ErrInvalidInput, id, domain.IDPrefixLen)
	}
	docs, err := s.List(ctx)
	if err != nil {
		return domain.RunDocument{}, err
	}
	var matches []domain.RunDocument
	for _, doc := range docs {
		if doc.Run.ID == id {
			return doc, nil
		}
		if strings.HasPrefix(doc.Run.ID, id) {
			matches = append(matches, doc)
		}
	}
	switch len(matches) {
	case 0:
		return domain.RunDocument{}, fmt.Errorf("%w: reflection %s", apperrors.ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return domain.RunDocument{}, fmt.Errorf("%w: reflection id %q matches %d runs", apperrors.ErrInvalidInput, id, len(matches))
	}
}

func (s *MarkdownArchiveStore) List(_ context.Context) ([]domain.RunDocument, error) {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return []domain.RunDocument{}, nil
	}
	names, err := doublestar.Glob(os.DirFS(s.dir), "*.md", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob reflection notes: %w", err)
	}
	sort.Strings(names)

	out := make([]domain.RunDocument, 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		var meta archiveFrontmatter
		body, splitErr := markdown.Split(string(content), &meta)
		if splitErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrParse, path, splitErr)
		}
		run, convErr := fromFrontmatter(meta, path)
		if convErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrParse, path, convErr)
		}
		out = append(out, domain.RunDocument{Run: run, Prompt: body})
	}
	return out, nil
}

func toFrontmatter(run domain.Run) archiveFrontmatter {
	return archiveFrontmatter{
		SchemaVersion: domain.SchemaVersion,
		ID:            run.ID,
		CreatedAt:     run.CreatedAt.Format(time.RFC3339),
		SessionCount:  run.SessionCount,
		SkippedCount:  run.SkippedCount,
		MaxAgeDays:    run.MaxAgeDays,
		MaxCount:      run.MaxCount,
	}
}

func fromFrontmatter(meta archiveFrontmatter, notePath string) (domain.Run, error) {
	createdAt, err := time.Parse(time.RFC3339, meta.CreatedAt)
	if err != nil {
		return domain.Run{}, fmt.Errorf("created_at: %w", err)
	}
	run := domain.Run{
		ID:           meta.ID,
		CreatedAt:    createdAt,
		SessionCount: meta.SessionCount,
		SkippedCount: meta.SkippedCount,
		MaxAgeDays:   meta.MaxAgeDays,
		MaxCount:     meta.MaxCount,
		Path:         notePath,
	}
	if err := run.Validate(); err != nil {
		return domain.Run{}, err
	}
	return run, nil
}

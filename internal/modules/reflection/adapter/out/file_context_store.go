package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"agentcoach/internal/modules/reflection/domain"
	reflectionout "agentcoach/internal/modules/reflection/port/out"
)

const (
	profileDoc      = "profile.md"
	effectiveDoc    = "patterns/effective.md"
	antiPatternsDoc = "patterns/anti-patterns.md"
)

type FileContextStore struct {
	root string
}

func NewFileContextStore(root string) reflectionout.ContextStore {
	return &FileContextStore{root: root}
}

func (s *FileContextStore) RootExists(_ context.Context) (bool, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat coach root: %w", err)
	}
	return info.IsDir(), nil
}

func (s *FileContextStore) Read(_ context.Context) (domain.CoachDocs, error) {
	var docs domain.CoachDocs
	for _, target := range []struct {
		rel string
		dst *string
	}{
		{profileDoc, &docs.Profile},
		{effectiveDoc, &docs.Effective},
		{antiPatternsDoc, &docs.AntiPatterns},
	} {
		content, err := s.readOptional(target.rel)
		if err != nil {
			return domain.CoachDocs{}, err
		}
		*target.dst = content
	}
	return docs, nil
}

func (s *FileContextStore) readOptional(rel string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(raw), nil
}

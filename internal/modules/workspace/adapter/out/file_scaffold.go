package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	workspaceout "agentcoach/internal/modules/workspace/port/out"
	apperrors "agentcoach/internal/platform/errors"
	"agentcoach/internal/platform/fsx"
)

type FileScaffold struct {
	root string
}

func NewFileScaffold(root string) workspaceout.Scaffold {
	return &FileScaffold{root: root}
}

func (s *FileScaffold) EnsureDir(_ context.Context, rel string) (bool, error) {
	dir := s.path(rel)
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%w: %s exists and is not a directory", apperrors.ErrStorageUnavailable, dir)
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("%w: stat %s: %v", apperrors.ErrStorageUnavailable, dir, err)
	}
	if err := fsx.EnsureDir(dir); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileScaffold) WriteIfAbsent(_ context.Context, rel string, content []byte) (bool, error) {
	return fsx.WriteFileIfAbsent(s.path(rel), content, 0o644)
}

func (s *FileScaffold) path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

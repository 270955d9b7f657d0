package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"agentcoach/internal/modules/reflection/domain"
	reflectionout "agentcoach/internal/modules/reflection/port/out"
	"agentcoach/internal/platform/fsx"
	"agentcoach/internal/platform/markdown"
)

var evolutionBlock = markdown.Block{Start: domain.EvolutionStart, End: domain.EvolutionEnd}

// FileEvolutionLog maintains a generated list of recent reflection runs inside
// evolution.md. The rest of the document belongs to the user and is left alone.
type FileEvolutionLog struct {
	path string
}

func NewFileEvolutionLog(path string) reflectionout.EvolutionLog {
	return &FileEvolutionLog{path: path}
}

func (l *FileEvolutionLog) Record(_ context.Context, recent []domain.Run) error {
	current, err := os.ReadFile(l.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read evolution log: %w", err)
	}

	lines := make([]string, 0, len(recent)+2)
	lines = append(lines, "### Recent reflections", "")
	for _, run := range recent {
		lines = append(lines, run.EvolutionLine())
	}
	updated := evolutionBlock.Replace(string(current), strings.Join(lines, "\n"))
	if err := fsx.WriteFileAtomic(l.path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write evolution log: %w", err)
	}
	return nil
}

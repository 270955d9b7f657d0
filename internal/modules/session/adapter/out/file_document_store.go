package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"agentcoach/internal/modules/session/domain"
	sessionout "agentcoach/internal/modules/session/port/out"
	apperrors "agentcoach/internal/platform/errors"
	"agentcoach/internal/platform/fsx"
)

// recordPattern matches every backing record; the scan does not insist on the
// session-<day> prefix so hand-copied documents are still picked up.
const recordPattern = "*.json"

type FileDocumentStore struct {
	dir string
}

func NewFileDocumentStore(sessionsDir string) sessionout.DocumentStore {
	return &FileDocumentStore{dir: sessionsDir}
}

func (s *FileDocumentStore) Load(_ context.Context, day string) (domain.Document, bool, error) {
	payload, err := os.ReadFile(s.path(day))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Document{}, false, nil
		}
		return domain.Document{}, false, fmt.Errorf("read session %s: %w", day, err)
	}
	doc, err := decode(payload, day)
	if err != nil {
		return domain.Document{}, false, err
	}
	return doc, true, nil
}

func (s *FileDocumentStore) Save(_ context.Context, day string, doc domain.Document) (string, error) {
	if err := fsx.EnsureDir(s.dir); err != nil {
		return "", err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session %s: %w", day, err)
	}
	path := s.path(day)
	if err := fsx.WriteFileAtomic(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write session %s: %w", day, err)
	}
	return path, nil
}

func (s *FileDocumentStore) Scan(_ context.Context) (domain.Scan, error) {
	scan := domain.Scan{Documents: []domain.Document{}}
	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return scan, nil
		}
		return domain.Scan{}, fmt.Errorf("stat sessions dir: %w", err)
	}
	if !info.IsDir() {
		return domain.Scan{}, fmt.Errorf("%w: %s is not a directory", apperrors.ErrStorageUnavailable, s.dir)
	}

	names, err := doublestar.Glob(os.DirFS(s.dir), recordPattern, doublestar.WithFilesOnly())
	if err != nil {
		return domain.Scan{}, fmt.Errorf("glob session records: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		payload, readErr := os.ReadFile(filepath.Join(s.dir, name))
		if readErr != nil {
			scan.Failures = append(scan.Failures, domain.ScanFailure{Name: name, Err: fmt.Errorf("read %s: %w", name, readErr)})
			continue
		}
		doc, decodeErr := decode(payload, domain.DayFromFileName(name))
		if decodeErr != nil {
			scan.Failures = append(scan.Failures, domain.ScanFailure{Name: name, Err: decodeErr})
			continue
		}
		scan.Documents = append(scan.Documents, doc)
	}
	return scan, nil
}

func (s *FileDocumentStore) path(day string) string {
	return filepath.Join(s.dir, domain.FileName(day))
}

// decode accepts only a JSON object carrying a timestamp; null, other JSON values and
// objects without one are not session documents.
func decode(payload []byte, day string) (domain.Document, error) {
	label := day
	if label == "" {
		label = "record"
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return domain.Document{}, fmt.Errorf("%w: session %s: %v", apperrors.ErrParse, label, err)
	}
	if fields == nil {
		return domain.Document{}, fmt.Errorf("%w: session %s: not a JSON object", apperrors.ErrParse, label)
	}
	doc := domain.Document{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("%w: session %s: %v", apperrors.ErrParse, label, err)
	}
	if doc.Timestamp == "" {
		return domain.Document{}, fmt.Errorf("%w: session %s: missing timestamp", apperrors.ErrParse, label)
	}
	doc.Normalize(day)
	return doc, nil
}

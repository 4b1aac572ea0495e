package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// FileSink appends formatted sections to a plain-text log file.
type FileSink struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileSink returns a sink writing to path. The file is created on first write.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, now: time.Now}
}

// Path returns the log file path.
func (s *FileSink) Path() string { return s.path }

// AddEntries appends one section block.
func (s *FileSink) AddEntries(ctx context.Context, section string, entries []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}

	_, werr := f.WriteString(core.FormatLog(section, entries, s.now()))
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("append audit log: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("close audit log: %w", cerr)
	}
	return nil
}

var _ core.AuditSink = (*FileSink)(nil)

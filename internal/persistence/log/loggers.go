package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// LifecycleEntry is one chunk lifecycle or session event. Lifecycle
// logs are an operational audit trail, not a source of truth.
type LifecycleEntry struct {
	Tick  uint64 `json:"tick"`
	Event string `json:"event"` // e.g. "load_start", "chunk_added", "chunk_removed", "join", "leave"
	CX    int64  `json:"cx,omitempty"`
	CY    int64  `json:"cy,omitempty"`
	CZ    int64  `json:"cz,omitempty"`
	Agent string `json:"agent,omitempty"`
	Saved bool   `json:"saved,omitempty"`
}

// LifecycleLogger writes lifecycle JSONL entries (compressed, rotated
// hourly).
type LifecycleLogger struct{ w *JSONLZstdWriter }

func NewLifecycleLogger(worldDir string) *LifecycleLogger {
	return &LifecycleLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, "lifecycle"), "lifecycle")}
}

func (l *LifecycleLogger) WriteEntry(v LifecycleEntry) error {
	if l == nil {
		return nil
	}
	return l.w.Write(v)
}

func (l *LifecycleLogger) Close() error {
	if l == nil {
		return nil
	}
	return l.w.Close()
}

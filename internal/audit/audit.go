// Package audit appends access, error and CSV records to flat files under
// a single directory.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"go.uber.org/zap"
)

// Sink file names
const (
	AccessLog    = "access.log"
	ErrorLog     = "error.log"
	LeadsFile    = "leads.csv"
	CalendlyFile = "calendly.log"
)

// Redacted replaces the value of every sensitive context key
const Redacted = "[REDACTED]"

const maxTraceFrames = 8

var sensitiveKeys = map[string]struct{}{
	"email":    {},
	"phone":    {},
	"password": {},
	"token":    {},
	"secret":   {},
}

// Record is a row of a CSV sink. Fields must come back in the same order on
// every call for a given file.
type Record interface {
	CSVFields() []string
}

// Sink is the subset of Logger used by request pipelines
type Sink interface {
	LogAccess(method, path string, status int, elapsed time.Duration, ip string) error
	LogError(err error, ctx map[string]any) error
	AppendRecord(file string, rec Record) error
}

var _ Sink = (*Logger)(nil)

// Logger writes append-only audit files. The directory is created on demand
// before every write, so it may be removed while the process runs.
type Logger struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// Option configures a Logger
type Option func(*Logger)

// WithClock overrides the time source used for record timestamps
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New creates an audit logger rooted at dir
func New(dir string, opts ...Option) *Logger {
	l := &Logger{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the directory holding the sink files
func (l *Logger) Dir() string {
	return l.dir
}

// LogAccess appends "ts method path status Nms ip" to access.log
func (l *Logger) LogAccess(method, path string, status int, elapsed time.Duration, ip string) error {
	line := fmt.Sprintf("%s %s %s %d %dms %s\n",
		l.timestamp(), method, path, status, elapsed.Milliseconds(), ip)
	return l.append("access", AccessLog, line)
}

// LogError appends "ts ERROR message trace context" to error.log. ctx is
// sanitized before it is serialized.
func (l *Logger) LogError(err error, ctx map[string]any) error {
	msg := "unknown error"
	if err != nil {
		msg = singleLine(err.Error())
	}

	encoded, jerr := json.Marshal(Sanitize(ctx))
	if jerr != nil {
		encoded = []byte(`{}`)
	}

	line := fmt.Sprintf("%s ERROR %s %s %s\n", l.timestamp(), msg, callerTrace(2), encoded)
	return l.append("error", ErrorLog, line)
}

// AppendRecord appends rec as one CSV line to file
func (l *Logger) AppendRecord(file string, rec Record) error {
	return l.append(strings.TrimSuffix(file, filepath.Ext(file)), file, CSVLine(rec.CSVFields()))
}

func (l *Logger) timestamp() string {
	return l.now().UTC().Format(models.TimestampLayout)
}

func (l *Logger) append(sink, file, line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.write(file, line)
	if err != nil {
		metrics.AuditWrites.WithLabelValues(sink, "error").Inc()
		logger.Error("Failed to write audit record",
			zap.String("sink", sink),
			zap.String("file", file),
			zap.Error(err))
		return err
	}

	metrics.AuditWrites.WithLabelValues(sink, "success").Inc()
	return nil
}

func (l *Logger) write(file, line string) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(l.dir, file), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}

	// One write per record
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", file, err)
	}
	return f.Close()
}

// CSVLine quotes every field, doubling embedded quotes, and terminates the
// line with a newline
func CSVLine(fields []string) string {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	return b.String()
}

// Sanitize returns a copy of ctx with sensitive keys redacted, including
// keys of nested maps. Key matching ignores case.
func Sanitize(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = Redacted
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Sanitize(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// callerTrace renders the stack above LogError on one line
func callerTrace(skip int) string {
	pcs := make([]uintptr, maxTraceFrames)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return "-"
	}

	frames := runtime.CallersFrames(pcs[:n])
	parts := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.") {
			break
		}
		parts = append(parts, fmt.Sprintf("%s(%s:%d)", frame.Function, filepath.Base(frame.File), frame.Line))
		if !more {
			break
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return "at " + strings.Join(parts, " <- ")
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

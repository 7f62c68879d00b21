// Package logbook keeps the planner's session journal: one line per edit or
// action, stamped with the session id and the estimate it produced.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

const defaultKeep = 32

// Entry is one journal line.
//
// On disk: 2026-01-02T03:04:05Z INFO  [1a2b3c4d] Edit · Roles: 100 → 600 | $178,101 · 12w
type Entry struct {
	Time     time.Time
	Level    Level
	Session  string
	Message  string
	Estimate string
}

// String renders the on-disk form.
func (e Entry) String() string {
	line := fmt.Sprintf("%s %-5s [%s] %s", e.Time.UTC().Format(time.RFC3339), e.Level, e.Session, e.Message)
	if e.Estimate != "" {
		line += " | " + e.Estimate
	}
	return line
}

// ParseEntry reads a line written by String. Lines in any other shape come
// back as a bare message with ok set to false.
func ParseEntry(line string) (Entry, bool) {
	bare := Entry{Message: line}
	stamp, rest, found := strings.Cut(line, " ")
	if !found {
		return bare, false
	}
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return bare, false
	}
	level, rest, found := strings.Cut(strings.TrimLeft(rest, " "), " ")
	if !found {
		return bare, false
	}
	rest = strings.TrimLeft(rest, " ")
	if !strings.HasPrefix(rest, "[") {
		return bare, false
	}
	session, msg, found := strings.Cut(rest[1:], "] ")
	if !found {
		return bare, false
	}
	e := Entry{Time: ts, Level: Level(level), Session: session, Message: msg}
	if i := strings.LastIndex(msg, " | "); i >= 0 {
		e.Message, e.Estimate = msg[:i], msg[i+3:]
	}
	return e, true
}

// Logbook appends entries to a text file and keeps the most recent ones in
// memory, so reading the tail never touches the disk.
type Logbook struct {
	path    string
	session string
	now     func() time.Time
	context func() string

	mu     sync.Mutex
	recent []Entry
	keep   int
	total  int
}

// Option customizes a Logbook.
type Option func(*Logbook)

// WithKeep sets how many recent entries stay in memory.
func WithKeep(n int) Option {
	return func(l *Logbook) {
		if n > 0 {
			l.keep = n
		}
	}
}

// New opens the journal at path, creating parent directories as needed.
// Entries already in the file are counted and the newest are cached.
func New(path string, opts ...Option) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	l := &Logbook{
		path:    path,
		session: uuid.NewString()[:8],
		now:     time.Now,
		keep:    defaultKeep,
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Logbook) load() error {
	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		e, _ := ParseEntry(scanner.Text())
		l.remember(e)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("logbook: read %s: %w", l.path, err)
	}
	return nil
}

func (l *Logbook) remember(e Entry) {
	l.total++
	l.recent = append(l.recent, e)
	if over := len(l.recent) - l.keep; over > 0 {
		l.recent = append(l.recent[:0], l.recent[over:]...)
	}
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Session returns the short id stamped on this logbook's entries.
func (l *Logbook) Session() string {
	if l == nil {
		return ""
	}
	return l.session
}

// SetContext registers a function whose result is attached to every later
// entry, typically a one-line summary of the current estimate.
func (l *Logbook) SetContext(fn func() string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.context = fn
}

// Append writes a single entry. Write failures are dropped; the entry still
// shows in Tail.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{
		Time:    l.now(),
		Level:   level,
		Session: l.session,
		Message: strings.TrimSpace(message),
	}
	if l.context != nil {
		e.Estimate = strings.TrimSpace(l.context())
	}
	l.remember(e)

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(e.String() + "\n")
}

// Tail returns up to maxEntries of the newest entries, oldest first, and the
// total number of entries in the journal.
func (l *Logbook) Tail(maxEntries int) ([]Entry, int) {
	if l == nil || maxEntries <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	start := max(0, len(l.recent)-maxEntries)
	return append([]Entry(nil), l.recent[start:]...), l.total
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}

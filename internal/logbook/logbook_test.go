package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestTailReturnsRecentEntriesAndTotal(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "journey.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	entries, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total entries = %d, want 5", total)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if entries[idx].Message != want {
			t.Fatalf("entry %d = %q, want %s", idx, entries[idx].Message, want)
		}
	}
}

func TestEntriesCarryEstimateContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.now = fixedClock
	book.Warn("fx rate %.2f looks odd", 9.5)
	book.SetContext(func() string { return "$49,834 · 5 weeks" })
	book.Info("Copy · summary")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	want := "2026-01-02T03:04:05Z WARN  [" + book.Session() + "] fx rate 9.50 looks odd\n" +
		"2026-01-02T03:04:05Z INFO  [" + book.Session() + "] Copy · summary | $49,834 · 5 weeks\n"
	if string(data) != want {
		t.Fatalf("journal = %q, want %q", data, want)
	}
	if len(book.Session()) != 8 {
		t.Fatalf("session id = %q, want 8 chars", book.Session())
	}
}

func TestParseEntryReadsWrittenLines(t *testing.T) {
	line := "2026-01-02T03:04:05Z ERROR [1a2b3c4d] Copy failed | €12,000 · 3 weeks"
	e, ok := ParseEntry(line)
	if !ok {
		t.Fatalf("expected %q to parse", line)
	}
	if e.Level != LevelError || e.Session != "1a2b3c4d" || e.Message != "Copy failed" || e.Estimate != "€12,000 · 3 weeks" {
		t.Fatalf("entry = %+v", e)
	}
	if !e.Time.Equal(fixedClock()) {
		t.Fatalf("time = %v", e.Time)
	}
	if e.String() != line {
		t.Fatalf("String() = %q, want %q", e.String(), line)
	}

	if e, ok := ParseEntry("free text"); ok || e.Message != "free text" {
		t.Fatalf("free text should come back bare, got %+v ok=%v", e, ok)
	}
}

func TestTailIsServedFromMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Info("first")
	book.Info("second")
	if _, total := book.Tail(5); total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove journal: %v", err)
	}
	entries, total := book.Tail(5)
	if total != 2 || len(entries) != 2 || entries[1].Message != "second" {
		t.Fatalf("tail after removal = %+v, %d", entries, total)
	}
	book.Info("third")
	entries, total = book.Tail(2)
	if total != 3 || len(entries) != 2 || entries[0].Message != "second" || entries[1].Message != "third" {
		t.Fatalf("tail after append = %+v, %d", entries, total)
	}
}

func TestNewLoadsExistingJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journey.log")
	var lines []string
	for _, msg := range []string{"one", "two", "three", "four"} {
		lines = append(lines, Entry{Time: fixedClock(), Level: LevelInfo, Session: "abcd1234", Message: msg}.String())
	}
	lines = append(lines, "", "hand-written note")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("seed journal: %v", err)
	}
	book, err := New(path, WithKeep(3))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	entries, total := book.Tail(10)
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(entries) != 3 {
		t.Fatalf("kept %d entries, want 3", len(entries))
	}
	if entries[0].Message != "three" || entries[0].Session != "abcd1234" {
		t.Fatalf("oldest kept entry = %+v", entries[0])
	}
	if entries[2].Message != "hand-written note" || !entries[2].Time.IsZero() {
		t.Fatalf("unparsed line = %+v", entries[2])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.SetContext(func() string { return "x" })
	if entries, total := book.Tail(5); entries != nil || total != 0 {
		t.Fatalf("nil logbook tail = %v, %d", entries, total)
	}
	if book.Path() != "" {
		t.Fatalf("nil logbook path should be empty")
	}
}

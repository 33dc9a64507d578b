package cache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TitleLogFile is the file name of the title log inside the cache directory.
const TitleLogFile = "title_cache.txt"

// maxLineCapacity bounds a single title log line (1MB).
const maxLineCapacity = 1024 * 1024

// TitleLog is an append-only record-id → title log. Lines have the form
// "{record_id},{title}". Lookups return the first matching line; later
// appends for the same id are never consulted.
type TitleLog struct {
	path string
}

// NewTitleLog returns a log stored at path.
func NewTitleLog(path string) *TitleLog {
	return &TitleLog{path: path}
}

// Path returns the log file path.
func (l *TitleLog) Path() string {
	return l.path
}

// Lookup scans the log from the top and returns the title on the first
// line whose record-id field equals recordID.
func (l *TitleLog) Lookup(recordID string) (string, bool, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("opening title log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineCapacity)

	for scanner.Scan() {
		id, title, ok := parseTitleLine(scanner.Text())
		if ok && id == recordID {
			return title, true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("reading title log: %w", err)
	}
	return "", false, nil
}

// Append adds a line for recordID. Newlines in the title are collapsed to
// spaces so the log stays one entry per line.
func (l *TitleLog) Append(recordID, title string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating title log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening title log for append: %w", err)
	}
	defer f.Close()

	line := recordID + "," + flattenTitle(title) + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing title log: %w", err)
	}
	return nil
}

// Count returns the number of lines in the log.
func (l *TitleLog) Count() (int, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("opening title log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineCapacity)
	n := 0
	for scanner.Scan() {
		if scanner.Text() != "" {
			n++
		}
	}
	return n, scanner.Err()
}

// parseTitleLine splits on the first comma; titles may contain commas.
func parseTitleLine(line string) (id, title string, ok bool) {
	id, title, ok = strings.Cut(line, ",")
	if !ok {
		return "", "", false
	}
	return id, strings.TrimSpace(title), true
}

func flattenTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

package objectstore

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

type Entry struct {
	LogicalName string    `json:"logical_name"`
	RemoteKey   string    `json:"remote_key"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Ledger is the append-only upload log: one entry per line,
// "<RFC3339 time>\t<logical name>\t<remote key>". Lines holding only a remote
// key are read as legacy entries.
type Ledger struct {
	path string
	mu   sync.RWMutex
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) Append(entry Entry) error {
	line := fmt.Sprintf("%s\t%s\t%s\n", entry.UploadedAt.UTC().Format(time.RFC3339Nano), entry.LogicalName, entry.RemoteKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", l.path, err)
	}

	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("append ledger %s: %w", l.path, err)
	}
	return f.Close()
}

// Entries returns every complete entry in append order. A trailing line without
// a newline is an append still in flight and is ignored.
func (l *Ledger) Entries() ([]Entry, error) {
	l.mu.RLock()
	data, err := os.ReadFile(l.path)
	l.mu.RUnlock()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger %s: %w", l.path, err)
	}

	lines := strings.Split(string(data), "\n")
	lines = lines[:len(lines)-1]

	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("ledger %s line %d: %w", l.path, i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseLine(line string) (Entry, error) {
	parts := strings.Split(line, "\t")
	switch len(parts) {
	case 1:
		key := strings.TrimSpace(parts[0])
		return Entry{LogicalName: LogicalName(key), RemoteKey: key}, nil
	case 3:
		at, err := time.Parse(time.RFC3339Nano, parts[0])
		if err != nil {
			return Entry{}, fmt.Errorf("bad timestamp %q: %w", parts[0], err)
		}
		return Entry{LogicalName: parts[1], RemoteKey: parts[2], UploadedAt: at}, nil
	default:
		return Entry{}, fmt.Errorf("malformed entry %q", line)
	}
}

var datedKey = regexp.MustCompile(`^(.*)_\d{4}-\d{2}-\d{2}(\..*)?$`)

// LogicalName strips the upload date from a remote key.
func LogicalName(remoteKey string) string {
	m := datedKey.FindStringSubmatch(remoteKey)
	if m == nil {
		return remoteKey
	}
	return m[1] + m[2]
}

// RemoteKey inserts the date before the first dot of the file name.
func RemoteKey(logicalName string, day time.Time) string {
	date := day.Format("2006-01-02")
	stem, ext, found := strings.Cut(logicalName, ".")
	if !found {
		return stem + "_" + date
	}
	return stem + "_" + date + "." + ext
}

package crawler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"ulascansenturk/kayak-pipeline/internal/models"
)

// jsonArraySink writes records as one JSON array as they arrive. It is owned
// by a single goroutine.
type jsonArraySink struct {
	path  string
	file  *os.File
	w     *bufio.Writer
	count int
}

func newJSONArraySink(path string) (*jsonArraySink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	if _, err := w.WriteString("["); err != nil {
		file.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &jsonArraySink{path: path, file: file, w: w}, nil
}

func (s *jsonArraySink) write(record models.HotelRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", record.URL, err)
	}

	if s.count > 0 {
		if err := s.w.WriteByte(','); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
	}
	if _, err := s.w.Write(append([]byte("\n"), data...)); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.count++
	return nil
}

// close terminates the array and flushes it to disk.
func (s *jsonArraySink) close() error {
	if _, err := s.w.WriteString("\n]\n"); err != nil {
		s.file.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	return s.file.Close()
}

// drain writes everything received on records and closes the sink once the
// channel is closed. Later records are discarded after the first write error.
func (s *jsonArraySink) drain(records <-chan models.HotelRecord) error {
	var werr error
	for record := range records {
		if werr != nil {
			continue
		}
		werr = s.write(record)
	}
	if err := s.close(); werr == nil {
		werr = err
	}
	return werr
}

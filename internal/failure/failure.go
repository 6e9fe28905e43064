package failure

import (
	"errors"
	"fmt"
)

var (
	ErrConnectivity = errors.New("relational store unreachable")
	ErrGeocoding    = errors.New("geocoding failed")
	ErrExtraction   = errors.New("extraction failed")
	ErrUpload       = errors.New("upload failed")
	ErrNotFound     = errors.New("not found")
)

// StageError tags an error with the pipeline stage and the city, URL or file it concerns.
type StageError struct {
	Stage   string
	Subject string
	Err     error
}

func (e *StageError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Stage, e.Subject, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func Wrap(stage, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Subject: subject, Err: err}
}

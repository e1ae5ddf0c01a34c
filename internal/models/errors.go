package models

import (
	"errors"
	"fmt"
)

var (
	ErrSourceNotFound = errors.New("source root not found")
	ErrTourNotFound   = errors.New("tour not found")
	ErrNoTours        = errors.New("no tour folders to process")
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrDuplicateColor = errors.New("color slug already uploaded for this tour")
)

// ClassificationError reports a media file whose name matches no naming rule.
type ClassificationError struct {
	File string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s: no valid prefix (expected 2d_, 360_ or seq_)", e.File)
}

// UploadError wraps a failed remote call for one item.
type UploadError struct {
	Kind ItemKind
	Item string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s upload %q failed: %v", e.Kind, e.Item, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// TourError fails a single tour without stopping the batch.
type TourError struct {
	Tour  string
	Phase string
	Err   error
}

func (e *TourError) Error() string {
	return fmt.Sprintf("tour %s: %s: %v", e.Tour, e.Phase, e.Err)
}

func (e *TourError) Unwrap() error { return e.Err }

// FatalError aborts the whole run.
type FatalError struct {
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err aborts the run.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

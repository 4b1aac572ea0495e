package core

// validation.go defines the error values produced by rejected edits.
//
// Every rejected edit leaves the model untouched. Validation and capacity
// failures are reported to the user; NothingToRemove is a lightweight cue
// rather than an error.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound      = errors.New("attribute not found")
	ErrInvalidLevel  = errors.New("invalid level")
	ErrSlotCapacity  = errors.New("slot list is full")
	ErrSlotIndex     = errors.New("invalid slot index")
	ErrReadOnly      = errors.New("grid is read-only in copy/paste mode")
	ErrNotEditable   = errors.New("column is not editable")
	ErrNoPendingEdit = errors.New("no pending edit")
	ErrPanelClosed   = errors.New("panel is closed")
	ErrUnknownTable  = errors.New("unknown table")
)

// ValidationError describes a rejected cell value.
type ValidationError struct {
	Field   string // Column or catalog type
	Value   string // The offending input
	Message string // Human-readable error message
	Err     error  // Sentinel for errors.Is
}

func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Value != "":
		return fmt.Sprintf("%s: %q: %s", e.Field, e.Value, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseLevel parses level cell text.
// Blank text is level 0; anything outside [0, MaxLevel] is rejected.
func ParseLevel(text string) (int, error) {
	s := CleanCell(text)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimPrefix(strings.ToLower(s), "lv")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > MaxLevel {
		return 0, &ValidationError{
			Field:   "Level",
			Value:   strings.TrimSpace(text),
			Message: fmt.Sprintf("invalid level (use a whole number 0-%d)", MaxLevel),
			Err:     ErrInvalidLevel,
		}
	}
	return n, nil
}

// ParseFlag coerces flag cell text: "true", "1" and "x" are true, anything else false.
func ParseFlag(text string) bool {
	switch strings.ToLower(CleanCell(text)) {
	case "true", "1", "x":
		return true
	default:
		return false
	}
}

// FormatFlag renders a flag for display and export.
func FormatFlag(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

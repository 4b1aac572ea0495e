package core

// error_messages.go maps technical errors to user-facing messages with codes
// that can be quoted back for support.
//
// # Error Codes Reference
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Unknown move: cell text matched no move name or number
//	         Patterns: "move not found"
//	VAL002 - Invalid level: level outside 0-100 or not a number
//	         Patterns: "invalid level"
//	VAL003 - Unknown attribute: text matched no catalog entry
//	         Patterns: "attribute not found"
//
// # Slot Errors (SLOT001-SLOT099)
//
//	SLOT001 - Slot list full: the entity already has the maximum number of slots
//	          Patterns: "slot list is full"
//	SLOT002 - Bad slot: slot index outside the table's limit
//	          Patterns: "invalid slot index"
//
// # Grid Errors (GRID001-GRID099)
//
//	GRID001 - Read-only: copy/paste mode is on
//	          Patterns: "read-only"
//	GRID002 - Not editable: identifier and name columns cannot be edited
//	          Patterns: "not editable"
//	GRID003 - No edit: nothing is being edited
//	          Patterns: "no pending edit"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Missing key column: the CSV has neither an ID nor a Name column
//	         Patterns: "missing key column"
//	IMP002 - Rows failed: one or more rows were rejected
//	         Patterns: "rows failed"
//	IMP003 - No header: the CSV has no header row
//	         Patterns: "missing header"
//	IMP004 - Busy: too many imports are running on the server
//	         Patterns: "too many concurrent imports"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large      Patterns: "file too large"
//	FILE002 - Invalid CSV         Patterns: "invalid csv"
//	FILE003 - Invalid fixture     Patterns: "invalid fixture"
//	FILE004 - No file             Patterns: "no file provided"
//	FILE005 - Empty file          Patterns: "empty file"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Unknown table: no descriptor registered for the kind
//	         Patterns: "unknown table"
//	TBL002 - Panel not found: the panel was closed or never opened
//	         Patterns: "panel not found", "panel is closed"
//	TBL003 - Too many panels: the server's open panel limit was reached
//	         Patterns: "panel limit reached"
//
// # Save Errors (SAVE001-SAVE099)
//
//	SAVE001 - Audit log unavailable    Patterns: "write audit entries"
//	SAVE002 - Write-back failed        Patterns: "write back"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check the application log for the technical error
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Save errors wrap the underlying cause, so they must match first.
	{
		pattern: "write audit entries",
		msg: UserMessage{
			Message: "The audit log could not be written; nothing was saved",
			Action:  "Check the audit log destination and save again",
			Code:    "SAVE001",
		},
	},
	{
		pattern: "write back",
		msg: UserMessage{
			Message: "The table could not be written back; edits are still pending",
			Action:  "Check the data store and save again",
			Code:    "SAVE002",
		},
	},

	// =========================================================================
	// Validation (VAL001-VAL003)
	// =========================================================================
	{
		pattern: "move not found",
		msg: UserMessage{
			Message: "Unknown move",
			Action:  "Type a move name or a move number such as #33",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid level",
		msg: UserMessage{
			Message: "Invalid level",
			Action:  fmt.Sprintf("Use a whole number from 0 to %d", MaxLevel),
			Code:    "VAL002",
		},
	},
	{
		pattern: "attribute not found",
		msg: UserMessage{
			Message: "Unknown value",
			Action:  "Type a known name or number",
			Code:    "VAL003",
		},
	},

	// =========================================================================
	// Slots (SLOT001-SLOT002)
	// =========================================================================
	{
		pattern: "slot list is full",
		msg: UserMessage{
			Message: "This entry already has the maximum number of slots",
			Action:  "Remove a slot before adding another",
			Code:    "SLOT001",
		},
	},
	{
		pattern: "invalid slot index",
		msg: UserMessage{
			Message: "Slot is outside the table's limit",
			Action:  "Use one of the existing slot columns",
			Code:    "SLOT002",
		},
	},

	// =========================================================================
	// Grid (GRID001-GRID003)
	// =========================================================================
	{
		pattern: "read-only",
		msg: UserMessage{
			Message: "Editing is disabled in copy/paste mode",
			Action:  "Turn off copy/paste mode to edit cells",
			Code:    "GRID001",
		},
	},
	{
		pattern: "not editable",
		msg: UserMessage{
			Message: "This column cannot be edited",
			Action:  "Edit the move, level or flag columns instead",
			Code:    "GRID002",
		},
	},
	{
		pattern: "no pending edit",
		msg: UserMessage{
			Message: "No cell is being edited",
			Action:  "Start editing a cell first",
			Code:    "GRID003",
		},
	},

	// =========================================================================
	// Import (IMP001-IMP004)
	// =========================================================================
	{
		pattern: "missing key column",
		msg: UserMessage{
			Message: "The CSV has no ID or Name column",
			Action:  "Export the table first and edit the exported file",
			Code:    "IMP001",
		},
	},
	{
		pattern: "rows failed",
		msg: UserMessage{
			Message: "Some rows could not be imported",
			Action:  "Review the listed rows; all other rows were applied",
			Code:    "IMP002",
		},
	},
	{
		pattern: "missing header",
		msg: UserMessage{
			Message: "The CSV has no header row",
			Action:  "Add a header row with the grid's column names",
			Code:    "IMP003",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "The server is busy with other imports",
			Action:  "Wait a moment and try again",
			Code:    "IMP004",
		},
	},

	// =========================================================================
	// Files (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the import size limit",
			Action:  "Split the file or raise IMPORT_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with quoted fields closed",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid fixture",
		msg: UserMessage{
			Message: "Data file could not be parsed",
			Action:  "Check the fixture YAML for syntax errors",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Please import a CSV file with a header row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Tables (TBL001-TBL003)
	// =========================================================================
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Unknown table type",
			Action:  "Pick one of the listed tables",
			Code:    "TBL001",
		},
	},
	{
		pattern: "panel not found",
		msg: UserMessage{
			Message: "Panel not found",
			Action:  "The panel may have been closed. Open it again",
			Code:    "TBL002",
		},
	},
	{
		pattern: "panel is closed",
		msg: UserMessage{
			Message: "Panel not found",
			Action:  "The panel may have been closed. Open it again",
			Code:    "TBL002",
		},
	},
	{
		pattern: "panel limit reached",
		msg: UserMessage{
			Message: "Too many open panels",
			Action:  "Close a panel you no longer need and try again",
			Code:    "TBL003",
		},
	},

	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the application log",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or the ERR000 fallback. Import
// failures always map to IMP002, whatever their row causes say.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ie *ImportError
	if errors.As(err, &ie) {
		err = errors.New("rows failed")
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

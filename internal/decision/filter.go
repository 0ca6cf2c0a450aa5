package decision

import (
	"fmt"
	"strings"
	"time"
)

// DateField selects which column a date-range filter compares against.
type DateField int

const (
	// DateFieldTimestamp compares the date part of the creation timestamp.
	DateFieldTimestamp DateField = iota
	// DateFieldDue compares the due date.
	DateFieldDue
)

// Column returns the table column backing the field.
func (d DateField) Column() string {
	if d == DateFieldDue {
		return "due_date"
	}
	return "timestamp"
}

func (d DateField) String() string {
	if d == DateFieldDue {
		return "due"
	}
	return "timestamp"
}

// ParseDateField accepts "timestamp", "created", "due" or "due_date".
// The empty string selects DateFieldTimestamp.
func ParseDateField(s string) (DateField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "timestamp", "created":
		return DateFieldTimestamp, nil
	case "due", "due_date", "due-date":
		return DateFieldDue, nil
	default:
		return 0, fmt.Errorf("%w: unknown date field %q (want timestamp or due)", ErrInvalid, s)
	}
}

// Filter narrows a retrieval. Zero values mean "not supplied"; the zero
// Filter matches every record.
type Filter struct {
	// Status restricts results to records whose status text is exactly
	// equal (case-sensitive).
	Status Status
	// Start and End bound the comparison field inclusively, compared as
	// strings. Both are expected in DateLayout.
	Start string
	End   string
	Field DateField
}

// IsZero reports whether f applies no restriction.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Start == "" && f.End == ""
}

// dateLayouts are the formats seen in the wild, tried in order. ISO first;
// day-first before month-first, so ambiguous dashed input is read as
// DD-MM-YYYY and slashed input as MM/DD/YYYY.
var dateLayouts = []string{
	DateLayout,
	"02-01-2006",
	"01/02/2006",
}

// NormalizeDate converts a date in any accepted layout to DateLayout.
// The empty string is returned unchanged. Input carrying a time of day is
// rejected rather than truncated.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: unrecognised date %q (want YYYY-MM-DD, DD-MM-YYYY or MM/DD/YYYY)", ErrInvalid, s)
}

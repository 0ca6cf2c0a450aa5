// Package decision defines the decision record and the value types that
// callers use at the store boundary: the status enumeration, the mutable
// field set, and the retrieval filter.
//
// The store persists status and dates as plain text and performs no
// validation. Everything in this package that checks or normalises input
// (ParseStatus, NormalizeDate, Fields.Normalize, Fields.Validate) is meant
// for the form path in front of the store.
package decision

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Layouts used for persisted date-time values.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Status is the approval state of a decision.
type Status string

const (
	StatusApproved    Status = "Approved"
	StatusNotApproved Status = "Not Approved"
	StatusWaiting     Status = "Waiting"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusApproved, StatusNotApproved, StatusWaiting}

// ErrInvalid marks input rejected by the form-path checks.
var ErrInvalid = errors.New("invalid decision")

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus maps user input onto a Status.
//
// Matching ignores case and treats '-' and '_' as spaces, so "not-approved"
// and "NOT_APPROVED" both parse as StatusNotApproved.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	for _, known := range Statuses {
		if strings.ToLower(string(known)) == key {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q (want one of %s)", ErrInvalid, s, statusList())
}

func statusList() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = fmt.Sprintf("%q", string(s))
	}
	return strings.Join(names, ", ")
}

// Fields holds the replaceable attributes of a decision record.
type Fields struct {
	Area          string
	DecisionMaker string
	Decision      string
	Reasoning     string
	Status        Status
	DueDate       string
}

// Normalize trims surrounding whitespace and converts every text field to
// Unicode NFC, so that visually identical input compares equal in filters
// and searches.
func (f Fields) Normalize() Fields {
	clean := func(s string) string {
		return norm.NFC.String(strings.TrimSpace(s))
	}
	return Fields{
		Area:          clean(f.Area),
		DecisionMaker: clean(f.DecisionMaker),
		Decision:      clean(f.Decision),
		Reasoning:     clean(f.Reasoning),
		Status:        Status(clean(string(f.Status))),
		DueDate:       clean(f.DueDate),
	}
}

// Validate applies the form-path checks: area and decision maker must be
// non-empty and the status must be one of the enumerated values. All
// failures are reported together.
func (f Fields) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Area) == "" {
		errs = append(errs, fmt.Errorf("%w: area is empty", ErrInvalid))
	}
	if strings.TrimSpace(f.DecisionMaker) == "" {
		errs = append(errs, fmt.Errorf("%w: decision maker is empty", ErrInvalid))
	}
	if !f.Status.Valid() {
		errs = append(errs, fmt.Errorf("%w: unknown status %q", ErrInvalid, string(f.Status)))
	}
	return errors.Join(errs...)
}

// Record is one persisted decision.
type Record struct {
	ID            int64  `json:"id" yaml:"id"`
	Timestamp     string `json:"timestamp" yaml:"timestamp"`
	Area          string `json:"area" yaml:"area"`
	DecisionMaker string `json:"decision_maker" yaml:"decision_maker"`
	Decision      string `json:"decision" yaml:"decision"`
	Reasoning     string `json:"reasoning" yaml:"reasoning"`
	Status        Status `json:"status" yaml:"status"`
	DueDate       string `json:"due_date" yaml:"due_date"`
}

// Fields returns the replaceable part of r.
func (r Record) Fields() Fields {
	return Fields{
		Area:          r.Area,
		DecisionMaker: r.DecisionMaker,
		Decision:      r.Decision,
		Reasoning:     r.Reasoning,
		Status:        r.Status,
		DueDate:       r.DueDate,
	}
}

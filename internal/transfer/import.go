package transfer

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/decisionlog/internal/decision"
)

//go:embed decision.cue
var schemaSrc string

// ErrInvalid marks an import document that was rejected before any write.
var ErrInvalid = errors.New("invalid import")

// Entry is one decision in an import document.
type Entry struct {
	// ID and Timestamp are accepted so that exports can be re-imported.
	// Both are ignored.
	ID        int64  `yaml:"id,omitempty" json:"-"`
	Timestamp string `yaml:"timestamp,omitempty" json:"-"`

	Area          string `yaml:"area" json:"area"`
	DecisionMaker string `yaml:"decision_maker" json:"decision_maker"`
	Decision      string `yaml:"decision" json:"decision"`
	Reasoning     string `yaml:"reasoning" json:"reasoning"`
	Status        string `yaml:"status" json:"status"`
	DueDate       string `yaml:"due_date" json:"due_date"`
}

// Document is the top level of an import file.
type Document struct {
	Decisions []Entry `yaml:"decisions"`
}

// Creator is the part of the store Import writes to.
type Creator interface {
	Create(ctx context.Context, f decision.Fields) (int64, error)
}

// Parse decodes and checks an import document and returns the normalised
// fields of every entry, in document order.
//
// All problems in the document are reported together, wrapped in ErrInvalid.
func Parse(r io.Reader) ([]decision.Fields, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: parse YAML: %v", ErrInvalid, err)
	}

	schema, err := newSchema()
	if err != nil {
		return nil, err
	}

	fields := make([]decision.Fields, 0, len(doc.Decisions))
	var problems []string
	for i, e := range doc.Decisions {
		e = normalizeEntry(e)
		for _, p := range schema.check(e) {
			problems = append(problems, fmt.Sprintf("entry %d: %s", i+1, p))
		}
		fields = append(fields, e.fields())
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return fields, nil
}

// Import creates one decision per element of fields and returns the new ids.
// On a store error it stops and returns the ids created so far.
func Import(ctx context.Context, c Creator, fields []decision.Fields) ([]int64, error) {
	ids := make([]int64, 0, len(fields))
	for i, f := range fields {
		id, err := c.Create(ctx, f)
		if err != nil {
			return ids, fmt.Errorf("import entry %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// normalizeEntry applies the form-path normalisation. Values that cannot be
// normalised are left as written for the schema to reject.
func normalizeEntry(e Entry) Entry {
	f := e.fields().Normalize()

	if s, err := decision.ParseStatus(string(f.Status)); err == nil {
		f.Status = s
	}
	if f.DueDate != "" {
		if d, err := decision.NormalizeDate(f.DueDate); err == nil {
			f.DueDate = d
		}
	}

	return Entry{
		Area:          f.Area,
		DecisionMaker: f.DecisionMaker,
		Decision:      f.Decision,
		Reasoning:     f.Reasoning,
		Status:        string(f.Status),
		DueDate:       f.DueDate,
	}
}

func (e Entry) fields() decision.Fields {
	return decision.Fields{
		Area:          e.Area,
		DecisionMaker: e.DecisionMaker,
		Decision:      e.Decision,
		Reasoning:     e.Reasoning,
		Status:        decision.Status(e.Status),
		DueDate:       e.DueDate,
	}
}

type schema struct {
	ctx *cue.Context
	def cue.Value
}

func newSchema() (*schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSrc, cue.Filename("decision.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Decision"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile import schema: #Decision not defined")
	}
	return &schema{ctx: ctx, def: def}, nil
}

// check returns one problem per offending field, sorted by field name.
func (s *schema) check(e Entry) []string {
	v := s.def.Unify(s.ctx.Encode(e))
	err := v.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	seen := make(map[string]bool)
	var problems []string
	for _, ce := range cueerrors.Errors(err) {
		field := "entry"
		if path := ce.Path(); len(path) > 0 {
			field = path[len(path)-1]
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		problems = append(problems, fmt.Sprintf("invalid %s %q", field, fieldValue(e, field)))
	}
	sort.Strings(problems)
	return problems
}

func fieldValue(e Entry, field string) string {
	switch field {
	case "area":
		return e.Area
	case "decision_maker":
		return e.DecisionMaker
	case "decision":
		return e.Decision
	case "reasoning":
		return e.Reasoning
	case "status":
		return e.Status
	case "due_date":
		return e.DueDate
	default:
		return ""
	}
}

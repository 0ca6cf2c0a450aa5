package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/decisionlog/internal/decision"
)

// Scenario defines one store scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Setup steps run before the flow and must all succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow steps run in order; each may carry an expect clause.
	Flow []Step `yaml:"flow"`

	// Assertions check the store after the flow.
	Assertions []Assertion `yaml:"assertions"`
}

// Step operations.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpGet      = "get"
	OpRetrieve = "retrieve"
)

// Step is one store operation.
type Step struct {
	Op     string      `yaml:"op"`
	ID     int64       `yaml:"id,omitempty"`
	Fields *FieldsSpec `yaml:"fields,omitempty"`
	Filter *FilterSpec `yaml:"filter,omitempty"`
	Expect *Expect     `yaml:"expect,omitempty"`
}

// FieldsSpec holds decision fields as written in a scenario.
// An empty status means Waiting.
type FieldsSpec struct {
	Area          string `yaml:"area" json:"area,omitempty"`
	DecisionMaker string `yaml:"decision_maker" json:"decision_maker,omitempty"`
	Decision      string `yaml:"decision" json:"decision,omitempty"`
	Reasoning     string `yaml:"reasoning" json:"reasoning,omitempty"`
	Status        string `yaml:"status" json:"status,omitempty"`
	DueDate       string `yaml:"due_date" json:"due_date,omitempty"`
}

// FilterSpec holds retrieval criteria as written in a scenario.
type FilterSpec struct {
	Status    string `yaml:"status" json:"status,omitempty"`
	From      string `yaml:"from" json:"from,omitempty"`
	To        string `yaml:"to" json:"to,omitempty"`
	DateField string `yaml:"date_field" json:"date_field,omitempty"`
}

// Expect specifies the expected outcome of a flow step.
type Expect struct {
	// Case is the expected outcome: ok, not_found or invalid.
	Case string `yaml:"case"`

	// ID is the id a create step must return. Zero skips the check.
	ID int64 `yaml:"id,omitempty"`

	// IDs are the ids a retrieve step must return, in order.
	// Omit to skip the check; [] expects an empty result.
	IDs []int64 `yaml:"ids,omitempty"`

	// Error must occur in the message of an invalid step.
	Error string `yaml:"error,omitempty"`
}

// Assertion checks the final store state.
type Assertion struct {
	// Type is record, absent or count.
	Type string `yaml:"type"`

	// ID selects the decision for record and absent.
	ID int64 `yaml:"id,omitempty"`

	// Expect maps column names to expected values (record only).
	// Only the listed columns are compared.
	Expect map[string]string `yaml:"expect,omitempty"`

	// Filter restricts a count assertion; nil counts every decision.
	Filter *FilterSpec `yaml:"filter,omitempty"`

	// Count is the expected number of decisions (count only).
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertRecord = "record"
	AssertAbsent = "absent"
	AssertCount  = "count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(where string, step Step) error {
	switch step.Op {
	case OpCreate:
		if step.Fields == nil {
			return fmt.Errorf("%s: fields are required for create", where)
		}
	case OpUpdate:
		if step.ID <= 0 {
			return fmt.Errorf("%s: a positive id is required for update", where)
		}
		if step.Fields == nil {
			return fmt.Errorf("%s: fields are required for update", where)
		}
	case OpDelete, OpGet:
		if step.ID <= 0 {
			return fmt.Errorf("%s: a positive id is required for %s", where, step.Op)
		}
	case OpRetrieve:
	case "":
		return fmt.Errorf("%s: op is required", where)
	default:
		return fmt.Errorf("%s: unknown op %q", where, step.Op)
	}

	if step.Expect != nil {
		switch step.Expect.Case {
		case CaseOK, CaseNotFound, CaseInvalid:
		case "":
			return fmt.Errorf("%s.expect: case is required", where)
		default:
			return fmt.Errorf("%s.expect: unknown case %q", where, step.Expect.Case)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertRecord:
		if a.ID <= 0 {
			return fmt.Errorf("assertions[%d]: id is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
		for column := range a.Expect {
			if _, ok := recordColumns[column]; !ok {
				return fmt.Errorf("assertions[%d]: unknown column %q", index, column)
			}
		}
	case AssertAbsent:
		if a.ID <= 0 {
			return fmt.Errorf("assertions[%d]: id is required for absent", index)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// fields converts s to normalised, validated decision fields.
func (f *FieldsSpec) fields() (decision.Fields, error) {
	if f == nil {
		return decision.Fields{}, fmt.Errorf("%w: no fields given", decision.ErrInvalid)
	}

	status := decision.StatusWaiting
	if f.Status != "" {
		var err error
		if status, err = decision.ParseStatus(f.Status); err != nil {
			return decision.Fields{}, err
		}
	}

	due, err := decision.NormalizeDate(f.DueDate)
	if err != nil {
		return decision.Fields{}, err
	}

	out := decision.Fields{
		Area:          f.Area,
		DecisionMaker: f.DecisionMaker,
		Decision:      f.Decision,
		Reasoning:     f.Reasoning,
		Status:        status,
		DueDate:       due,
	}.Normalize()
	if err := out.Validate(); err != nil {
		return decision.Fields{}, err
	}
	return out, nil
}

// filter converts s to a decision.Filter. A nil filter matches all.
func (f *FilterSpec) filter() (decision.Filter, error) {
	var out decision.Filter
	if f == nil {
		return out, nil
	}

	var err error
	if f.Status != "" {
		if out.Status, err = decision.ParseStatus(f.Status); err != nil {
			return decision.Filter{}, err
		}
	}
	if out.Start, err = decision.NormalizeDate(f.From); err != nil {
		return decision.Filter{}, err
	}
	if out.End, err = decision.NormalizeDate(f.To); err != nil {
		return decision.Filter{}, err
	}
	if out.Field, err = decision.ParseDateField(f.DateField); err != nil {
		return decision.Filter{}, err
	}
	return out, nil
}

package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/lifecycle.yaml")
	require.NoError(t, err)

	assert.Equal(t, "lifecycle", scenario.Name)
	assert.Len(t, scenario.Setup, 2)
	assert.Len(t, scenario.Flow, 7)
	assert.Len(t, scenario.Assertions, 3)

	first := scenario.Flow[0]
	assert.Equal(t, OpUpdate, first.Op)
	assert.Equal(t, int64(1), first.ID)
	require.NotNil(t, first.Fields)
	assert.Equal(t, "2024-09-30", first.Fields.DueDate)
	assert.Equal(t, CaseOK, first.Expect.Case)

	last := scenario.Flow[6]
	assert.Equal(t, []int64{1, 3}, last.Expect.IDs)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Misspelt key"
flow:
  - op: retrieve
assertion:
  - type: count
    count: 0
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing name",
			content: "description: d\nflow:\n  - op: retrieve\n",
			errMsg:  "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nflow:\n  - op: retrieve\n",
			errMsg:  "description is required",
		},
		{
			name:    "empty flow",
			content: "name: n\ndescription: d\nflow: []\n",
			errMsg:  "flow list is required",
		},
		{
			name:    "missing op",
			content: "name: n\ndescription: d\nflow:\n  - id: 1\n",
			errMsg:  "flow[0]: op is required",
		},
		{
			name:    "unknown op",
			content: "name: n\ndescription: d\nflow:\n  - op: upsert\n",
			errMsg:  `flow[0]: unknown op "upsert"`,
		},
		{
			name:    "create without fields",
			content: "name: n\ndescription: d\nflow:\n  - op: create\n",
			errMsg:  "flow[0]: fields are required for create",
		},
		{
			name:    "update without id",
			content: "name: n\ndescription: d\nflow:\n  - op: update\n    fields: { area: A, decision_maker: B }\n",
			errMsg:  "flow[0]: a positive id is required for update",
		},
		{
			name:    "delete without id",
			content: "name: n\ndescription: d\nflow:\n  - op: delete\n",
			errMsg:  "flow[0]: a positive id is required for delete",
		},
		{
			name:    "expect without case",
			content: "name: n\ndescription: d\nflow:\n  - op: retrieve\n    expect: { ids: [] }\n",
			errMsg:  "flow[0].expect: case is required",
		},
		{
			name:    "unknown case",
			content: "name: n\ndescription: d\nflow:\n  - op: retrieve\n    expect: { case: Success }\n",
			errMsg:  `flow[0].expect: unknown case "Success"`,
		},
		{
			name:    "expect in setup",
			content: "name: n\ndescription: d\nsetup:\n  - op: retrieve\n    expect: { case: ok }\nflow:\n  - op: retrieve\n",
			errMsg:  "setup[0]: expect is not allowed in setup",
		},
		{
			name:    "record without expect",
			content: "name: n\ndescription: d\nflow:\n  - op: retrieve\nassertions:\n  - type: record\n    id: 1\n",
			errMsg:  "assertions[0]: expect is required for record",
		},
		{
			name:    "record with unknown column",
			content: "name: n\ndescription: d\nflow:\n  - op: retrieve\nassertions:\n  - type: record\n    id: 1\n    expect: { colour: red }\n",
			errMsg:  `assertions[0]: unknown column "colour"`,
		},
		{
			name:    "absent without id",
			content: "name: n\ndescription: d\nflow:\n  - op: retrieve\nassertions:\n  - type: absent\n",
			errMsg:  "assertions[0]: id is required for absent",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\nflow:\n  - op: retrieve\nassertions:\n  - type: final_state\n",
			errMsg:  `assertions[0]: unknown assertion type "final_state"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Len(t, result.Trace, len(scenario.Setup)+len(scenario.Flow))
		})
	}
}

func TestRunWithGolden_Lifecycle(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/lifecycle.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/filters.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	for i, event := range first.Trace {
		assert.Equal(t, int64(i+1), event.Seq)
	}
}

func TestRun_ReportsFailures(t *testing.T) {
	scenario := &Scenario{
		Name:        "failures",
		Description: "Every expectation below is wrong",
		Setup: []Step{
			{Op: OpCreate, Fields: &FieldsSpec{Area: "Ops", DecisionMaker: "Ana"}},
		},
		Flow: []Step{
			{Op: OpDelete, ID: 1, Expect: &Expect{Case: CaseNotFound}},
			{Op: OpRetrieve, Expect: &Expect{Case: CaseOK, IDs: []int64{9}}},
			{Op: OpCreate, Fields: &FieldsSpec{DecisionMaker: "Ana"}, Expect: &Expect{Case: CaseOK}},
			{Op: OpCreate, Fields: &FieldsSpec{Area: "Ops", DecisionMaker: "Ben"}, Expect: &Expect{Case: CaseOK, ID: 7}},
		},
		Assertions: []Assertion{
			{Type: AssertAbsent, ID: 1},
			{Type: AssertCount, Count: 5},
			{Type: AssertRecord, ID: 2, Expect: map[string]string{"area": "Hiring"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)

	assert.Equal(t, `flow[0] delete: expected case "not_found", got "ok"`, result.Errors[0])
	assert.Equal(t, "flow[1] retrieve: expected ids [9], got []", result.Errors[1])
	assert.Contains(t, result.Errors[2], `flow[2] create: expected case "ok", got "invalid"`)
	assert.Contains(t, result.Errors[2], "area is empty")
	assert.Equal(t, "flow[3] create: expected id 7, got 2", result.Errors[3])
	assert.Contains(t, result.Errors[4], "assertion[1]: Assertion failed: count")
	assert.Contains(t, result.Errors[4], "Actual: 1 decisions [2]")
	assert.Contains(t, result.Errors[5], `area = "Ops", want "Hiring"`)
}

func TestRun_SetupMustSucceed(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "Setup deletes a missing decision",
		Setup:       []Step{{Op: OpDelete, ID: 5}},
		Flow:        []Step{{Op: OpRetrieve}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup step 0: delete returned not_found")
}

func TestRun_InvalidStepRecordsError(t *testing.T) {
	scenario := &Scenario{
		Name:        "invalid",
		Description: "Invalid fields are an outcome, not a failure",
		Flow: []Step{
			{Op: OpCreate, Fields: &FieldsSpec{Area: "Ops", DecisionMaker: "Ana", Status: "Maybe"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, CaseInvalid, result.Trace[0].Case)
	assert.Contains(t, result.Trace[0].Result["error"], `unknown status "Maybe"`)
	assert.True(t, result.Pass, "no expect clause, nothing to fail")
}

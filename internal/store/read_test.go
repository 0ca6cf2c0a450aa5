package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/decisionlog/internal/decision"
	"github.com/roach88/decisionlog/internal/querysql"
)

var zeroFilter = decision.Filter{}

func TestRetrieve_Empty(t *testing.T) {
	s := createTestStore(t)

	records := mustRetrieve(t, s, zeroFilter)

	// Should return empty slice, not nil
	if records == nil {
		t.Error("records is nil, want empty slice")
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestRetrieve_StatusExample(t *testing.T) {
	s := createTestStore(t)
	a1 := mustCreate(t, s, createTestFields("one", decision.StatusApproved))
	w := mustCreate(t, s, createTestFields("two", decision.StatusWaiting))
	a2 := mustCreate(t, s, createTestFields("three", decision.StatusApproved))
	n := mustCreate(t, s, createTestFields("four", decision.StatusNotApproved))

	waiting := mustRetrieve(t, s, decision.Filter{Status: decision.StatusWaiting})
	if !equalIDs(ids(waiting), []int64{w}) {
		t.Errorf("Waiting ids = %v, want [%d]", ids(waiting), w)
	}

	all := mustRetrieve(t, s, zeroFilter)
	if !equalIDs(ids(all), []int64{a1, w, a2, n}) {
		t.Errorf("all ids = %v, want creation order [%d %d %d %d]", ids(all), a1, w, a2, n)
	}
}

func TestRetrieve_StatusFilterOnlyMatches(t *testing.T) {
	s := createTestStore(t)
	statuses := []decision.Status{
		decision.StatusApproved, decision.StatusWaiting, decision.StatusNotApproved,
		decision.StatusApproved, decision.StatusNotApproved, decision.StatusApproved,
	}
	for i, st := range statuses {
		mustCreate(t, s, createTestFields(string(rune('a'+i)), st))
	}

	for _, want := range decision.Statuses {
		records := mustRetrieve(t, s, decision.Filter{Status: want})
		expected := 0
		for _, st := range statuses {
			if st == want {
				expected++
			}
		}
		if len(records) != expected {
			t.Errorf("status %q: got %d records, want %d", want, len(records), expected)
		}
		for _, r := range records {
			if r.Status != want {
				t.Errorf("status %q filter returned record with status %q", want, r.Status)
			}
		}
	}
}

func TestRetrieve_StatusIsCaseSensitive(t *testing.T) {
	s := createTestStore(t)
	mustCreate(t, s, createTestFields("Ops", decision.StatusApproved))

	records := mustRetrieve(t, s, decision.Filter{Status: "approved"})
	if len(records) != 0 {
		t.Errorf("lowercase status matched %d records, want 0", len(records))
	}

	// "Not Approved" must not match an Approved filter either.
	mustCreate(t, s, createTestFields("Ops", decision.StatusNotApproved))
	records = mustRetrieve(t, s, decision.Filter{Status: decision.StatusApproved})
	if len(records) != 1 {
		t.Errorf("Approved filter matched %d records, want 1", len(records))
	}
}

func TestRetrieve_TimestampRange(t *testing.T) {
	s := createTestStore(t)
	// The test clock advances one hour per record: 25 records span
	// 2024-03-01 09:00 through 2024-03-02 09:00.
	var created []int64
	for i := 0; i < 25; i++ {
		created = append(created, mustCreate(t, s, createTestFields("Ops", decision.StatusWaiting)))
	}

	march1 := created[:15] // 09:00 .. 23:00 on the 1st
	march2 := created[15:] // 00:00 .. 09:00 on the 2nd

	tests := []struct {
		name   string
		filter decision.Filter
		want   []int64
	}{
		{"whole first day", decision.Filter{Start: "2024-03-01", End: "2024-03-01"}, march1},
		{"from second day", decision.Filter{Start: "2024-03-02"}, march2},
		{"until first day", decision.Filter{End: "2024-03-01"}, march1},
		{"covering both", decision.Filter{Start: "2024-02-28", End: "2024-03-05"}, created},
		{"before any", decision.Filter{End: "2024-02-29"}, nil},
		{"after all", decision.Filter{Start: "2024-03-03"}, nil},
		{"inverted", decision.Filter{Start: "2024-03-02", End: "2024-03-01"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(mustRetrieve(t, s, tt.filter))
			if !equalIDs(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetrieve_DueDateRange(t *testing.T) {
	s := createTestStore(t)
	due := []string{"2024-01-15", "2024-02-01", "2024-02-29", "2024-03-01", ""}
	var created []int64
	for _, d := range due {
		f := createTestFields("Ops", decision.StatusApproved)
		f.DueDate = d
		created = append(created, mustCreate(t, s, f))
	}

	got := ids(mustRetrieve(t, s, decision.Filter{
		Field: decision.DateFieldDue,
		Start: "2024-02-01",
		End:   "2024-02-29",
	}))
	if !equalIDs(got, created[1:3]) {
		t.Errorf("due in February = %v, want %v", got, created[1:3])
	}

	// Omitting both bounds returns everything, including the empty due date.
	got = ids(mustRetrieve(t, s, decision.Filter{Field: decision.DateFieldDue}))
	if !equalIDs(got, created) {
		t.Errorf("unbounded due filter = %v, want %v", got, created)
	}
}

func TestRetrieve_FiltersCombineWithAnd(t *testing.T) {
	s := createTestStore(t)
	type row struct {
		status decision.Status
		due    string
	}
	rows := []row{
		{decision.StatusApproved, "2024-01-10"},
		{decision.StatusWaiting, "2024-01-20"},
		{decision.StatusApproved, "2024-02-10"},
		{decision.StatusApproved, "2024-01-25"},
	}
	var created []int64
	for _, r := range rows {
		f := createTestFields("Ops", r.status)
		f.DueDate = r.due
		created = append(created, mustCreate(t, s, f))
	}

	got := ids(mustRetrieve(t, s, decision.Filter{
		Status: decision.StatusApproved,
		Field:  decision.DateFieldDue,
		Start:  "2024-01-01",
		End:    "2024-01-31",
	}))
	want := []int64{created[0], created[3]}
	if !equalIDs(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestRetrieve_DeletedNeverReturned(t *testing.T) {
	s := createTestStore(t)
	id := mustCreate(t, s, createTestFields("Ops", decision.StatusWaiting))
	mustCreate(t, s, createTestFields("Keep", decision.StatusWaiting))

	if _, err := s.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	filters := []decision.Filter{
		zeroFilter,
		{Status: decision.StatusWaiting},
		{Start: "2000-01-01", End: "2999-12-31"},
	}
	for _, f := range filters {
		for _, r := range mustRetrieve(t, s, f) {
			if r.ID == id {
				t.Errorf("filter %+v returned deleted id %d", f, id)
			}
		}
	}
}

func TestRetrieve_ReflectsUpdate(t *testing.T) {
	s := createTestStore(t)
	id := mustCreate(t, s, createTestFields("Ops", decision.StatusWaiting))

	f := createTestFields("Ops", decision.StatusApproved)
	if _, err := s.Update(context.Background(), id, f); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if got := mustRetrieve(t, s, decision.Filter{Status: decision.StatusWaiting}); len(got) != 0 {
		t.Errorf("Waiting filter still returns %d records after update", len(got))
	}
	got := mustRetrieve(t, s, decision.Filter{Status: decision.StatusApproved})
	if len(got) != 1 || got[0].Fields() != f {
		t.Errorf("Approved filter = %+v, want one record with %+v", got, f)
	}
}

func TestRetrieve_ReadsNullColumns(t *testing.T) {
	s := createTestStore(t)

	// Rows written by other tools may leave columns NULL.
	_, err := s.db.Exec(`INSERT INTO decisions (timestamp, area) VALUES ('2024-01-01 00:00:00', 'Legacy')`)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	records := mustRetrieve(t, s, zeroFilter)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Area != "Legacy" || records[0].Status != "" || records[0].DueDate != "" {
		t.Errorf("legacy record = %+v", records[0])
	}
}

func TestGet_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if errors.Is(err, ErrStorageUnavailable) {
		t.Error("not-found must not be reported as storage unavailable")
	}
}

func TestFilterQuery_Shape(t *testing.T) {
	q := filterQuery(zeroFilter)
	if q.Filter != nil {
		t.Errorf("zero filter produced predicate %+v", q.Filter)
	}
	if q.From != "decisions" || !equalStrings(q.Columns, decisionColumns) {
		t.Errorf("unexpected select %+v", q)
	}

	sqlText, params, err := querysql.NewSQLCompiler().Compile(filterQuery(decision.Filter{
		Status: decision.StatusWaiting,
		Start:  "2024-01-01",
	}))
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	want := "SELECT id, timestamp, area, decision_maker, decision, reasoning, status, due_date FROM decisions WHERE status = ? AND substr(timestamp, 1, 10) >= ? ORDER BY id ASC"
	if sqlText != want {
		t.Errorf("sql = %q\nwant  %q", sqlText, want)
	}
	if len(params) != 2 || params[0] != "Waiting" || params[1] != "2024-01-01" {
		t.Errorf("params = %v", params)
	}
}

func TestFilterQuery_UnknownDateFieldComparesTimestampDate(t *testing.T) {
	sqlText, params, err := querysql.NewSQLCompiler().Compile(filterQuery(decision.Filter{
		End:   "2024-03-01",
		Field: decision.DateField(7),
	}))
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	want := "SELECT id, timestamp, area, decision_maker, decision, reasoning, status, due_date FROM decisions WHERE substr(timestamp, 1, 10) <= ? ORDER BY id ASC"
	if sqlText != want {
		t.Errorf("sql = %q\nwant  %q", sqlText, want)
	}
	if len(params) != 1 || params[0] != "2024-03-01" {
		t.Errorf("params = %v", params)
	}
}

func TestFilterQuery_FieldAloneAddsNoPredicate(t *testing.T) {
	q := filterQuery(decision.Filter{Field: decision.DateFieldDue})
	if q.Filter != nil {
		t.Errorf("date field without bounds produced predicate %+v", q.Filter)
	}
}

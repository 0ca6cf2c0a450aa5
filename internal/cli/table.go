package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/decisionlog/internal/config"
	"github.com/roach88/decisionlog/internal/decision"
)

const tableCellMaxWidth = 40
const tableCellEllipsis = "..."

var tableHeaders = []string{"ID", "TIMESTAMP", "AREA", "DECISION MAKER", "DECISION", "REASONING", "STATUS", "DUE DATE"}

// statusPainter renders a status cell.
type statusPainter func(decision.Status) string

func plainStatus(s decision.Status) string {
	return string(s)
}

// newStatusPainter colours statuses green, red and yellow. Colour is forced
// on; callers decide with colorEnabled whether to use it.
func newStatusPainter(w io.Writer) statusPainter {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI)

	styles := map[decision.Status]lipgloss.Style{
		decision.StatusApproved:    r.NewStyle().Foreground(lipgloss.Color("2")),
		decision.StatusNotApproved: r.NewStyle().Foreground(lipgloss.Color("1")),
		decision.StatusWaiting:     r.NewStyle().Foreground(lipgloss.Color("3")),
	}
	return func(s decision.Status) string {
		style, ok := styles[s]
		if !ok {
			return string(s)
		}
		return style.Render(string(s))
	}
}

// colorEnabled reports whether table output to w should be coloured.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func painterFor(opts *RootOptions, w io.Writer) statusPainter {
	if colorEnabled(opts.Color, w) {
		return newStatusPainter(w)
	}
	return plainStatus
}

// renderTable lays records out as a table, one row per record.
func renderTable(records []decision.Record, paint statusPainter) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp,
			truncateTableCell(r.Area),
			truncateTableCell(r.DecisionMaker),
			truncateTableCell(r.Decision),
			truncateTableCell(r.Reasoning),
			paint(r.Status),
			r.DueDate,
		})
	}
	return formatTable(tableHeaders, rows)
}

func formatTable(headers []string, rows [][]string) string {
	normalizedHeaders := make([]string, len(headers))
	for i, header := range headers {
		normalizedHeaders[i] = normalizeTableCell(header)
	}

	normalizedRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		normalizedRow := make([]string, len(row))
		for i, cell := range row {
			normalizedRow[i] = normalizeTableCell(cell)
		}
		normalizedRows = append(normalizedRows, normalizedRow)
	}

	widths := make([]int, len(normalizedHeaders))
	for i, header := range normalizedHeaders {
		widths[i] = displayWidth(header)
	}

	for _, row := range normalizedRows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if displayLen := displayWidth(cell); displayLen > widths[i] {
				widths[i] = displayLen
			}
		}
	}

	var builder strings.Builder
	writeRow := func(row []string) {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			padding := widths[i] - displayWidth(cell)
			line.WriteString(strings.Repeat(" ", padding+2))
		}
		// Empty trailing cells leave no trailing blanks.
		builder.WriteString(strings.TrimRight(line.String(), " "))
		builder.WriteByte('\n')
	}

	writeRow(normalizedHeaders)
	for _, row := range normalizedRows {
		writeRow(row)
	}

	return builder.String()
}

func truncateTableCell(value string) string {
	value = normalizeTableCell(value)
	if utf8.RuneCountInString(value) <= tableCellMaxWidth {
		return value
	}

	max := tableCellMaxWidth - utf8.RuneCountInString(tableCellEllipsis)
	return string([]rune(value)[:max]) + tableCellEllipsis
}

func displayWidth(value string) int {
	return utf8.RuneCountInString(stripANSICodes(value))
}

func normalizeTableCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}

func stripANSICodes(input string) string {
	var builder strings.Builder
	inEscape := false
	for i := 0; i < len(input); i++ {
		char := input[i]
		if inEscape {
			if char == 'm' {
				inEscape = false
			}
			continue
		}
		if char == '\x1b' {
			inEscape = true
			continue
		}
		builder.WriteByte(char)
	}
	return builder.String()
}

// sortColumns maps --sort values onto comparison keys.
var sortColumns = map[string]func(decision.Record) string{
	"timestamp":      func(r decision.Record) string { return r.Timestamp },
	"area":           func(r decision.Record) string { return r.Area },
	"maker":          func(r decision.Record) string { return r.DecisionMaker },
	"decision_maker": func(r decision.Record) string { return r.DecisionMaker },
	"decision":       func(r decision.Record) string { return r.Decision },
	"reasoning":      func(r decision.Record) string { return r.Reasoning },
	"status":         func(r decision.Record) string { return string(r.Status) },
	"due":            func(r decision.Record) string { return r.DueDate },
	"due_date":       func(r decision.Record) string { return r.DueDate },
}

// sortRecords orders records by column, case-insensitively, breaking ties
// by id. "id" (or "") keeps storage order.
func sortRecords(records []decision.Record, column string, desc bool) error {
	column = strings.ToLower(strings.TrimSpace(column))

	var less func(a, b decision.Record) bool
	switch column {
	case "", "id":
		less = func(a, b decision.Record) bool { return a.ID < b.ID }
	default:
		key, ok := sortColumns[column]
		if !ok {
			return fmt.Errorf("unknown sort column %q", column)
		}
		less = func(a, b decision.Record) bool {
			ka, kb := strings.ToLower(key(a)), strings.ToLower(key(b))
			if ka != kb {
				return ka < kb
			}
			return a.ID < b.ID
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
	return nil
}

// searchRecords keeps the records where query occurs, case-insensitively,
// in any text column.
func searchRecords(records []decision.Record, query string) []decision.Record {
	needle := strings.ToLower(norm.NFC.String(strings.TrimSpace(query)))
	if needle == "" {
		return records
	}

	matched := make([]decision.Record, 0, len(records))
	for _, r := range records {
		haystack := strings.ToLower(norm.NFC.String(strings.Join([]string{
			r.Timestamp, r.Area, r.DecisionMaker, r.Decision, r.Reasoning, string(r.Status), r.DueDate,
		}, "\n")))
		if strings.Contains(haystack, needle) {
			matched = append(matched, r)
		}
	}
	return matched
}

const showLineWidth = 80

// formatField renders "label: value" with value wrapped to showLineWidth and
// continuation lines aligned under the first.
func formatField(label, value string) string {
	prefix := fmt.Sprintf("%-16s", label+":")
	value = strings.TrimSpace(value)
	if value == "" {
		value = "-"
	}

	wrapWidth := showLineWidth - len(prefix)
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	wrapped := wordwrap.String(value, wrapWidth)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = prefix + line
			continue
		}
		lines[i] = strings.TrimRight(strings.Repeat(" ", len(prefix))+line, " ")
	}
	return strings.Join(lines, "\n")
}

package report

// RowDescriptor is one output row derived from a template line.
type RowDescriptor struct {
	Line  ReportLine
	Total bool
	// Index is the position of the value row this descriptor binds to.
	// It is -1 for the synthetic Total row.
	Index int
}

// TotalOrderOffset places the Total row after the repeated rows.
const TotalOrderOffset = 10

// RepeatRows expands a Repeat template into n data rows followed by one
// synthetic Total row that carries the template formats.
func RepeatRows(template *ReportLine, n int) []RowDescriptor {
	if n < 0 {
		n = 0
	}
	rows := make([]RowDescriptor, 0, n+1)
	for i := 0; i < n; i++ {
		rows = append(rows, RowDescriptor{Line: cloneLine(template), Index: i})
	}

	total := cloneLine(template)
	total.Style = LineStyleTotal
	total.Order = template.Order + TotalOrderOffset
	rows = append(rows, RowDescriptor{Line: total, Total: true, Index: -1})
	return rows
}

func cloneLine(l *ReportLine) ReportLine {
	c := *l
	c.Formats = append([]CellFormat(nil), l.Formats...)
	return c
}

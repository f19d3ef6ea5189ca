package report

import (
	"strconv"
	"strings"
	"time"
)

// MaxColumns is the number of generic cell slots a report can address.
const MaxColumns = 30

// Kind tells how template lines map to stored value rows.
type Kind string

const (
	// KindAccounting binds each template line to exactly one value row.
	KindAccounting Kind = "Accounting"
	// KindRepeat repeats the single template line once per value row.
	KindRepeat Kind = "Repeat"
)

// Variant tags reports whose summaries need a bespoke rendering.
type Variant string

const (
	VariantStandard           Variant = "standard"
	VariantContractsInTransit Variant = "contracts_in_transit"
	VariantFIManager          Variant = "fi_manager"
	VariantModels             Variant = "models"
	VariantProducts           Variant = "products"
	VariantSalesperson        Variant = "salesperson"
)

// SummaryStyle selects the summary rendering strategy.
type SummaryStyle string

const (
	StyleBubble            SummaryStyle = "bubble"
	StyleQuad              SummaryStyle = "quad"
	StyleClassic           SummaryStyle = "classic"
	StyleDual              SummaryStyle = "dual"
	StyleClassicSelectable SummaryStyle = "classic_selectable"
	StylePersonsList       SummaryStyle = "persons_list"
	StyleCard              SummaryStyle = "card"
	StyleTarget            SummaryStyle = "target"
	StyleGraphicSelectable SummaryStyle = "graphic_selectable"
)

// CalcMode refines how a summary reduces its rows.
type CalcMode string

const (
	CalcModeNone          CalcMode = ""
	CalcModeCountNonEmpty CalcMode = "count_non_empty"
	CalcModeTopBottom     CalcMode = "top_bottom"
)

// Line style tags with rendering meaning.
const (
	LineStyleTitle = "Title"
	LineStyleTotal = "Total"
	LineStyleFinal = "final"
)

// Report is a report definition. Columns holds the semantic names of the
// generic cell slots in slot order.
type Report struct {
	ID              int64
	ClientID        *int64
	Name            string
	Description     string
	Kind            Kind
	Variant         Variant
	SplitByStore    bool
	ColumnsUsed     int
	AggrByColumnIdx int
	SummaryStyle    SummaryStyle
	SubSectionID    int64
	Order           int
	Style           string
	Visible         bool
	Active          bool
	Columns         []string
	View            *View
}

// View carries front-end presentation metadata attached to a report.
type View struct {
	ViewID       string
	Where        string
	States       string
	MessageBoard string
}

// HeaderColumns returns the names of the slots in use.
func (r *Report) HeaderColumns() []string {
	n := r.ColumnsUsed
	if n > len(r.Columns) {
		n = len(r.Columns)
	}
	out := make([]string, n)
	copy(out, r.Columns[:n])
	return out
}

// VisibleTo reports whether the client may read the report. Shared base
// templates (nil client) are visible to everyone.
func (r *Report) VisibleTo(clientID int64) bool {
	return r.ClientID == nil || *r.ClientID == clientID
}

// OwnedBy reports whether the report belongs to exactly this client.
func (r *Report) OwnedBy(clientID int64) bool {
	return r.ClientID != nil && *r.ClientID == clientID
}

// Validate checks the structural invariants of the definition.
func (r *Report) Validate() error {
	if r.ColumnsUsed < 0 || r.ColumnsUsed > MaxColumns {
		return errColumnsUsed(r.ColumnsUsed)
	}
	if r.ColumnsUsed > len(r.Columns) {
		return errColumnsUsed(r.ColumnsUsed)
	}
	return nil
}

// ReportLine is an ordered row template of a report.
type ReportLine struct {
	ID        int64
	ReportID  int64
	Order     int
	Name      string
	NameStyle string
	Style     string
	Formats   []CellFormat
	KeyLine   bool
	Visible   bool
	Drillable bool
	Active    bool
}

// IsTitle reports whether the line is a section heading without values.
func (l *ReportLine) IsTitle() bool {
	return l.Style == LineStyleTitle
}

// Format returns the format of slot i (0-based), cycling over the
// formats so that store-expanded slots reuse the base column format.
func (l *ReportLine) Format(i int) CellFormat {
	if len(l.Formats) == 0 {
		return FormatText
	}
	return l.Formats[i%len(l.Formats)]
}

// LineValue is one stored fact row.
type LineValue struct {
	ID              int64
	ReportLineID    int64
	ReportID        int64
	ClientID        int64
	StoreID         *int64
	Period          string
	Cells           []string
	SplitByStoreIDs string
	CreatedOn       time.Time
	Active          bool
}

// Cell returns slot i (0-based) or "" when the row is shorter.
func (v *LineValue) Cell(i int) string {
	if i < 0 || i >= len(v.Cells) {
		return ""
	}
	return v.Cells[i]
}

// SplitStores parses SplitByStoreIDs. Malformed entries are skipped.
func (v *LineValue) SplitStores() []int64 {
	if strings.TrimSpace(v.SplitByStoreIDs) == "" {
		return nil
	}
	parts := strings.Split(v.SplitByStoreIDs, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Summary configures a KPI widget attached to a report.
type Summary struct {
	ID            int64
	ReportID      int64
	Name          string
	Style         SummaryStyle
	LinesQty      int
	TargetColumns string
	ColumnTitles  string
	CalcMode      CalcMode
	Position      string
	Order         int
	Main          bool
	Active        bool
}

// DefaultSummary is used when a report has no main summary configured.
func DefaultSummary(r *Report, linesQty int) *Summary {
	return &Summary{
		ReportID:      r.ID,
		Style:         r.SummaryStyle,
		LinesQty:      linesQty,
		TargetColumns: "1",
		Main:          true,
		Active:        true,
	}
}

// TargetSlots parses TargetColumns into 0-based slot indexes.
func (s *Summary) TargetSlots() []int {
	parts := strings.Split(s.TargetColumns, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			continue
		}
		out = append(out, n-1)
	}
	return out
}

// Titles splits the comma-separated column titles.
func (s *Summary) Titles() []string {
	return strings.Split(s.ColumnTitles, ",")
}

// Store is a physical dealership location.
type Store struct {
	ID       int64
	ClientID int64
	Name     string
	AbbrName string
	Active   bool
}

// Client is a dealer group.
type Client struct {
	ID             int64
	Name           string
	LastUpdateDate *time.Time
	YearsBackward  int
}

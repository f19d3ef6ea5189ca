package report

import (
	"context"
	"time"
)

// ReportConfigRepository reads report configuration. Only active rows are
// returned by any method. Single-row lookups return shared.ErrNotFound when
// nothing matches.
type ReportConfigRepository interface {
	// FindReport returns a report visible to the client (owned or shared).
	FindReport(ctx context.Context, reportID, clientID int64) (*Report, error)
	// FindClientReport returns a report owned by the client.
	FindClientReport(ctx context.Context, reportID, clientID int64) (*Report, error)
	// ListLines returns the report's lines ordered by Order.
	ListLines(ctx context.Context, reportID int64) ([]ReportLine, error)
	// ListKeyLines returns the key lines ordered by Order.
	ListKeyLines(ctx context.Context, reportID int64) ([]ReportLine, error)
	// FirstLine returns the first line of the report by Order.
	FirstLine(ctx context.Context, reportID int64) (*ReportLine, error)
	// FindLine returns a line by its id.
	FindLine(ctx context.Context, lineID int64) (*ReportLine, error)
	// FindLineByName returns the first line with exactly this name.
	FindLineByName(ctx context.Context, name string) (*ReportLine, error)
	// ListSummaries returns summaries ordered by Order.
	ListSummaries(ctx context.Context, reportID int64, main bool) ([]Summary, error)
	// MainSummary returns the main summary, or nil when none is configured.
	MainSummary(ctx context.Context, reportID int64) (*Summary, error)
	// ListBySubSection returns client and shared reports of a subsection.
	ListBySubSection(ctx context.Context, clientID, subSectionID int64) ([]Report, error)
}

// ValueFilter selects stored fact rows. Zero-valued fields do not filter.
type ValueFilter struct {
	ReportID  int64
	ClientID  int64
	LineIDs   []int64
	StoreIDs  []int64
	Periods   []string
	CreatedOn *DateBounds
	Limit     int
	// OrderByLine sorts by the line order before the row id.
	OrderByLine bool
}

// DateBounds is an inclusive time window.
type DateBounds struct {
	From time.Time
	To   time.Time
}

// LineValueRepository reads stored fact rows. Only active rows are returned.
type LineValueRepository interface {
	// Find returns matching rows in fetch order (row id, or line order then row id).
	Find(ctx context.Context, filter ValueFilter) ([]LineValue, error)
	// EarliestPeriod returns the smallest period stored for the report and
	// store, or "" when there is none.
	EarliestPeriod(ctx context.Context, reportID, storeID int64) (string, error)
}

// StoreDirectory reads clients and stores.
type StoreDirectory interface {
	ActiveStores(ctx context.Context, clientID int64) ([]Store, error)
	StoresByIDs(ctx context.Context, clientID int64, ids []int64) ([]Store, error)
	// FindClient returns shared.ErrNotFound for an unknown client.
	FindClient(ctx context.Context, clientID int64) (*Client, error)
}

package commands

import (
	"context"
	"fmt"
	"time"

	reportapp "github.com/dealer/reporting/internal/application/report"
	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/interfaces/cli/export"

	"github.com/spf13/cobra"
)

// Engine is the part of the report engine the CLI drives.
type Engine interface {
	Render(ctx context.Context, req reportapp.ReportRequest) (*reportapp.ReportDetailResponse, error)
	RenderSummary(ctx context.Context, req reportapp.SummaryRequest) (*reportapp.ReportSummaryResponse, error)
	ListReports(ctx context.Context, clientID, subSectionID int64) ([]reportapp.ReportListItem, error)
}

// EngineFactory builds the engine once a command actually runs.
type EngineFactory func(ctx context.Context) (Engine, error)

// Globals are the persistent flags shared by every subcommand.
type Globals struct {
	ClientID int64
	Format   string
	Timeout  time.Duration
}

func (g *Globals) prepare(reporter *export.Reporter) error {
	if g.ClientID <= 0 {
		return fmt.Errorf("--client must be a positive client id")
	}
	format, err := export.ParseFormat(g.Format)
	if err != nil {
		return err
	}
	reporter.SetFormat(format)
	return nil
}

func (g *Globals) deadline() (context.Context, context.CancelFunc) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

type RenderCmd struct {
	globals  *Globals
	engine   EngineFactory
	reporter *export.Reporter

	reportID int64
	storeIDs []int64
	periods  []string
	byTrend  bool
	target   string
}

func NewRenderCmd(globals *Globals, engine EngineFactory, reporter *export.Reporter) *cobra.Command {
	rc := &RenderCmd{globals: globals, engine: engine, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a report grid",
		Example: `  reportctl render --client 7 --report 12 --store 3 --period 2024-05
  reportctl render --client 7 --report 12 --store 3 --period 2024-01 --period 2024-05 --trend`,
		RunE: rc.run,
	}

	cmd.Flags().Int64Var(&rc.reportID, "report", 0, "Report id")
	cmd.Flags().Int64SliceVar(&rc.storeIDs, "store", nil, "Store id (repeatable)")
	cmd.Flags().StringArrayVar(&rc.periods, "period", nil, "Period YYYY, YYYY-MM or YYYY-MM-DD (repeatable)")
	cmd.Flags().BoolVar(&rc.byTrend, "trend", false, "Render a month-by-month trend")
	cmd.Flags().StringVar(&rc.target, "target", "", "Variance target: PriorMonth, SameMonthLastYear or ThreeMonthsAverage")

	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func (rc *RenderCmd) run(cmd *cobra.Command, args []string) error {
	if err := rc.globals.prepare(rc.reporter); err != nil {
		return err
	}
	if len(rc.periods) == 0 && !rc.byTrend {
		return fmt.Errorf("--period is required unless --trend is set")
	}
	target, err := report.ParseTarget(rc.target)
	if err != nil {
		return err
	}

	ctx, cancel := rc.globals.deadline()
	defer cancel()

	engine, err := rc.engine(ctx)
	if err != nil {
		return err
	}
	detail, err := engine.Render(ctx, reportapp.ReportRequest{
		ReportID: rc.reportID,
		ClientID: rc.globals.ClientID,
		StoreIDs: rc.storeIDs,
		Periods:  rc.periods,
		ByTrend:  rc.byTrend,
		Target:   target,
	})
	if err != nil {
		return fmt.Errorf("failed to render report %d: %w", rc.reportID, err)
	}
	return rc.reporter.Detail(detail)
}

type SummaryCmd struct {
	globals  *Globals
	engine   EngineFactory
	reporter *export.Reporter

	reportID int64
	storeID  int64
	period   string
	target   string
	options  []int
}

func NewSummaryCmd(globals *Globals, engine EngineFactory, reporter *export.Reporter) *cobra.Command {
	sc := &SummaryCmd{globals: globals, engine: engine, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Render a report's KPI summary",
		RunE:  sc.run,
	}

	cmd.Flags().Int64Var(&sc.reportID, "report", 0, "Report id")
	cmd.Flags().Int64Var(&sc.storeID, "store", 0, "Store id")
	cmd.Flags().StringVar(&sc.period, "period", "", "Period YYYY-MM")
	cmd.Flags().StringVar(&sc.target, "target", "", "Variance target: PriorMonth, SameMonthLastYear or ThreeMonthsAverage")
	cmd.Flags().IntSliceVar(&sc.options, "option", nil, "Selected option index for selectable summaries (repeatable)")

	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("store")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}

func (sc *SummaryCmd) run(cmd *cobra.Command, args []string) error {
	if err := sc.globals.prepare(sc.reporter); err != nil {
		return err
	}
	target, err := report.ParseTarget(sc.target)
	if err != nil {
		return err
	}

	ctx, cancel := sc.globals.deadline()
	defer cancel()

	engine, err := sc.engine(ctx)
	if err != nil {
		return err
	}
	summary, err := engine.RenderSummary(ctx, reportapp.SummaryRequest{
		ReportID:        sc.reportID,
		ClientID:        sc.globals.ClientID,
		StoreID:         sc.storeID,
		Period:          sc.period,
		Target:          target,
		SelectedOptions: sc.options,
	})
	if err != nil {
		return fmt.Errorf("failed to render summary of report %d: %w", sc.reportID, err)
	}
	return sc.reporter.Summary(summary)
}

type ListCmd struct {
	globals  *Globals
	engine   EngineFactory
	reporter *export.Reporter

	subSectionID int64
}

func NewListCmd(globals *Globals, engine EngineFactory, reporter *export.Reporter) *cobra.Command {
	lc := &ListCmd{globals: globals, engine: engine, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the visible reports of a sub-section",
		RunE:  lc.run,
	}

	cmd.Flags().Int64Var(&lc.subSectionID, "sub-section", 0, "Sub-section id")
	_ = cmd.MarkFlagRequired("sub-section")

	return cmd
}

func (lc *ListCmd) run(cmd *cobra.Command, args []string) error {
	if err := lc.globals.prepare(lc.reporter); err != nil {
		return err
	}

	ctx, cancel := lc.globals.deadline()
	defer cancel()

	engine, err := lc.engine(ctx)
	if err != nil {
		return err
	}
	items, err := engine.ListReports(ctx, lc.globals.ClientID, lc.subSectionID)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	return lc.reporter.List(items)
}

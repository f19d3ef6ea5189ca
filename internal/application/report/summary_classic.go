package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
)

// renderClassic renders classic and dual summaries.
func (e *Engine) renderClassic(ctx context.Context, sc *summaryContext) error {
	sc.headerFromTitles()
	if sc.report.Kind == report.KindAccounting {
		return e.renderClassicAccounting(ctx, sc)
	}
	return e.renderClassicRepeat(ctx, sc)
}

// renderClassicAccounting compares every key line against the target period
// and emits value and variance pairs per target column.
func (e *Engine) renderClassicAccounting(ctx context.Context, sc *summaryContext) error {
	compare, err := report.ComparisonPeriod(sc.period, sc.target)
	if err != nil {
		return err
	}
	keyLines, err := e.configs.ListKeyLines(ctx, sc.report.ID)
	if err != nil {
		return fmt.Errorf("failed to list key lines: %w", err)
	}

	names := make([]string, len(keyLines))
	lineIDs := make([]int64, len(keyLines))
	for i := range keyLines {
		names[i] = keyLines[i].Name
		lineIDs[i] = keyLines[i].ID
	}
	sc.resp.ReportConfig.Columns = names
	if len(keyLines) == 0 {
		return nil
	}

	current, err := e.values.Find(ctx, report.ValueFilter{
		ReportID:    sc.report.ID,
		ClientID:    sc.clientID,
		LineIDs:     lineIDs,
		StoreIDs:    []int64{sc.storeID},
		Periods:     []string{sc.period},
		Limit:       len(keyLines),
		OrderByLine: true,
	})
	if err != nil {
		return fmt.Errorf("failed to load current values: %w", err)
	}
	prior, err := e.values.Find(ctx, report.ValueFilter{
		ReportID:    sc.report.ID,
		ClientID:    sc.clientID,
		LineIDs:     lineIDs,
		StoreIDs:    []int64{sc.storeID},
		Periods:     []string{compare},
		Limit:       len(keyLines),
		OrderByLine: true,
	})
	if err != nil {
		return fmt.Errorf("failed to load comparison values: %w", err)
	}
	priorByLine := make(map[int64]*report.LineValue, len(prior))
	for i := range prior {
		if _, ok := priorByLine[prior[i].ReportLineID]; !ok {
			priorByLine[prior[i].ReportLineID] = &prior[i]
		}
	}
	nameByLine := make(map[int64]string, len(keyLines))
	for i := range keyLines {
		nameByLine[keyLines[i].ID] = keyLines[i].Name
	}

	slots := sc.summary.TargetSlots()
	for i := range current {
		v := &current[i]
		values := make([]string, 0, 2*len(slots))
		for _, slot := range slots {
			cell := v.Cell(slot)
			before := "0"
			if p, ok := priorByLine[v.ReportLineID]; ok {
				before = p.Cell(slot)
			}
			values = append(values, cell, report.VarianceOf(cell, before))
		}
		line := valuesLine(values...)
		line.Name = nameByLine[v.ReportLineID]
		sc.resp.ReportLines = append(sc.resp.ReportLines, line)
	}
	return nil
}

func (e *Engine) renderClassicRepeat(ctx context.Context, sc *summaryContext) error {
	template, err := e.configs.FirstLine(ctx, sc.report.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load report line: %w", err)
	}

	filter := report.ValueFilter{
		ReportID: sc.report.ID,
		ClientID: sc.clientID,
		LineIDs:  []int64{template.ID},
		StoreIDs: []int64{sc.storeID},
		Periods:  []string{sc.period},
	}
	slots := sc.summary.TargetSlots()

	if sc.summary.CalcMode == report.CalcModeCountNonEmpty {
		values, err := e.values.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load values: %w", err)
		}
		counts := make([]string, len(slots))
		for i, slot := range slots {
			n := 0
			for j := range values {
				if strings.TrimSpace(values[j].Cell(slot)) != "" {
					n++
				}
			}
			counts[i] = strconv.Itoa(n)
		}
		sc.resp.ReportLines = append(sc.resp.ReportLines, valuesLine(counts...))
		return nil
	}

	filter.Limit = sc.summary.LinesQty
	values, err := e.values.Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load values: %w", err)
	}

	// F&I manager rows are headed by the person in the first target column.
	named := sc.report.Variant == report.VariantFIManager && len(slots) > 0
	if named {
		header := make([]string, len(values))
		for i := range values {
			header[i] = values[i].Cell(slots[0])
		}
		sc.resp.ReportConfig.Columns = header
		slots = slots[1:]
	}
	for i := range values {
		cells := make([]string, len(slots))
		for j, slot := range slots {
			cells[j] = values[i].Cell(slot)
		}
		line := valuesLine(cells...)
		if named {
			line.Name = sc.resp.ReportConfig.Columns[i]
		}
		sc.resp.ReportLines = append(sc.resp.ReportLines, line)
	}
	return nil
}

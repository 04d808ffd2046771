package analytics

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// Reporter runs aggregations and writes their artifacts.
//
// A failing aggregation is logged and recorded; the next one still runs.
type Reporter struct {
	runner     pgdash.QueryRunner
	charts     pgdash.ChartEmitter
	sheets     pgdash.SpreadsheetEmitter
	logger     pgdash.Logger
	chartsDir  string
	exportsDir string
}

// NewReporter creates a reporter writing charts under chartsDir and
// workbooks under exportsDir. Panics if any dependency is nil.
func NewReporter(runner pgdash.QueryRunner, charts pgdash.ChartEmitter, sheets pgdash.SpreadsheetEmitter, logger pgdash.Logger, chartsDir, exportsDir string) *Reporter {
	if runner == nil {
		panic("runner cannot be nil")
	}
	if charts == nil {
		panic("chart emitter cannot be nil")
	}
	if sheets == nil {
		panic("spreadsheet emitter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Reporter{
		runner:     runner,
		charts:     charts,
		sheets:     sheets,
		logger:     logger,
		chartsDir:  chartsDir,
		exportsDir: exportsDir,
	}
}

// Run executes the aggregations in order. It returns an error only when ctx
// is cancelled, together with the outcomes recorded so far.
func (r *Reporter) Run(ctx context.Context, aggregations []Aggregation) (*pgdash.ReportSummary, error) {
	summary := &pgdash.ReportSummary{}

	for _, agg := range aggregations {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("report interrupted before %s: %w", agg.Name, err)
		}

		outcome := r.runOne(ctx, agg)
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch {
		case outcome.Err != nil:
			r.logger.Error("Aggregation %s failed: %v", agg.Name, outcome.Err)
		case outcome.Skipped:
			r.logger.Info("Skipping %s: no rows", agg.Name)
		default:
			r.logger.Info("Wrote %s (%d rows)", outcome.Path, outcome.RowCount)
		}
	}

	r.logger.Verbose("Produced %d of %d artifact(s)", summary.Produced(), len(summary.Outcomes))
	return summary, nil
}

func (r *Reporter) runOne(ctx context.Context, agg Aggregation) pgdash.ArtifactOutcome {
	if agg.IsWorkbook() {
		return r.runWorkbook(ctx, agg)
	}
	return r.runChart(ctx, agg)
}

func (r *Reporter) runChart(ctx context.Context, agg Aggregation) pgdash.ArtifactOutcome {
	outcome := pgdash.ArtifactOutcome{Name: agg.Name, Path: filepath.Join(r.chartsDir, agg.Artifact)}

	if len(agg.Queries) != 1 {
		outcome.Err = fmt.Errorf("chart aggregation %s needs exactly one query, has %d", agg.Name, len(agg.Queries))
		return outcome
	}

	result, _, err := r.runner.Run(ctx, agg.Queries[0])
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if agg.Shape != nil {
		result, err = agg.Shape(result)
		if err != nil {
			outcome.Err = fmt.Errorf("failed to shape %s: %w", agg.Name, err)
			return outcome
		}
	}

	outcome.RowCount = result.RowCount()
	if outcome.RowCount == 0 {
		outcome.Skipped = true
		return outcome
	}

	if err := r.charts.EmitChart(*agg.Chart, result, outcome.Path); err != nil {
		outcome.Err = fmt.Errorf("failed to render %s: %w", outcome.Path, err)
	}
	return outcome
}

func (r *Reporter) runWorkbook(ctx context.Context, agg Aggregation) pgdash.ArtifactOutcome {
	outcome := pgdash.ArtifactOutcome{Name: agg.Name, Path: filepath.Join(r.exportsDir, agg.Artifact)}

	sheets := make([]pgdash.Sheet, 0, len(agg.Queries))
	for _, def := range agg.Queries {
		result, _, err := r.runner.Run(ctx, def)
		if err != nil {
			outcome.Err = err
			return outcome
		}
		if agg.Shape != nil {
			if result, err = agg.Shape(result); err != nil {
				outcome.Err = fmt.Errorf("failed to shape %s: %w", def.Name, err)
				return outcome
			}
		}
		outcome.RowCount += result.RowCount()
		sheets = append(sheets, pgdash.Sheet{Name: def.Name, Table: result})
	}

	if err := r.sheets.EmitWorkbook(sheets, outcome.Path); err != nil {
		outcome.Err = fmt.Errorf("failed to write %s: %w", outcome.Path, err)
	}
	return outcome
}

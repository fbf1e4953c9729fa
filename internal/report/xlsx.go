package report

import (
	"fmt"
	"time"

	"github.com/phrazzld/tactics-srs/internal/store"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary   = "Summary"
	SheetDue       = "Due"
	SheetMisses    = "Missed 30d"
	SheetRecent    = "Recent"
	SheetThemes90  = "Themes 90d"
	SheetThemesAll = "Themes"
)

// defaultSheet is the sheet a new workbook starts with.
const defaultSheet = "Sheet1"

type sheet struct {
	name   string
	header []any
	rows   [][]any
	widths []float64
}

// WriteXLSX writes the report tables as sheets of an XLSX workbook at path.
func WriteXLSX(path string, r *Report, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets(r, loc) {
		if i == 0 {
			f.SetSheetName(defaultSheet, s.name)
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", s.name, err)
		}
		if err := fillSheet(f, s, bold); err != nil {
			return fmt.Errorf("failed to fill sheet %q: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func fillSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}

	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func sheets(r *Report, loc *time.Location) []sheet {
	local := func(t time.Time) string { return formatLocal(t, loc) }

	summary := sheet{
		name:   SheetSummary,
		header: []any{"Metric", "Attempts", "Wins", "Accuracy"},
		widths: []float64{24, 10, 10, 10},
	}
	for _, k := range []struct {
		label string
		s     store.Summary
	}{
		{"All time", r.KPIs.AllTime},
		{"Last 7 days", r.KPIs.Last7},
		{"Last 30 days", r.KPIs.Last30},
	} {
		var acc any = ""
		if k.s.Attempts > 0 {
			acc = roundShare(k.s.Accuracy())
		}
		summary.rows = append(summary.rows, []any{k.label, k.s.Attempts, k.s.Wins, acc})
	}

	due := sheet{
		name:   SheetDue,
		header: []any{"Bucket", "Puzzle", "URL", "Themes", "Rating", "Attempts", "Last Attempt", "Due", "Interval", "Streak"},
		widths: []float64{12, 10, 36, 40, 8, 9, 20, 12, 9, 8},
	}
	for _, b := range r.Buckets {
		for _, it := range b.Items {
			due.rows = append(due.rows, []any{
				b.Title, it.PuzzleID, it.URL(), Labels(it.Themes, 0), intOrBlank(it.Rating),
				it.Attempts, local(it.LastAttemptAt), it.DueDate.String(), it.IntervalDays, it.SuccessStreak,
			})
		}
	}

	misses := sheet{
		name:   SheetMisses,
		header: []any{"Puzzle", "URL", "Themes", "Rating", "Attempts", "When"},
		widths: []float64{10, 36, 40, 8, 9, 20},
	}
	for _, a := range r.Misses {
		misses.rows = append(misses.rows, []any{
			a.PuzzleID, a.URL(), Labels(a.Themes, 0), intOrBlank(a.Rating), a.TotalAttempts, local(a.AttemptedAt),
		})
	}

	recent := sheet{
		name:   SheetRecent,
		header: []any{"Puzzle", "URL", "Themes", "Result", "When", "Source"},
		widths: []float64{10, 36, 40, 8, 20, 9},
	}
	for _, a := range r.Recent {
		recent.rows = append(recent.rows, []any{
			a.PuzzleID, a.URL(), Labels(a.Themes, 0), string(a.Result), local(a.AttemptedAt), a.Source,
		})
	}

	return []sheet{
		summary,
		due,
		misses,
		recent,
		themeSheet(SheetThemes90, r.Themes90),
		themeSheet(SheetThemesAll, r.ThemesAll),
	}
}

func themeSheet(name string, stats []ThemeStat) sheet {
	s := sheet{
		name:   name,
		header: []any{"Theme", "Label", "Attempts", "Wins", "Accuracy"},
		widths: []float64{20, 24, 10, 10, 10},
	}
	for _, t := range stats {
		s.rows = append(s.rows, []any{t.Theme, t.Label(), t.Attempts, t.Wins, roundShare(t.Accuracy())})
	}
	return s
}

// roundShare turns a share in [0,1] into a percentage with one decimal.
func roundShare(share float64) float64 {
	return float64(int(share*1000+0.5)) / 10
}

func intOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

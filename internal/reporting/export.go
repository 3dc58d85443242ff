package reporting

import (
	"fmt"
	"io"

	"github.com/hkr-team/assessment-engine/internal/models"
	"github.com/xuri/excelize/v2"
)

// ScoreReport bundles everything the operator-facing XLSX export needs.
type ScoreReport struct {
	Assessment *models.Assessment
	Candidate  models.Candidate
	Score      int
	Passed     *bool
	Percentile int
	Peers      models.PeerStats
	Breakdown  []models.SectionScore
	Duration   string
}

// WriteXLSX renders the report workbook: a summary sheet and a
// per-section breakdown sheet.
func WriteXLSX(w io.Writer, report *ScoreReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	passed := "n/a"
	if report.Passed != nil {
		if *report.Passed {
			passed = "yes"
		} else {
			passed = "no"
		}
	}

	rows := [][]any{
		{"Assessment", report.Assessment.Title},
		{"Role", report.Assessment.Role},
		{"Candidate", report.Candidate.Name},
		{"Email", report.Candidate.Email},
		{"Score", fmt.Sprintf("%d%%", report.Score)},
		{"Passed", passed},
		{"Percentile", fmt.Sprintf("%d (%s)", report.Percentile, PercentileLabel(report.Percentile))},
		{"Peer average", fmt.Sprintf("%d%%", report.Peers.Average)},
		{"Vs average", fmt.Sprintf("%+d%%", ComparisonDelta(report.Score, report.Peers.Average))},
		{"Candidates compared", report.Peers.Count},
		{"Duration", report.Duration},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return err
		}
	}

	const sections = "Sections"
	if _, err := f.NewSheet(sections); err != nil {
		return fmt.Errorf("failed to create sections sheet: %w", err)
	}
	header := []any{"Section", "Earned", "Possible", "Percent", "Correct", "Questions"}
	if err := f.SetSheetRow(sections, "A1", &header); err != nil {
		return err
	}
	for i, sec := range report.Breakdown {
		row := []any{sec.Title, sec.Earned, sec.Possible, sec.Percent, sec.Correct, sec.Total}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sections, cell, &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

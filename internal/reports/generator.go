package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/jung-kurt/gofpdf"
)

// pdfTableDays caps the per-day table so a long range still fits one page.
const pdfTableDays = 14

// Generator renders daily progress rows into report files.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(format, from, to string, rows []storage.DailyProgress) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(from, to, rows)
	case FormatCSV:
		return g.generateCSV(rows)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Generator) generateCSV(rows []storage.DailyProgress) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "calories_intake", "protein_g", "carbs_g", "fats_g", "calories_burned", "steps", "water_ml", "goal_status"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{
			row.Date,
			fmt.Sprintf("%.1f", row.CaloriesIntake),
			fmt.Sprintf("%.1f", row.ProteinIntake),
			fmt.Sprintf("%.1f", row.CarbsIntake),
			fmt.Sprintf("%.1f", row.FatsIntake),
			fmt.Sprintf("%.1f", row.CaloriesBurned),
			strconv.Itoa(row.StepsCount),
			strconv.Itoa(row.WaterIntakeMl),
			row.GoalStatus,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) generatePDF(from, to string, rows []storage.DailyProgress) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 16)
	pdf.AddPage()

	pdf.Cell(0, 10, "Nutrition and Activity Report")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", from, to))
	pdf.Ln(12)

	summary := summarize(rows)

	pdf.SetFont("Arial", "", 14)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Days with data: %d", summary.Days))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total intake: %.0f kcal", summary.TotalIntake))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total burned: %.0f kcal", summary.TotalBurned))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average intake per day: %s", formatAvg(summary.AvgIntake, summary.Days)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average burned per day: %s", formatAvg(summary.AvgBurned, summary.Days)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total steps: %d", summary.TotalSteps))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total water: %.1f L", float64(summary.TotalWaterMl)/1000))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 14)
	pdf.Cell(0, 8, "Recent days")
	pdf.Ln(8)

	g.drawDaysTable(pdf, rows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) drawDaysTable(pdf *gofpdf.Fpdf, rows []storage.DailyProgress) {
	recent := rows
	if len(recent) > pdfTableDays {
		recent = recent[len(recent)-pdfTableDays:]
	}

	pdf.SetFont("Arial", "", 8)

	pdf.CellFormat(25, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Intake", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Burned", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Protein", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Carbs", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Fats", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Steps", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Water", "1", 1, "C", false, 0, "")

	for _, row := range recent {
		pdf.CellFormat(25, 6, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%.0f", row.CaloriesIntake), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%.0f", row.CaloriesBurned), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.0f", row.ProteinIntake), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.0f", row.CarbsIntake), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.0f", row.FatsIntake), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, strconv.Itoa(row.StepsCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.1fL", float64(row.WaterIntakeMl)/1000), "1", 1, "C", false, 0, "")
	}
}

type summaryStats struct {
	Days         int
	TotalIntake  float64
	TotalBurned  float64
	AvgIntake    float64
	AvgBurned    float64
	TotalSteps   int
	TotalWaterMl int
}

func summarize(rows []storage.DailyProgress) summaryStats {
	s := summaryStats{Days: len(rows)}
	for _, row := range rows {
		s.TotalIntake += row.CaloriesIntake
		s.TotalBurned += row.CaloriesBurned
		s.TotalSteps += row.StepsCount
		s.TotalWaterMl += row.WaterIntakeMl
	}
	if s.Days > 0 {
		s.AvgIntake = s.TotalIntake / float64(s.Days)
		s.AvgBurned = s.TotalBurned / float64(s.Days)
	}
	return s
}

func formatAvg(avg float64, days int) string {
	if days == 0 {
		return "no data"
	}
	return fmt.Sprintf("%.0f kcal", avg)
}

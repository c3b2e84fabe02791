// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// CSV EXPORT
// =============================================================================

// csvHeader matches the export the course staff already feed into
// their spreadsheets; the column names stay in Russian.
var csvHeader = []string{"Студент", "Всего заданий", "Выполнено", "Средний балл"}

// CSVFileName returns the conventional export name for a given day,
// e.g. report_2026-08-29.csv.
func CSVFileName(now time.Time) string {
	return fmt.Sprintf("report_%s.csv", now.Format("2006-01-02"))
}

// XLSXFileName returns the conventional spreadsheet export name.
func XLSXFileName(now time.Time) string {
	return fmt.Sprintf("report_%s.xlsx", now.Format("2006-01-02"))
}

// WriteCSV renders the course report as CSV, one row per student.
func WriteCSV(w io.Writer, report *model.CourseReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, sr := range report.StudentReports {
		row := []string{
			sr.Student.FullName,
			util.IntToString(sr.TotalAssignments),
			util.IntToString(sr.CompletedAssignments),
			util.FormatScore(sr.AverageScore),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the course report to path atomically.
func ExportCSV(path string, report *model.CourseReport) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, report); err != nil {
		return err
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}

// =============================================================================
// XLSX EXPORT
// =============================================================================

const xlsxSheet = "Отчёт"

// BuildXLSX renders the course report as a spreadsheet with a summary
// block on top and one row per student below it.
func BuildXLSX(report *model.CourseReport) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	summary := [][]any{
		{"Студентов", report.TotalStudents},
		{"Всего заданий", report.TotalAssignments},
		{"Средний балл", report.AverageScore},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	headerRow := len(summary) + 2
	header := make([]any, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, fmt.Sprintf("A%d", headerRow), &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(xlsxSheet, headerRow, headerRow, bold)
	}

	for i, sr := range report.StudentReports {
		row := []any{
			sr.Student.FullName,
			sr.TotalAssignments,
			sr.CompletedAssignments,
			sr.AverageScore,
		}
		cell := fmt.Sprintf("A%d", headerRow+1+i)
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write student row: %w", err)
		}
	}

	return f, nil
}

// ExportXLSX writes the course report to path as an xlsx workbook.
func ExportXLSX(path string, report *model.CourseReport) error {
	f, err := BuildXLSX(report)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

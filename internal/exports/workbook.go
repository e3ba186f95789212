package exports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"holiday-backend/internal/holidays"
	"holiday-backend/internal/leave"
)

const (
	// Team sheets carry a banner above the header row.
	bannerRows = 3

	initialHeader = "Initial"
	holidayHeader = "Holiday"

	workloadSheet = "Workload"
	holidaysSheet = "Public Holidays"
)

var workloadColumns = []any{"Initial", "Details", "Effective Workload", "Dates", "Durations"}

// ReadLeave extracts leave entries from the first sheet of an uploaded
// workbook. Each line of a Holiday cell is read on its own; dates without a
// year fall in year.
func ReadLeave(data []byte, year int) ([]leave.Entry, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	headerRow, initialCol, holidayCol, ok := findHeader(rows)
	if !ok {
		return nil, ErrNoHeader
	}

	var out []leave.Entry
	for _, row := range rows[headerRow+1:] {
		initial := strings.TrimSpace(cell(row, initialCol))
		text := strings.TrimSpace(cell(row, holidayCol))
		if initial == "" || text == "" {
			continue
		}
		out = append(out, leave.ExtractCell(text, initial, year)...)
	}
	return out, nil
}

// findHeader looks for the header right under the banner first, then
// anywhere in the sheet.
func findHeader(rows [][]string) (rowIdx, initialCol, holidayCol int, ok bool) {
	if len(rows) > bannerRows {
		if i, h, found := headerColumns(rows[bannerRows]); found {
			return bannerRows, i, h, true
		}
	}
	for idx, row := range rows {
		if i, h, found := headerColumns(row); found {
			return idx, i, h, true
		}
	}
	return 0, 0, 0, false
}

func headerColumns(row []string) (initialCol, holidayCol int, ok bool) {
	initialCol, holidayCol = -1, -1
	for i, v := range row {
		switch {
		case initialCol < 0 && strings.EqualFold(strings.TrimSpace(v), initialHeader):
			initialCol = i
		case holidayCol < 0 && strings.EqualFold(strings.TrimSpace(v), holidayHeader):
			holidayCol = i
		}
	}
	return initialCol, holidayCol, initialCol >= 0 && holidayCol >= 0
}

func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// WriteWorkbook renders the workload rows and the holiday list as xlsx.
func WriteWorkbook(rows []leave.Row, hols []holidays.Holiday) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", workloadSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(holidaysSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, workloadSheet, 1, workloadColumns); err != nil {
		return nil, err
	}
	for i, r := range rows {
		values := []any{r.Initial, r.Details, r.Workload, r.Dates, r.Durations}
		if err := writeRow(f, workloadSheet, i+2, values); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(workloadSheet, "A1", "E1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(workloadSheet, "B", "B", 60); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(workloadSheet, "D", "E", 40); err != nil {
		return nil, err
	}

	if err := writeRow(f, holidaysSheet, 1, []any{"Name", "Date"}); err != nil {
		return nil, err
	}
	for i, h := range hols {
		if err := writeRow(f, holidaysSheet, i+2, []any{h.Name, h.Date}); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(holidaysSheet, "A1", "B1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(holidaysSheet, "A", "A", 30); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	ref, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, ref, &values)
}

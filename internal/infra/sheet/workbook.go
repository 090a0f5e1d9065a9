package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/codease-contact/internal/entity"
)

const (
	SheetName       = "Contact Submissions"
	FileName        = "contact_submissions.xlsx"
	TimestampLayout = "01/02/2006, 03:04:05 PM"
)

var columnWidths = []float64{20, 15, 15, 30, 15, 20, 50}

// openWorkbook loads the workbook at path, or starts a fresh one with the header row
// when the file does not exist yet.
func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return newWorkbook()
	} else if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	idx, err := f.GetSheetIndex(SheetName)
	if err != nil {
		f.Close()
		return nil, err
	}
	if idx == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeHeader(f); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeader(f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeHeader(f *excelize.File) error {
	header := make([]interface{}, len(entity.LogHeader))
	for i, h := range entity.LogHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Border: thinBorder(),
	})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(entity.LogHeader), 1)
	return f.SetCellStyle(SheetName, "A1", last, style)
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "top", Color: "000000", Style: 1},
		{Type: "left", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
}

func appendRow(f *excelize.File, row entity.LogRow) error {
	rows, err := f.GetRows(SheetName)
	if err != nil {
		return err
	}
	next := len(rows) + 1
	if next < 2 {
		next = 2
	}
	return writeRow(f, next, row)
}

func writeRow(f *excelize.File, n int, row entity.LogRow) error {
	values := []interface{}{
		row.TimestampText(TimestampLayout),
		row.Name,
		row.Lastname,
		row.Email,
		row.Phone,
		row.Subject,
		row.Message,
	}
	for _, cell := range row.Extra {
		values = append(values, cell)
	}

	first, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, first, &values); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(values), n)
	return f.SetCellStyle(SheetName, first, last, style)
}

// saveWorkbook rewrites the whole file through a temp file and a rename.
func saveWorkbook(f *excelize.File, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".submissions-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp workbook: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

func readRows(path string) ([]entity.LogRow, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrLogNotFound
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	raw, err := f.GetRows(SheetName)
	if err != nil {
		return nil, err
	}
	if len(raw) <= 1 {
		return nil, entity.ErrLogNotFound
	}

	rows := make([]entity.LogRow, 0, len(raw)-1)
	for _, r := range raw[1:] {
		rows = append(rows, parseRow(r))
	}
	return rows, nil
}

func parseRow(r []string) entity.LogRow {
	n := len(entity.LogHeader)
	cells := make([]string, n)
	copy(cells, r)

	row := entity.LogRow{
		Name:     cells[1],
		Lastname: cells[2],
		Email:    cells[3],
		Phone:    cells[4],
		Subject:  cells[5],
		Message:  cells[6],
	}
	if ts, err := time.ParseInLocation(TimestampLayout, cells[0], time.Local); err == nil {
		row.Timestamp = ts
	} else {
		row.RawTimestamp = cells[0]
	}
	if len(r) > n {
		row.Extra = append([]string(nil), r[n:]...)
	}
	return row
}

// Exporter renders rows into a standalone workbook with the log's header and styling.
type Exporter struct{}

func (Exporter) Export(w io.Writer, rows []entity.LogRow) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	for i, row := range rows {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

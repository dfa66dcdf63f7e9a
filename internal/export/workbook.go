// Package export renders revenue reports and booking history as XLSX workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/roomboard/internal/revenue"
	"github.com/MrJamesThe3rd/roomboard/internal/room"
)

const (
	RevenueSheet = "Revenue"
	HistorySheet = "History"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// newSheet returns a workbook whose only sheet is name, with headers in row 1.
func newSheet(name string, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing headers: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(name, "A1", last, style)
	}

	return f, nil
}

func write(f *excelize.File) ([]byte, error) {
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	return buf.Bytes(), nil
}

// RevenueWorkbook lays out a daily revenue report: one row per record in report order,
// then a total row.
func RevenueWorkbook(report *revenue.Report) ([]byte, error) {
	f, err := newSheet(RevenueSheet, []string{"Room", "Entry No", "Guest", "Price", "Source"})
	if err != nil {
		return nil, err
	}

	row := 2

	for _, rec := range report.Records {
		cell, _ := excelize.CoordinatesToCellName(1, row)

		values := []any{rec.RoomNumber, rec.EntryNumber, rec.GuestName, rec.Price.InexactFloat64(), string(rec.Source)}
		if err := f.SetSheetRow(RevenueSheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", row, err)
		}

		row++
	}

	cell, _ := excelize.CoordinatesToCellName(1, row)

	total := []any{"Total (" + report.Date + ")", "", "", report.Total.InexactFloat64()}
	if err := f.SetSheetRow(RevenueSheet, cell, &total); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing total: %w", err)
	}

	_ = f.SetColWidth(RevenueSheet, "A", "B", 12)
	_ = f.SetColWidth(RevenueSheet, "C", "C", 28)
	_ = f.SetColWidth(RevenueSheet, "D", "E", 12)

	return write(f)
}

// HistoryWorkbook lists completed stays in the given order. Times are shown in loc.
func HistoryWorkbook(records []room.HistoryRecord, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	f, err := newSheet(HistorySheet, []string{"Room", "Guest", "Entry No", "Price", "Check-in", "Check-out"})
	if err != nil {
		return nil, err
	}

	const layout = "2006-01-02 15:04"

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)

		values := []any{
			rec.RoomNumber,
			rec.GuestName,
			rec.EntryNumber,
			rec.Price.InexactFloat64(),
			rec.CheckInTime.In(loc).Format(layout),
			rec.CheckOutTime.In(loc).Format(layout),
		}
		if err := f.SetSheetRow(HistorySheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(HistorySheet, "A", "A", 8)
	_ = f.SetColWidth(HistorySheet, "B", "B", 28)
	_ = f.SetColWidth(HistorySheet, "C", "D", 12)
	_ = f.SetColWidth(HistorySheet, "E", "F", 18)

	return write(f)
}

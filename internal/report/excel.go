// Package report renders the booking ledger as an Excel workbook for
// manager export.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"deskbook/internal/booking"
)

var ledgerColumns = []string{
	"ID", "Date", "Slots", "Customer", "Email", "Phone", "Total", "Booked at",
}

// WriteLedger writes bookings (oldest first) to w as an .xlsx file
// with a single "Bookings" sheet.
func WriteLedger(bookings []booking.Booking, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range ledgerColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	// Bold header row.
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(ledgerColumns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}

	for row, b := range bookings {
		values := []interface{}{
			b.ID,
			b.Date,
			b.SlotList(),
			b.Customer.Name,
			b.Customer.Email,
			b.Customer.Phone,
			b.Total,
			b.BookedAt.Format("2006-01-02 15:04:05"),
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	return f.Write(w)
}

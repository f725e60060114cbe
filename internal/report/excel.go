package report

import (
	"fmt"
	"io"

	"carrent/internal/models"

	"github.com/xuri/excelize/v2"
)

var bookingColumns = []string{
	"ID", "User ID", "Car ID", "Start", "End", "Days", "Total Price", "Created", "Updated",
}

// WriteBookingsXLSX renders a bookings report workbook to w: one sheet, bold
// header row, one row per booking.
func WriteBookingsXLSX(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Bookings"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range bookingColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(bookingColumns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}

	for rowIdx, b := range bookings {
		values := []any{
			b.ID,
			b.UserID,
			b.CarID,
			b.Start.Format(models.DateLayout),
			b.End.Format(models.DateLayout),
			b.Duration,
			b.TotalPrice.StringFixed(2),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
			b.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, val := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

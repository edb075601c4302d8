package infra

import (
	"bytes"
	"fmt"

	"tilerp/internal/dto"

	"github.com/xuri/excelize/v2"
)

const purchaseSheet = "Purchases"

var purchaseHeadings = []string{
	"Purchase ID", "Bill No", "Purchase Date", "Supplier", "Contact",
	"Product ID", "Product", "Batch No", "Qty", "Rate", "Cov", "Total", "Godown",
}

// PurchasesXLSX writes one row per purchase item, with the bill header
// repeated on every row.
func (r *DocumentRenderer) PurchasesXLSX(buf *bytes.Buffer, purchases []dto.PurchaseResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", purchaseSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	for i, h := range purchaseHeadings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(purchaseSheet, cell, h); err != nil {
			return fmt.Errorf("xlsx: heading %s: %w", h, err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(purchaseHeadings), 1)
		_ = f.SetCellStyle(purchaseSheet, "A1", last, style)
	}

	row := 2
	for _, p := range purchases {
		date := ""
		if p.PurchaseDate != nil {
			date = *p.PurchaseDate
		}
		for _, it := range p.Items {
			values := []interface{}{
				p.ID, p.BillNo, date, p.ClientName, p.ClientContact,
				it.ProductID, it.ProductName, it.BatchNo,
				it.Qty.InexactFloat64(), it.Rate.InexactFloat64(), it.Cov.InexactFloat64(),
				it.Total.InexactFloat64(), it.Godown,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(purchaseSheet, cell, v); err != nil {
					return fmt.Errorf("xlsx: row %d: %w", row, err)
				}
			}
			row++
		}
	}

	if err := f.Write(buf); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

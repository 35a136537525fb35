// Package xlsxexport renders invoice listings as Excel workbooks.
package xlsxexport

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"invoicedesk/internal/csvexport"
	"invoicedesk/internal/domain"
)

// SheetName is the worksheet holding the invoice rows.
const SheetName = "Invoices"

// amountColumns are the 1-based columns written as numbers when they parse.
var amountColumns = map[int]bool{5: true, 6: true}

// Build returns an XLSX workbook with a header row followed by one row per invoice.
func Build(invoices []domain.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range csvexport.Columns {
		if err := setCell(f, i+1, 1, h); err != nil {
			return nil, err
		}
	}

	for r := range invoices {
		for c, v := range csvexport.Row(&invoices[r]) {
			col, row := c+1, r+2
			var value interface{} = v
			if amountColumns[col] {
				value = amountValue(v)
			}
			if err := setCell(f, col, row, value); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 12) // date
	_ = f.SetColWidth(SheetName, "B", "C", 28) // vendor, employee
	_ = f.SetColWidth(SheetName, "D", "D", 40) // category
	_ = f.SetColWidth(SheetName, "E", "F", 14) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("xlsx cell %s: %w", cell, err)
	}
	return nil
}

// amountValue returns a float for decimal text and the text itself otherwise.
func amountValue(s string) interface{} {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	f, _ := d.Float64()
	return f
}

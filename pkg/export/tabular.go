package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/codeGROOVE-dev/companyfinder/pkg/record"
)

// SheetName is the worksheet written by the Excel exporter.
const SheetName = "LinkedIn Companies"

func writeJSON(path string, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	})
}

func rows(records []record.Record) [][]string {
	header := record.Header(records)
	out := make([][]string, 0, len(records)+1)
	out = append(out, header)
	for i := range records {
		row := make([]string, len(header))
		for j, k := range header {
			row[j] = records[i].Get(k)
		}
		out = append(out, row)
	}
	return out
}

func writeCSV(path string, records []record.Record) error {
	return writeFile(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.WriteAll(rows(records)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	})
}

func writeExcel(path string, records []record.Record) error {
	wb := excelize.NewFile()
	defer wb.Close() //nolint:errcheck // in-memory workbook

	if err := wb.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range rows(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := wb.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

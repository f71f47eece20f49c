// Package export writes the local ledger to an Excel workbook.
package export

import (
	"fmt"
	"sort"

	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/store"
	"github.com/freedaysapp/ledger_client/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

// WriteExcel dumps all live transactions to an .xlsx file, newest first.
// Tombstoned records never appear; pending ones are flagged in their own
// column so a user can see what has not reached the server yet.
func WriteExcel(local *store.LocalStore, catalog models.CategoryCatalog, path string) (int, error) {
	recs, err := local.List()
	if err != nil {
		return 0, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Date.After(recs[j].Date)
	})

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return 0, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Date", "Type", "Category", "Amount", "Note", "Pending Sync"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, rec := range recs {
		row := i + 2
		category := catalog.Find(rec.Type, rec.CategoryId)
		f.SetCellValue(sheetName, "A"+fmt.Sprint(row), utils.FormatDate(rec.Date))
		f.SetCellValue(sheetName, "B"+fmt.Sprint(row), string(rec.Type))
		f.SetCellValue(sheetName, "C"+fmt.Sprint(row), category.Name)
		f.SetCellValue(sheetName, "D"+fmt.Sprint(row), utils.FormatAmount(rec.Amount))
		f.SetCellValue(sheetName, "E"+fmt.Sprint(row), rec.Note)
		if rec.PendingSync {
			f.SetCellValue(sheetName, "F"+fmt.Sprint(row), "yes")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, err
	}
	return len(recs), nil
}

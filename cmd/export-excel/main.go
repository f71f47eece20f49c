// export-excel dumps the local ledger to an Excel workbook.
//
// Usage:
//   DB_PATH=data/ledger.db go run ./cmd/export-excel [output.xlsx]
package main

import (
	"fmt"
	"os"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/export"
	"github.com/freedaysapp/ledger_client/models"
	"github.com/freedaysapp/ledger_client/store"
)

func main() {
	out := "ledger-export.xlsx"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	cfg := config.Load()
	db, err := config.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	local, err := store.New(db, config.GetLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init store: %v\n", err)
		os.Exit(1)
	}

	n, err := export.WriteExcel(local, models.DefaultCategories(), out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("exported %d transactions to %s\n", n, out)
}

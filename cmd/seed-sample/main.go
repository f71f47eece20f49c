// seed-sample fills an empty ledger with the starter records a fresh install
// shows. Safe to run twice: an already-populated ledger is left alone.
//
// Usage:
//   DB_PATH=data/ledger.db go run ./cmd/seed-sample
package main

import (
	"fmt"
	"os"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/store"
)

func main() {
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

	n, err := local.SeedSampleData()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	if n == 0 {
		fmt.Println("ledger not empty, nothing seeded")
		return
	}
	fmt.Printf("seeded %d sample transactions into %s\n", n, cfg.DatabasePath)
}

// sync-runner logs the client in and replays pending local mutations against
// the backend, then pulls incremental changes. It is the command-line
// equivalent of the app launch sequence.
//
// Usage:
//   API_BASE_URL=... API_LOGIN_CODE=... DB_PATH=data/ledger.db go run ./cmd/sync-runner
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/freedaysapp/ledger_client/config"
	"github.com/freedaysapp/ledger_client/gateway"
	"github.com/freedaysapp/ledger_client/remote"
	"github.com/freedaysapp/ledger_client/session"
	"github.com/freedaysapp/ledger_client/store"
)

func main() {
	cfg := config.Load()
	logger := config.GetLogger()

	db, err := config.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	local, err := store.New(db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init store: %v\n", err)
		os.Exit(1)
	}
	sess, err := session.New(local, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init session: %v\n", err)
		os.Exit(1)
	}

	client := remote.NewClient(cfg, sess)
	client.SetReloginProvider(envCodeProvider)

	ctx := context.Background()
	if !client.AutoLogin(ctx, envCodeProvider) {
		fmt.Fprintln(os.Stderr, "login failed; nothing to sync in local mode. Set API_LOGIN_CODE.")
		os.Exit(2)
	}

	g := gateway.New(sess, client, local)

	result, err := g.SyncPending(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sync complete: %d confirmed, %d failed\n", len(result.Success), len(result.Failed))
	for _, f := range result.Failed {
		fmt.Printf("  still pending %s: %s\n", f.Record.ID, f.Error)
	}

	pulled, err := g.PullIncremental(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "incremental pull failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("incremental pull: %d records applied\n", pulled)

	if len(result.Failed) > 0 {
		os.Exit(3)
	}
}

// envCodeProvider feeds the login flow from the environment; real deployments
// plug a platform credential source in instead.
func envCodeProvider(ctx context.Context) (string, error) {
	code := os.Getenv("API_LOGIN_CODE")
	if code == "" {
		return "", errors.New("API_LOGIN_CODE is not set")
	}
	return code, nil
}

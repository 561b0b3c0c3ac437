package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/buddybudget/wealth_backend/config"
	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/buddybudget/wealth_backend/workflow"
)

func main() {
	userID := flag.String("user-id", "", "Optional: backfill only one owner. If empty, backfills every owner with accounts.")
	currency := flag.String("currency", "", "Optional: snapshot currency for owners without a previous snapshot. Defaults to DEFAULT_CURRENCY.")
	flag.Parse()

	settings := config.LoadSettings()
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	loc, _ := utils.LoadLocation(settings.Timezone)

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
		os.Exit(1)
	}

	// Listing owners spans every user_id.
	ctx := utils.SetSkipOwnerScopeInContext(context.Background(), true)
	ctx = utils.SetUsernameInContext(ctx, "BackfillWealthSnapshot")

	var owners []string
	if id := strings.TrimSpace(*userID); id != "" {
		owners = []string{id}
	} else {
		ids, err := models.ListOwnerIds(db.WithContext(ctx))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list owners: %v\n", err)
			os.Exit(1)
		}
		owners = ids
	}
	if len(owners) == 0 {
		fmt.Fprintln(os.Stderr, "no owners found to backfill")
		return
	}

	fallback := strings.TrimSpace(*currency)
	if fallback == "" {
		fallback = settings.DefaultCurrency
	}

	ledger := workflow.NewLedger(db, config.GetLogger(), loc, settings.DefaultCurrency)
	failed := 0
	for _, uid := range owners {
		ownerCurrency, err := models.LatestSnapshotCurrency(db.WithContext(ctx), uid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "owner %s: failed to read snapshot currency: %v\n", uid, err)
			failed++
			continue
		}
		if ownerCurrency == "" {
			ownerCurrency = fallback
		}

		snapshot, err := ledger.RecomputeSnapshot(ctx, workflow.Owner{UserId: uid, Currency: ownerCurrency})
		if err != nil {
			fmt.Fprintf(os.Stderr, "owner %s backfill failed: %v\n", uid, err)
			failed++
			continue
		}
		fmt.Printf("Backfilled wealth_snapshots user=%s date=%s currency=%s liquidity=%s net_worth=%s\n",
			uid, snapshot.Date.Format(utils.DateLayout), snapshot.Currency, snapshot.LiquidityTotal, snapshot.NetWorth)
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d owners failed\n", failed, len(owners))
		os.Exit(1)
	}
	fmt.Println("Backfill completed.")
}

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/buddybudget/wealth_backend/config"
	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/models/reports"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/buddybudget/wealth_backend/workflow"
	"github.com/google/subcommands"
)

var commands = []subcommands.Command{
	&recomputeSnapshotCmd{},
	&verifyBalancesCmd{},
	&exportSnapshotsCmd{},
}

// openLedger connects using the service configuration.
func openLedger() (*workflow.Ledger, context.Context, error) {
	settings := config.LoadSettings()
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}
	loc, _ := utils.LoadLocation(settings.Timezone)
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		return nil, nil, errors.New("database not initialized")
	}
	ctx := utils.SetSkipOwnerScopeInContext(context.Background(), true)
	ctx = utils.SetUsernameInContext(ctx, "ledgerctl")
	return workflow.NewLedger(db, config.GetLogger(), loc, settings.DefaultCurrency), ctx, nil
}

type recomputeSnapshotCmd struct {
	userId   string
	currency string
}

func (*recomputeSnapshotCmd) Name() string     { return "recompute-snapshot" }
func (*recomputeSnapshotCmd) Synopsis() string { return "recompute today's wealth snapshot for one owner" }
func (*recomputeSnapshotCmd) Usage() string {
	return `ledgerctl recompute-snapshot -user <id> [-currency <code>]

  Re-runs the daily snapshot upsert from live account balances.
`
}

func (c *recomputeSnapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.userId, "user", "", "owner id (required)")
	f.StringVar(&c.currency, "currency", "", "snapshot currency (defaults to the latest snapshot's, then DEFAULT_CURRENCY)")
}

func (c *recomputeSnapshotCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.userId) == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	ledger, ctx, err := openLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	currency := c.currency
	if currency == "" {
		if currency, err = models.LatestSnapshotCurrency(ledger.DB.WithContext(ctx), c.userId); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	snapshot, err := ledger.RecomputeSnapshot(ctx, workflow.Owner{UserId: c.userId, Currency: currency})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s %s liquidity=%s net_worth=%s\n",
		snapshot.Date.Format(utils.DateLayout), snapshot.Currency, snapshot.LiquidityTotal, snapshot.NetWorth)
	return subcommands.ExitSuccess
}

type verifyBalancesCmd struct {
	userId string
}

func (*verifyBalancesCmd) Name() string     { return "verify-balances" }
func (*verifyBalancesCmd) Synopsis() string { return "replay account ledgers and report balance drift" }
func (*verifyBalancesCmd) Usage() string {
	return `ledgerctl verify-balances [-user <id>]

  Replays every live account from its latest opening or adjustment valuation.
  Exits non-zero when any account drifts.
`
}

func (c *verifyBalancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.userId, "user", "", "owner id (defaults to every owner)")
}

func (c *verifyBalancesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, ctx, err := openLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	owners := []string{c.userId}
	if c.userId == "" {
		if owners, err = models.ListOwnerIds(ledger.DB.WithContext(ctx)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tACCOUNT\tNAME\tSTORED\tEXPECTED\tDRIFT")
	drifted := 0
	for _, uid := range owners {
		checks, err := ledger.VerifyBalances(ctx, uid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "owner %s: %v\n", uid, err)
			drifted++
			continue
		}
		for _, check := range checks {
			if check.Consistent() {
				continue
			}
			drifted++
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", uid, check.AccountId, check.Name, check.Stored, check.Expected, check.Drift)
		}
	}
	w.Flush()

	if drifted > 0 {
		return subcommands.ExitFailure
	}
	fmt.Println("all balances consistent")
	return subcommands.ExitSuccess
}

type exportSnapshotsCmd struct {
	userId string
	from   string
	to     string
	out    string
	bucket string
}

func (*exportSnapshotsCmd) Name() string     { return "export-snapshots" }
func (*exportSnapshotsCmd) Synopsis() string { return "export an owner's snapshot history as xlsx" }
func (*exportSnapshotsCmd) Usage() string {
	return `ledgerctl export-snapshots -user <id> [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-o file.xlsx | -bucket <gcs bucket>]

  Writes the workbook to a local file, or uploads it to Cloud Storage when -bucket is set.
`
}

func (c *exportSnapshotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.userId, "user", "", "owner id (required)")
	f.StringVar(&c.from, "from", "", "first day (inclusive)")
	f.StringVar(&c.to, "to", "", "last day (inclusive)")
	f.StringVar(&c.out, "o", "", "output file (defaults to wealth-snapshots-<user>.xlsx)")
	f.StringVar(&c.bucket, "bucket", "", "upload to this Cloud Storage bucket instead of a local file")
}

func (c *exportSnapshotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.userId) == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	var from, to time.Time
	var err error
	if c.from != "" {
		if from, err = utils.ParseDate(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.to != "" {
		if to, err = utils.ParseDate(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -to: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	ledger, ctx, err := openLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	snapshots, err := ledger.ListSnapshots(ctx, c.userId, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var buf bytes.Buffer
	if err := reports.WriteSnapshotWorkbook(&buf, snapshots); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	name := c.out
	if name == "" {
		name = fmt.Sprintf("wealth-snapshots-%s.xlsx", c.userId)
	}
	if c.bucket != "" {
		url, err := utils.UploadToGCS(ctx, c.bucket, name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", &buf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("exported %d snapshots to %s\n", len(snapshots), url)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("exported %d snapshots to %s\n", len(snapshots), name)
	return subcommands.ExitSuccess
}

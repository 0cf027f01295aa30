package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local cache with the remote store",
	Long: `Merges local and remote shifts. Remote shifts win over local ones they
overlap; among equals the earlier shift wins. The result replaces both
stores.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	res, err := a.repo.Reconcile(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	for _, d := range res.Dropped {
		fmt.Printf("  – Dropped:  %s %s %s–%s (overlaps %s)\n",
			d.Shift.Title, d.Shift.Date, d.Shift.StartTime, d.Shift.EndTime, d.ConflictsWith.ID)
	}
	fmt.Printf("%d shift(s) kept, %d dropped.\n", len(res.Shifts), len(res.Dropped))

	switch {
	case a.repo.Remote == nil:
		fmt.Println("No remote store configured; local cache only.")
	case res.RemoteErr != nil:
		fmt.Fprintf(os.Stderr, "Warning: remote store not updated: %v\n", res.RemoteErr)
		os.Exit(2)
	}
	return nil
}

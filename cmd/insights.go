package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftsync/internal/insights"
	"github.com/Tiliavir/shiftsync/internal/model"
)

var (
	insightsGender string
	insightsStored bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show lifestyle insights derived from your shifts",
	Args:  cobra.NoArgs,
	RunE:  runInsights,
}

func init() {
	insightsCmd.Flags().StringVar(&insightsGender, "gender", "", "Set the profile gender used for gender-specific insights")
	insightsCmd.Flags().BoolVar(&insightsStored, "stored", false, "Show the last stored insights instead of regenerating")
}

func runInsights(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	if insightsStored {
		if a.remote == nil {
			fmt.Fprintln(os.Stderr, "--stored needs a remote store (database_url)")
			os.Exit(1)
		}
		list, err := a.remote.ListInsights(ctx, a.cfg.UserID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		printInsights(cmd.OutOrStdout(), list)
		return nil
	}

	shifts, err := a.repo.View(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	profile := model.Profile{UserID: a.cfg.UserID, Timezone: a.cfg.Timezone}
	if a.remote != nil {
		p, err := a.remote.GetProfile(ctx, a.cfg.UserID)
		if err != nil {
			a.logger.Warn("could not load profile", "err", err)
		} else {
			profile = p
		}
	}
	if insightsGender != "" {
		profile.Gender = insightsGender
		if a.remote != nil {
			if err := a.remote.UpsertProfile(ctx, profile); err != nil {
				a.logger.Warn("could not store profile", "err", err)
			}
		}
	}

	list := insights.Generate(shifts, profile, time.Now(), a.loc)
	if a.remote != nil {
		stored, err := a.remote.ReplaceInsights(ctx, a.cfg.UserID, list)
		if err != nil {
			a.logger.Warn("could not store insights", "err", err)
		} else {
			list = stored
		}
	}

	printInsights(cmd.OutOrStdout(), list)
	return nil
}

func printInsights(w io.Writer, list []model.Insight) {
	for i, in := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s] %s (%s)\n", strings.ToUpper(in.Priority), in.Title, in.Type)
		fmt.Fprintf(w, "  %s\n", in.Description)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftsync/internal/calendar"
	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

var (
	daemonOnce      bool
	daemonAheadDays int
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Periodically reconcile stores and push upcoming shifts to Google Calendar",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().BoolVar(&daemonOnce, "once", false, "Run one cycle and exit")
	daemonCmd.Flags().IntVar(&daemonAheadDays, "days", 14, "Push shifts up to this many days ahead")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := mustApp(ctx)
	defer a.Close()

	if daemonOnce {
		if err := syncCycle(ctx, a); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return nil
	}

	var mu sync.Mutex
	c := cron.New(cron.WithLocation(a.loc))
	_, err := c.AddFunc(a.cfg.Daemon.SyncCron, func() {
		if !mu.TryLock() {
			a.logger.Warn("previous sync still running, skipping")
			return
		}
		defer mu.Unlock()
		if err := syncCycle(ctx, a); err != nil {
			a.logger.Error("sync cycle failed", "err", err)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid daemon.sync_cron %q: %v\n", a.cfg.Daemon.SyncCron, err)
		os.Exit(1)
	}

	a.logger.Info("daemon started", "schedule", a.cfg.Daemon.SyncCron, "user", a.cfg.UserID)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	a.logger.Info("daemon stopped")
	return nil
}

// syncCycle reconciles both stores and, when a Google account is connected
// and auto sync is on, pushes upcoming shifts.
func syncCycle(ctx context.Context, a *app) error {
	res, err := a.repo.Reconcile(ctx, a.cfg.UserID)
	if err != nil {
		return err
	}
	a.logger.Info("reconciled", "kept", len(res.Shifts), "dropped", len(res.Dropped))
	if res.RemoteErr != nil {
		a.logger.Warn("remote store not updated", "err", res.RemoteErr)
	}

	if !a.cfg.Calendar.AutoSync {
		return nil
	}
	r, err := a.reconciler(ctx)
	if errors.Is(err, calendar.ErrNotConnected) {
		a.logger.Debug("google calendar not connected, skipping push")
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now().In(a.loc)
	from := timecalc.StartOfDay(now)
	to := timecalc.EndOfDay(now.AddDate(0, 0, daemonAheadDays))
	var pending []model.Shift
	for _, s := range filterRange(res.Shifts, from, to) {
		if !s.SyncedToCalendar {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	out := pushShifts(ctx, a, r, pending)
	a.logger.Info("calendar push", "created", out.created, "present", out.skipped, "duplicates_removed", out.deleted, "errors", out.errors)
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
)

// TwoTier pairs the local cache with the remote store. The merge reducer is
// the only place the two lists are reconciled.
type TwoTier struct {
	Local  Repository
	Remote Repository // nil when no database is configured
	Loc    *time.Location
	Logger *log.Logger
}

// ReconcileResult is the superseding shift list produced by Reconcile.
type ReconcileResult struct {
	Shifts  []model.Shift
	Dropped []schedule.Dropped
	// RemoteErr is set when the remote store could not be read or written;
	// Shifts then reflects the local cache only.
	RemoteErr error
}

// AddResult is the outcome of TwoTier.Add.
type AddResult struct {
	schedule.Insertion
	Stored    model.Shift
	RemoteErr error
}

func (t *TwoTier) logger() *log.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return log.Default()
}

// Reconcile merges remote and local shifts and writes the result back to
// both tiers. Local survivors are promoted to synced once the remote write
// succeeds.
func (t *TwoTier) Reconcile(ctx context.Context, userID string) (ReconcileResult, error) {
	local, err := t.Local.List(ctx, userID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("reading local cache: %w", err)
	}

	var remote []model.Shift
	var remoteErr error
	if t.Remote != nil {
		remote, remoteErr = t.Remote.List(ctx, userID)
		if remoteErr != nil {
			t.logger().Warn("remote store unavailable, reconciling local cache only", "err", remoteErr)
		}
	}

	authoritative := t.Remote != nil && remoteErr == nil
	merged, err := schedule.MergeReport(union(remote, local, authoritative), t.Loc)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("merging shifts: %w", err)
	}
	for _, d := range merged.Dropped {
		t.logger().Info("dropped conflicting shift",
			"id", d.Shift.ID, "date", d.Shift.Date, "synced", d.Shift.Synced, "kept", d.ConflictsWith.ID)
	}

	result := ReconcileResult{Shifts: merged.Kept, Dropped: merged.Dropped, RemoteErr: remoteErr}
	if authoritative {
		promoted := promote(merged.Kept, userID)
		if err := t.Remote.Replace(ctx, userID, promoted); err != nil {
			t.logger().Warn("writing reconciled shifts to remote store failed", "err", err)
			result.RemoteErr = err
		} else {
			result.Shifts = promoted
		}
	}

	if err := t.Local.Replace(ctx, userID, result.Shifts); err != nil {
		return result, fmt.Errorf("writing local cache: %w", err)
	}
	return result, nil
}

// View returns the merged shift list without writing anything. Remote
// failures degrade to the local list.
func (t *TwoTier) View(ctx context.Context, userID string) ([]model.Shift, error) {
	local, err := t.Local.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading local cache: %w", err)
	}
	candidates := local
	if t.Remote != nil {
		remote, err := t.Remote.List(ctx, userID)
		if err != nil {
			t.logger().Warn("remote store unavailable, showing local cache", "err", err)
		} else {
			candidates = union(remote, local, true)
		}
	}
	return schedule.Merge(candidates, t.Loc)
}

// Add runs the entry gate against the merged view and, when the candidate
// fits, stores it locally and then remotely. A remote failure leaves the
// shift local-only and is reported in the result, not as an error.
func (t *TwoTier) Add(ctx context.Context, userID string, candidate model.Shift) (AddResult, error) {
	current, err := t.View(ctx, userID)
	if err != nil {
		return AddResult{}, err
	}

	candidate.UserID = userID
	candidate.Synced = false
	ins, err := schedule.AddWithOverlapCheck(candidate, current, t.Loc)
	if err != nil {
		return AddResult{}, err
	}
	res := AddResult{Insertion: ins, Stored: candidate}
	if !ins.Inserted {
		return res, nil
	}

	if err := t.Local.Save(ctx, userID, []model.Shift{candidate}); err != nil {
		return res, fmt.Errorf("saving shift locally: %w", err)
	}
	if t.Remote == nil {
		return res, nil
	}

	remote := candidate
	remote.Synced = true
	if err := t.Remote.Save(ctx, userID, []model.Shift{remote}); err != nil {
		t.logger().Warn("shift saved locally but not synced", "id", candidate.ID, "err", err)
		res.RemoteErr = err
		return res, nil
	}
	if err := t.Local.Save(ctx, userID, []model.Shift{remote}); err != nil {
		return res, fmt.Errorf("marking shift synced: %w", err)
	}
	res.Stored = remote
	return res, nil
}

// Update stores an edited shift in both tiers.
func (t *TwoTier) Update(ctx context.Context, userID string, s model.Shift) error {
	if err := schedule.Validate(s); err != nil {
		return err
	}
	if err := t.Local.Save(ctx, userID, []model.Shift{s}); err != nil {
		return err
	}
	if t.Remote != nil && s.Synced {
		if err := t.Remote.Save(ctx, userID, []model.Shift{s}); err != nil {
			return fmt.Errorf("updating remote shift: %w", err)
		}
	}
	return nil
}

// Delete removes the shift from both tiers. It fails with ErrNotFound only
// when neither tier knew the ID.
func (t *TwoTier) Delete(ctx context.Context, userID, id string) error {
	localErr := t.Local.Delete(ctx, userID, id)
	if localErr != nil && !errors.Is(localErr, ErrNotFound) {
		return localErr
	}
	if t.Remote == nil {
		return localErr
	}
	remoteErr := t.Remote.Delete(ctx, userID, id)
	if remoteErr != nil && !errors.Is(remoteErr, ErrNotFound) {
		return remoteErr
	}
	if localErr != nil && remoteErr != nil {
		return localErr
	}
	return nil
}

// union concatenates both tiers. A local copy of a shift the remote already
// holds under the same ID is the same record and is left out. When the remote
// list was read successfully, a synced local copy whose ID the remote no
// longer holds was deleted upstream and is left out too.
func union(remote, local []model.Shift, authoritative bool) []model.Shift {
	seen := make(map[string]bool, len(remote))
	out := make([]model.Shift, 0, len(remote)+len(local))
	for _, s := range remote {
		seen[s.ID] = true
		out = append(out, s)
	}
	for _, s := range local {
		if s.ID != "" && seen[s.ID] {
			continue
		}
		if authoritative && s.Synced {
			continue
		}
		out = append(out, s)
	}
	return out
}

func promote(shifts []model.Shift, userID string) []model.Shift {
	out := make([]model.Shift, len(shifts))
	for i, s := range shifts {
		s.Synced = true
		s.UserID = userID
		out[i] = s
	}
	return out
}

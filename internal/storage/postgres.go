package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

// RemoteStore is the authoritative Postgres-backed shift store. Every shift
// read from it is marked Synced.
type RemoteStore struct {
	db *sql.DB
}

func NewRemoteStore(db *sql.DB) *RemoteStore {
	return &RemoteStore{db: db}
}

const selectShifts = `
	SELECT id, user_id, date, start_time, end_time, title, synced_to_calendar
	FROM work_schedules
	WHERE user_id = $1
	ORDER BY date ASC, start_time ASC
`

func (s *RemoteStore) List(ctx context.Context, userID string) ([]model.Shift, error) {
	rows, err := s.db.QueryContext(ctx, selectShifts, userID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	shifts := []model.Shift{}
	for rows.Next() {
		var sh model.Shift
		var date time.Time
		if err := rows.Scan(&sh.ID, &sh.UserID, &date, &sh.StartTime, &sh.EndTime, &sh.Title, &sh.SyncedToCalendar); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		sh.Date = date.Format(timecalc.DateLayout)
		sh.StartTime = clock(sh.StartTime)
		sh.EndTime = clock(sh.EndTime)
		sh.Synced = true
		shifts = append(shifts, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}
	return shifts, nil
}

const upsertShift = `
	INSERT INTO work_schedules (id, user_id, date, start_time, end_time, title, synced, synced_to_calendar)
	VALUES ($1, $2, $3::date, $4, $5, $6, TRUE, $7)
	ON CONFLICT (id) DO UPDATE SET
		date = EXCLUDED.date,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		title = EXCLUDED.title,
		synced_to_calendar = EXCLUDED.synced_to_calendar,
		updated_at = NOW()
	WHERE work_schedules.user_id = EXCLUDED.user_id
`

func (s *RemoteStore) Save(ctx context.Context, userID string, shifts []model.Shift) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	if err := insertShifts(ctx, tx, userID, shifts); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *RemoteStore) Replace(ctx context.Context, userID string, shifts []model.Shift) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_schedules WHERE user_id = $1`, userID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear shifts: %w", err)
	}
	if err := insertShifts(ctx, tx, userID, shifts); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func insertShifts(ctx context.Context, tx *sql.Tx, userID string, shifts []model.Shift) error {
	for _, sh := range shifts {
		if _, err := tx.ExecContext(ctx, upsertShift,
			sh.ID, userID, sh.Date, sh.StartTime, sh.EndTime, sh.Title, sh.SyncedToCalendar,
		); err != nil {
			return fmt.Errorf("upsert shift %s: %w", sh.ID, err)
		}
	}
	return nil
}

func (s *RemoteStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM work_schedules WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// GetProfile returns the stored profile, or a bare profile carrying only the
// user ID when none exists.
func (s *RemoteStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	p := model.Profile{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, gender, timezone FROM profiles WHERE id = $1`, userID,
	).Scan(&p.Email, &p.Name, &p.Gender, &p.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return p, nil
}

func (s *RemoteStore) UpsertProfile(ctx context.Context, p model.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, name, gender, timezone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			gender = EXCLUDED.gender,
			timezone = EXCLUDED.timezone,
			updated_at = NOW()
	`, p.UserID, p.Email, p.Name, p.Gender, p.Timezone)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// ReplaceInsights deletes the user's insights and stores the new set.
func (s *RemoteStore) ReplaceInsights(ctx context.Context, userID string, insights []model.Insight) ([]model.Insight, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insights tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM insights WHERE user_id = $1`, userID); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("clear insights: %w", err)
	}

	stored := make([]model.Insight, 0, len(insights))
	for _, in := range insights {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO insights (user_id, date, title, description, type, priority, gender_specific)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, userID, in.Date, in.Title, in.Description, in.Type, in.Priority, in.GenderSpecific).Scan(&id)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("insert insight: %w", err)
		}
		in.ID = strconv.FormatInt(id, 10)
		in.UserID = userID
		stored = append(stored, in)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insights: %w", err)
	}
	return stored, nil
}

func (s *RemoteStore) ListInsights(ctx context.Context, userID string) ([]model.Insight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, title, description, type, priority, gender_specific
		FROM insights WHERE user_id = $1 ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []model.Insight
	for rows.Next() {
		var in model.Insight
		var id int64
		if err := rows.Scan(&id, &in.UserID, &in.Date, &in.Title, &in.Description, &in.Type, &in.Priority, &in.GenderSpecific); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		in.ID = strconv.FormatInt(id, 10)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}
	return out, nil
}

// clock trims "HH:MM:SS" values written by other clients down to "HH:MM".
func clock(v string) string {
	if len(v) > 5 && v[2] == ':' && v[5] == ':' {
		return v[:5]
	}
	return v
}

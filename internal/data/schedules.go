package data

import (
	"context"
	"database/sql"
)

// ScheduleModel owns the local configuration tables: per-building time
// windows and the device ignore list. These live in the local SQLite
// database, not in ProServer.
type ScheduleModel struct {
	DB DBTX
}

// GetTimes returns the stored window for a building, or nil when none is
// configured. A building without a window is always outside schedule.
func (m ScheduleModel) GetTimes(ctx context.Context, buildingID int64) (*ScheduleTimes, error) {
	query := `
		SELECT start_time, end_time
		FROM building_times
		WHERE building_id = ?`

	var t ScheduleTimes
	var end sql.NullString
	err := m.DB.QueryRowContext(ctx, query, buildingID).Scan(&t.StartTime, &end)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.BuildingID = buildingID
	t.EndTime = end.String
	return &t, nil
}

func (m ScheduleModel) SetTimes(ctx context.Context, buildingID int64, start, end string) error {
	query := `
		INSERT INTO building_times (building_id, start_time, end_time)
		VALUES (?, ?, ?)
		ON CONFLICT(building_id) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			updated_at = CURRENT_TIMESTAMP`

	_, err := m.DB.ExecContext(ctx, query, buildingID, start, end)
	return err
}

func (m ScheduleModel) AllTimes(ctx context.Context) (map[int64]ScheduleTimes, error) {
	query := `SELECT building_id, start_time, end_time FROM building_times`

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make(map[int64]ScheduleTimes)
	for rows.Next() {
		var t ScheduleTimes
		var end sql.NullString
		if err := rows.Scan(&t.BuildingID, &t.StartTime, &end); err != nil {
			return nil, err
		}
		t.EndTime = end.String
		all[t.BuildingID] = t
	}
	return all, rows.Err()
}

// IgnoredDeviceIDs returns the set of device ids excluded from the
// scheduled override in the given building.
func (m ScheduleModel) IgnoredDeviceIDs(ctx context.Context, buildingID int64) (map[int64]struct{}, error) {
	query := `
		SELECT proevent_id
		FROM ignored_proevents
		WHERE building_frk = ? AND ignore_on_disarm = 1`

	rows, err := m.DB.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (m ScheduleModel) AllIgnored(ctx context.Context) (map[int64]IgnoredProEvent, error) {
	query := `
		SELECT proevent_id, building_frk, device_prk, ignore_on_disarm
		FROM ignored_proevents`

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make(map[int64]IgnoredProEvent)
	for rows.Next() {
		var ig IgnoredProEvent
		if err := rows.Scan(&ig.ProEventID, &ig.BuildingID, &ig.DevicePRK, &ig.IgnoreOnDisarm); err != nil {
			return nil, err
		}
		all[ig.ProEventID] = ig
	}
	return all, rows.Err()
}

func (m ScheduleModel) SetIgnoreStatus(ctx context.Context, ig IgnoredProEvent) error {
	query := `
		INSERT INTO ignored_proevents (proevent_id, building_frk, device_prk, ignore_on_disarm)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(proevent_id) DO UPDATE SET
			building_frk = excluded.building_frk,
			device_prk = excluded.device_prk,
			ignore_on_disarm = excluded.ignore_on_disarm`

	_, err := m.DB.ExecContext(ctx, query, ig.ProEventID, ig.BuildingID, ig.DevicePRK, ig.IgnoreOnDisarm)
	return err
}

// LogStateChange appends to the proevent state history. Best-effort audit
// trail; callers ignore the error beyond logging it.
func (m ScheduleModel) LogStateChange(ctx context.Context, proeventID, buildingID int64, state string) error {
	query := `
		INSERT INTO proevent_state_history (proevent_id, building_frk, state)
		VALUES (?, ?, ?)`

	_, err := m.DB.ExecContext(ctx, query, proeventID, buildingID, state)
	return err
}

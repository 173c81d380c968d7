package data

import (
	"context"
	"database/sql"
	"fmt"
)

// SnapshotModel stores the pre-override device states per building. At most
// one snapshot exists per building; its presence means an override is
// currently active.
type SnapshotModel struct {
	DB *sql.DB
}

// Get returns the snapshot rows for a building, or nil when no snapshot
// exists.
func (m *SnapshotModel) Get(ctx context.Context, buildingID int64) ([]DeviceState, error) {
	query := `
		SELECT device_id, original_state
		FROM device_state_snapshot
		WHERE building_id = ?
		ORDER BY device_id`

	rows, err := m.DB.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []DeviceState
	for rows.Next() {
		var s DeviceState
		if err := rows.Scan(&s.DeviceID, &s.State); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

// Save replaces any previous snapshot for the building in one transaction.
func (m *SnapshotModel) Save(ctx context.Context, buildingID int64, states []DeviceState) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM device_state_snapshot WHERE building_id = ?`, buildingID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO device_state_snapshot (building_id, device_id, original_state)
		VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range states {
		if _, err := stmt.ExecContext(ctx, buildingID, s.DeviceID, s.State); err != nil {
			return fmt.Errorf("snapshot device %d: %w", s.DeviceID, err)
		}
	}
	return tx.Commit()
}

func (m *SnapshotModel) Clear(ctx context.Context, buildingID int64) error {
	_, err := m.DB.ExecContext(ctx,
		`DELETE FROM device_state_snapshot WHERE building_id = ?`, buildingID)
	return err
}

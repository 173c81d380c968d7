package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ProServerModel reads the ProServer directory database and writes device
// reactive states back to it. The schema (Building_TBL, Device_TBL,
// ProEvent_TBL) is owned by ProServer; we only touch pevReactive_FRK.
type ProServerModel struct {
	DB *sql.DB
}

func (m *ProServerModel) ListBuildings(ctx context.Context) ([]Building, error) {
	query := `
		SELECT "Building_PRK", "bldBuildingName_TXT"
		FROM "Building_TBL"
	`
	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []Building
	for rows.Next() {
		var b Building
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

// LiveArmStates returns the armed flag for every building that has an arming
// device. State text other than the known armed/disarmed values defaults to
// armed.
func (m *ProServerModel) LiveArmStates(ctx context.Context) (map[int64]bool, error) {
	query := `
		SELECT "dvcBuilding_FRK", "dvcCurrentState_TXT"
		FROM "Device_TBL"
		WHERE "dvcDeviceType_FRK" = $1
	`
	rows, err := m.DB.QueryContext(ctx, query, ArmingDeviceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[int64]bool)
	for rows.Next() {
		var buildingID int64
		var stateText sql.NullString
		if err := rows.Scan(&buildingID, &stateText); err != nil {
			return nil, err
		}
		switch strings.TrimSpace(stateText.String) {
		case StateTextArmed:
			states[buildingID] = true
		case StateTextDisarm:
			states[buildingID] = false
		default:
			states[buildingID] = true
		}
	}
	return states, rows.Err()
}

func (m *ProServerModel) DeviceStates(ctx context.Context, buildingID int64) ([]ProEvent, error) {
	query := `
		SELECT p."ProEvent_PRK", p."pevAlias_TXT", p."pevReactive_FRK", b."bldBuildingName_TXT"
		FROM "ProEvent_TBL" AS p
		LEFT JOIN "Building_TBL" AS b ON p."pevBuilding_FRK" = b."Building_PRK"
		WHERE p."pevBuilding_FRK" = $1
	`
	rows, err := m.DB.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []ProEvent
	for rows.Next() {
		var d ProEvent
		var alias, name sql.NullString
		if err := rows.Scan(&d.ID, &alias, &d.State, &name); err != nil {
			return nil, err
		}
		d.Alias = alias.String
		d.BuildingName = name.String
		d.BuildingID = buildingID
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// SetDeviceStatesBulk applies every (device, state) pair in one transaction.
// All-or-nothing: a failed statement rolls back the whole batch.
func (m *ProServerModel) SetDeviceStatesBulk(ctx context.Context, states []DeviceState) error {
	if len(states) == 0 {
		return nil
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE "ProEvent_TBL"
		SET "pevReactive_FRK" = $1
		WHERE "ProEvent_PRK" = $2
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range states {
		if _, err := stmt.ExecContext(ctx, s.State, s.DeviceID); err != nil {
			return fmt.Errorf("update device %d: %w", s.DeviceID, err)
		}
	}
	return tx.Commit()
}

// ArmedBuildingName returns the building name when the building's arming
// device is currently in the armed state, or ErrRecordNotFound otherwise.
// The alert dispatcher uses this as a send-time re-check.
func (m *ProServerModel) ArmedBuildingName(ctx context.Context, buildingID int64) (string, error) {
	query := `
		SELECT "bldBuildingName_TXT"
		FROM "Building_TBL"
		JOIN "Device_TBL" ON "dvcBuilding_FRK" = "Building_PRK"
		WHERE "dvcCurrentState_TXT" = $1 AND "dvcBuilding_FRK" = $2
	`
	var name string
	err := m.DB.QueryRowContext(ctx, query, StateTextArmed, buildingID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrRecordNotFound
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

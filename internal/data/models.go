package data

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// Reactive states as stored in ProEvent_TBL.pevReactive_FRK.
// 0 = Reactive ("armed" colour), 1 = Non-Reactive ("disarmed" colour).
const (
	StateReactive    = 0
	StateNonReactive = 1
)

// Arming device states as reported by Device_TBL.dvcCurrentState_TXT.
// Anything else (Unknown, Alarm, ...) is treated as ARMED, fail-safe.
const (
	ArmingDeviceType = 138
	StateTextArmed   = "AreaArmingStates.4"
	StateTextDisarm  = "AreaArmingStates.2"
)

// DBTX is a common interface for *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Building is a row from the ProServer directory.
type Building struct {
	ID   int64
	Name string
}

// ProEvent is a device row from ProEvent_TBL, joined with its building name.
type ProEvent struct {
	ID           int64
	Alias        string
	BuildingID   int64
	BuildingName string
	State        int
}

// DeviceState is the (device, reactive state) pair the engine snapshots,
// reverts and bulk-writes. Snapshot rows use the same shape.
type DeviceState struct {
	DeviceID int64 `json:"device_id"`
	State    int   `json:"state"`
}

// ScheduleTimes is the stored per-building window, HH:MM strings.
// Validation happens at the API boundary, not here.
type ScheduleTimes struct {
	BuildingID int64
	StartTime  string
	EndTime    string
	UpdatedAt  time.Time
}

// IgnoredProEvent is a row from the local ignore list.
type IgnoredProEvent struct {
	ProEventID     int64
	BuildingID     int64
	DevicePRK      int64
	IgnoreOnDisarm bool
}

package data_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-apc/internal/data"
)

func TestSnapshotGet_NoneMeansNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := &data.SnapshotModel{DB: db}

	mock.ExpectQuery(`SELECT device_id, original_state`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"device_id", "original_state"}))

	snap, err := m.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotSave_ReplacesPrevious(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := &data.SnapshotModel{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM device_state_snapshot`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`INSERT INTO device_state_snapshot`)
	mock.ExpectExec(`INSERT INTO device_state_snapshot`).
		WithArgs(int64(7), int64(101), 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO device_state_snapshot`).
		WithArgs(int64(7), int64(102), 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = m.Save(context.Background(), 7, []data.DeviceState{
		{DeviceID: 101, State: 0},
		{DeviceID: 102, State: 1},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := &data.SnapshotModel{DB: db}

	mock.ExpectExec(`DELETE FROM device_state_snapshot`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, m.Clear(context.Background(), 7))
}

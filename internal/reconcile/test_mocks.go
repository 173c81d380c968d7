package reconcile

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/technosupport/ts-apc/internal/data"
)

// MockDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ListBuildings(ctx context.Context) ([]data.Building, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.Building), args.Error(1)
}

func (m *MockDirectory) LiveArmStates(ctx context.Context) (map[int64]bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockDirectory) DeviceStates(ctx context.Context, buildingID int64) ([]data.ProEvent, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.ProEvent), args.Error(1)
}

func (m *MockDirectory) SetDeviceStatesBulk(ctx context.Context, states []data.DeviceState) error {
	args := m.Called(ctx, states)
	return args.Error(0)
}

// MockScheduleStore
type MockScheduleStore struct {
	mock.Mock
}

func (m *MockScheduleStore) GetTimes(ctx context.Context, buildingID int64) (*data.ScheduleTimes, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.ScheduleTimes), args.Error(1)
}

func (m *MockScheduleStore) IgnoredDeviceIDs(ctx context.Context, buildingID int64) (map[int64]struct{}, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]struct{}), args.Error(1)
}

// MockSnapshotStore
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Get(ctx context.Context, buildingID int64) ([]data.DeviceState, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.DeviceState), args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, buildingID int64, states []data.DeviceState) error {
	args := m.Called(ctx, buildingID, states)
	return args.Error(0)
}

func (m *MockSnapshotStore) Clear(ctx context.Context, buildingID int64) error {
	args := m.Called(ctx, buildingID)
	return args.Error(0)
}

// MockEdgeCache
type MockEdgeCache struct {
	mock.Mock
}

func (m *MockEdgeCache) GetAll(ctx context.Context) (map[int64]bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockEdgeCache) SetAll(ctx context.Context, states map[int64]bool) error {
	args := m.Called(ctx, states)
	return args.Error(0)
}

// MockAlerter records dispatched alerts.
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) ArmedDuringWindow(ctx context.Context, building data.Building) {
	m.Called(ctx, building)
}

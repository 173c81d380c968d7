package buildings

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/technosupport/ts-apc/internal/data"
)

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

func (m *MockScheduleStore) SetTimes(ctx context.Context, buildingID int64, start, end string) error {
	args := m.Called(ctx, buildingID, start, end)
	return args.Error(0)
}

func (m *MockScheduleStore) AllTimes(ctx context.Context) (map[int64]data.ScheduleTimes, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]data.ScheduleTimes), args.Error(1)
}

func (m *MockScheduleStore) AllIgnored(ctx context.Context) (map[int64]data.IgnoredProEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]data.IgnoredProEvent), args.Error(1)
}

func (m *MockScheduleStore) SetIgnoreStatus(ctx context.Context, ig data.IgnoredProEvent) error {
	args := m.Called(ctx, ig)
	return args.Error(0)
}

func (m *MockScheduleStore) LogStateChange(ctx context.Context, proeventID, buildingID int64, state string) error {
	args := m.Called(ctx, proeventID, buildingID, state)
	return args.Error(0)
}

package buildings

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/technosupport/ts-apc/internal/data"
)

var (
	ErrInvalidTime      = errors.New("time must be HH:MM, 24-hour")
	ErrNoDevices        = errors.New("building has no devices")
	ErrInvalidState     = errors.New("state must be 0 or 1")
	ErrEmptyIgnoreBatch = errors.New("ignore batch is empty")
)

// Display defaults for buildings that have no stored window yet. The
// reconciler treats a missing window as "always outside"; these values only
// pre-fill the schedule editor.
const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
)

var clockRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

type Directory interface {
	ListBuildings(ctx context.Context) ([]data.Building, error)
	DeviceStates(ctx context.Context, buildingID int64) ([]data.ProEvent, error)
	SetDeviceStatesBulk(ctx context.Context, states []data.DeviceState) error
}

type ScheduleStore interface {
	GetTimes(ctx context.Context, buildingID int64) (*data.ScheduleTimes, error)
	SetTimes(ctx context.Context, buildingID int64, start, end string) error
	AllTimes(ctx context.Context) (map[int64]data.ScheduleTimes, error)
	AllIgnored(ctx context.Context) (map[int64]data.IgnoredProEvent, error)
	SetIgnoreStatus(ctx context.Context, ig data.IgnoredProEvent) error
	LogStateChange(ctx context.Context, proeventID, buildingID int64, state string) error
}

// BuildingView is a directory row merged with its configured window.
type BuildingView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DeviceView is a ProEvent row merged with its ignore flag. State is the
// reactive value rendered for operators.
type DeviceView struct {
	ID             int64  `json:"id"`
	Alias          string `json:"alias"`
	State          string `json:"state"`
	IgnoreOnDisarm bool   `json:"ignore_on_disarm"`
}

type ScheduleView struct {
	BuildingID int64  `json:"building_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type IgnoreRequest struct {
	ProEventID     int64 `json:"proevent_id"`
	BuildingID     int64 `json:"building_id"`
	DevicePRK      int64 `json:"device_prk"`
	IgnoreOnDisarm bool  `json:"ignore_on_disarm"`
}

type Service struct {
	directory Directory
	schedules ScheduleStore
}

func NewService(dir Directory, sched ScheduleStore) *Service {
	return &Service{directory: dir, schedules: sched}
}

// List merges the ProServer building directory with locally stored windows.
// Buildings without a window get the display defaults.
func (s *Service) List(ctx context.Context) ([]BuildingView, error) {
	all, err := s.directory.ListBuildings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	times, err := s.schedules.AllTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}

	views := make([]BuildingView, 0, len(all))
	for _, b := range all {
		v := BuildingView{ID: b.ID, Name: b.Name, StartTime: DefaultStartTime, EndTime: DefaultEndTime}
		if t, ok := times[b.ID]; ok {
			v.StartTime = t.StartTime
			if t.EndTime != "" {
				v.EndTime = t.EndTime
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) GetSchedule(ctx context.Context, buildingID int64) (ScheduleView, error) {
	t, err := s.schedules.GetTimes(ctx, buildingID)
	if err != nil {
		return ScheduleView{}, err
	}
	v := ScheduleView{BuildingID: buildingID, StartTime: DefaultStartTime, EndTime: DefaultEndTime}
	if t != nil {
		v.StartTime = t.StartTime
		if t.EndTime != "" {
			v.EndTime = t.EndTime
		}
	}
	return v, nil
}

// SetSchedule stores a window after validating both bounds. Overnight
// windows (start after end) are allowed; the reconciler wraps them across
// midnight.
func (s *Service) SetSchedule(ctx context.Context, buildingID int64, start, end string) error {
	if !clockRe.MatchString(start) || !clockRe.MatchString(end) {
		return ErrInvalidTime
	}
	return s.schedules.SetTimes(ctx, buildingID, start, end)
}

// ListDevices merges live device states with the stored ignore flags.
func (s *Service) ListDevices(ctx context.Context, buildingID int64) ([]DeviceView, error) {
	devices, err := s.directory.DeviceStates(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("device states: %w", err)
	}
	ignored, err := s.schedules.AllIgnored(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ignore flags: %w", err)
	}

	views := make([]DeviceView, 0, len(devices))
	for _, d := range devices {
		v := DeviceView{ID: d.ID, Alias: d.Alias, State: stateText(d.State)}
		if ig, ok := ignored[d.ID]; ok {
			v.IgnoreOnDisarm = ig.IgnoreOnDisarm
		}
		views = append(views, v)
	}
	return views, nil
}

// SetIgnoreBulk upserts a batch of ignore flags. Each row stands alone; a
// failure aborts the batch at that row.
func (s *Service) SetIgnoreBulk(ctx context.Context, reqs []IgnoreRequest) error {
	if len(reqs) == 0 {
		return ErrEmptyIgnoreBatch
	}
	for _, r := range reqs {
		ig := data.IgnoredProEvent{
			ProEventID:     r.ProEventID,
			BuildingID:     r.BuildingID,
			DevicePRK:      r.DevicePRK,
			IgnoreOnDisarm: r.IgnoreOnDisarm,
		}
		if err := s.schedules.SetIgnoreStatus(ctx, ig); err != nil {
			return fmt.Errorf("ignore flag for proevent %d: %w", r.ProEventID, err)
		}
	}
	return nil
}

// SetReactiveForBuilding forces every device in a building to the given
// reactive state. Legacy panel action; the reconciler will still correct
// the building on its next cycle.
func (s *Service) SetReactiveForBuilding(ctx context.Context, buildingID int64, state int) error {
	if state != data.StateReactive && state != data.StateNonReactive {
		return ErrInvalidState
	}
	devices, err := s.directory.DeviceStates(ctx, buildingID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return ErrNoDevices
	}

	targets := make([]data.DeviceState, 0, len(devices))
	for _, d := range devices {
		targets = append(targets, data.DeviceState{DeviceID: d.ID, State: state})
	}
	if err := s.directory.SetDeviceStatesBulk(ctx, targets); err != nil {
		return err
	}
	for _, d := range devices {
		_ = s.schedules.LogStateChange(ctx, d.ID, buildingID, stateText(state))
	}
	return nil
}

// stateText renders a reactive value for operators. Anything that is not
// plainly Reactive displays as disarmed.
func stateText(state int) string {
	if state == data.StateReactive {
		return "armed"
	}
	return "disarmed"
}

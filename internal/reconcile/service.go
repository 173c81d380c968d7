package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/technosupport/ts-apc/internal/data"
	"github.com/technosupport/ts-apc/internal/metrics"
)

// ErrBuildingArmed is returned by ReevaluateBuilding when the panel is armed
// and the override state machine must not run.
var ErrBuildingArmed = errors.New("building panel is armed")

// Directory is the live ProServer view: buildings, panel arm states and
// device reactive states.
type Directory interface {
	ListBuildings(ctx context.Context) ([]data.Building, error)
	LiveArmStates(ctx context.Context) (map[int64]bool, error)
	DeviceStates(ctx context.Context, buildingID int64) ([]data.ProEvent, error)
	SetDeviceStatesBulk(ctx context.Context, states []data.DeviceState) error
}

// ScheduleStore reads the locally administered windows and ignore lists.
type ScheduleStore interface {
	GetTimes(ctx context.Context, buildingID int64) (*data.ScheduleTimes, error)
	IgnoredDeviceIDs(ctx context.Context, buildingID int64) (map[int64]struct{}, error)
}

// SnapshotStore holds at most one pre-override snapshot per building. Get
// returns nil when no snapshot exists.
type SnapshotStore interface {
	Get(ctx context.Context, buildingID int64) ([]data.DeviceState, error)
	Save(ctx context.Context, buildingID int64, states []data.DeviceState) error
	Clear(ctx context.Context, buildingID int64) error
}

// EdgeCache persists the was-in-schedule flag per building across cycles.
// SetAll replaces the whole map in one durable write.
type EdgeCache interface {
	GetAll(ctx context.Context) (map[int64]bool, error)
	SetAll(ctx context.Context, states map[int64]bool) error
}

// Alerter dispatches the armed-while-scheduled notification. Fire and
// forget: the dispatcher logs its own failures.
type Alerter interface {
	ArmedDuringWindow(ctx context.Context, building data.Building)
}

// HistorySink records device state transitions for the audit trail.
type HistorySink interface {
	LogStateChange(ctx context.Context, proeventID, buildingID int64, state string) error
}

// Service is the reconciliation engine. RunCycle evaluates every building
// once; the override state machine and the edge cache are exclusively owned
// here. The mutex also serialises the manual re-evaluation API path against
// the periodic cycle.
type Service struct {
	Directory Directory
	Schedules ScheduleStore
	Snapshots SnapshotStore
	Cache     EdgeCache
	Alerts    Alerter
	History   HistorySink        // optional
	Metrics   *metrics.Collector // optional

	Location *time.Location
	Now      func() time.Time

	mu sync.Mutex
}

func NewService(dir Directory, sched ScheduleStore, snaps SnapshotStore, cache EdgeCache, alerts Alerter, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		Directory: dir,
		Schedules: sched,
		Snapshots: snaps,
		Cache:     cache,
		Alerts:    alerts,
		Location:  loc,
		Now:       time.Now,
	}
}

// RunCycle performs one full reconciliation pass over all buildings. Errors
// in a single building are logged and skipped; that building keeps its
// previous edge-cache value so the next cycle re-derives from the last known
// good state. The updated cache map is written once, after the pass.
func (s *Service) RunCycle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	armStates, err := s.Directory.LiveArmStates(ctx)
	if err != nil {
		s.Metrics.CycleFailed()
		return fmt.Errorf("live arm states: %w", err)
	}

	cached, err := s.Cache.GetAll(ctx)
	if err != nil {
		s.Metrics.CycleFailed()
		return fmt.Errorf("edge cache read: %w", err)
	}

	buildings, err := s.Directory.ListBuildings(ctx)
	if err != nil {
		s.Metrics.CycleFailed()
		return fmt.Errorf("list buildings: %w", err)
	}
	if len(buildings) == 0 {
		log.Printf("Reconcile: no buildings in directory, nothing to do")
		return nil
	}

	next := make(map[int64]bool, len(cached))
	for id, v := range cached {
		next[id] = v
	}

	buildingErrs := 0
	for _, b := range buildings {
		inside, err := s.evaluateBuilding(ctx, b, armStates, cached)
		if err != nil {
			// Leave this building's cache entry untouched; the next
			// cycle re-evaluates from the same prior edge state.
			log.Printf("[Building %d] evaluation failed: %v", b.ID, err)
			buildingErrs++
			continue
		}
		next[b.ID] = inside
	}

	if err := s.Cache.SetAll(ctx, next); err != nil {
		s.Metrics.CycleFailed()
		return fmt.Errorf("edge cache write: %w", err)
	}

	s.Metrics.CycleCompleted(time.Since(start), buildingErrs)
	return nil
}

// evaluateBuilding runs the per-building decision tree and returns the
// building's is-inside-schedule flag for the edge cache.
func (s *Service) evaluateBuilding(ctx context.Context, b data.Building, armStates, cached map[int64]bool) (bool, error) {
	// Unknown arm state defaults to armed, fail-safe.
	armed, ok := armStates[b.ID]
	if !ok {
		armed = true
	}

	inside, err := s.insideSchedule(ctx, b.ID)
	if err != nil {
		return false, err
	}
	wasInside := cached[b.ID]

	if armed {
		// The window just started while the panel is still armed: the
		// anomalous condition. Fires once per window entry, not once
		// per cycle.
		if inside && !wasInside {
			log.Printf("[Building %d] schedule started but panel is still ARMED, dispatching alert", b.ID)
			s.Alerts.ArmedDuringWindow(ctx, b)
		}

		// An armed panel must never retain a stale override record.
		snap, err := s.Snapshots.Get(ctx, b.ID)
		if err != nil {
			return false, fmt.Errorf("snapshot read: %w", err)
		}
		if snap != nil {
			log.Printf("[Building %d] panel is ARMED, clearing leftover snapshot", b.ID)
			if err := s.Snapshots.Clear(ctx, b.ID); err != nil {
				return false, fmt.Errorf("snapshot clear: %w", err)
			}
			s.Metrics.OverrideReverted()
		}
		return inside, nil
	}

	// Disarmed: run the override state machine. Level-triggered and
	// idempotent, safe to invoke every cycle.
	if err := s.stepOverride(ctx, b, inside); err != nil {
		return false, err
	}
	return inside, nil
}

// insideSchedule evaluates the building's stored window against the current
// time in the panel timezone. No window, or an unparseable one, means the
// building is outside schedule.
func (s *Service) insideSchedule(ctx context.Context, buildingID int64) (bool, error) {
	times, err := s.Schedules.GetTimes(ctx, buildingID)
	if err != nil {
		return false, fmt.Errorf("schedule read: %w", err)
	}
	if times == nil {
		return false, nil
	}
	w, err := ParseWindow(times.StartTime, times.EndTime)
	if err != nil {
		log.Printf("[Building %d] invalid schedule window, treating as none: %v", buildingID, err)
		return false, nil
	}
	if w == nil {
		return false, nil
	}
	return w.Contains(s.Now().In(s.Location)), nil
}

// stepOverride is the 2-state override machine, keyed on
// (isInsideSchedule, snapshotExists). Invoked only while disarmed.
func (s *Service) stepOverride(ctx context.Context, b data.Building, inside bool) error {
	snap, err := s.Snapshots.Get(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("snapshot read: %w", err)
	}
	exists := snap != nil

	switch {
	case inside && !exists:
		log.Printf("[Building %d] schedule started, taking snapshot and applying override", b.ID)
		return s.enterOverride(ctx, b)
	case !inside && exists:
		log.Printf("[Building %d] schedule ended, reverting %d devices", b.ID, len(snap))
		return s.revertOverride(ctx, b, snap)
	default:
		// inside && exists: override applied and stable.
		// !inside && !exists: steady state, nothing scheduled.
		return nil
	}
}

// enterOverride captures every device's current state as the snapshot, then
// writes the target states: ignored devices go Non-Reactive, every other
// device goes Reactive. The snapshot is rolled back if the bulk write fails
// so the machine retries cleanly next cycle.
func (s *Service) enterOverride(ctx context.Context, b data.Building) error {
	devices, err := s.Directory.DeviceStates(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("device states: %w", err)
	}
	if len(devices) == 0 {
		log.Printf("[Building %d] no devices to snapshot", b.ID)
		return nil
	}

	original := make([]data.DeviceState, len(devices))
	for i, d := range devices {
		original[i] = data.DeviceState{DeviceID: d.ID, State: d.State}
	}

	ignored, err := s.Schedules.IgnoredDeviceIDs(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("ignore list: %w", err)
	}

	if err := s.Snapshots.Save(ctx, b.ID, original); err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}

	targets := make([]data.DeviceState, len(devices))
	for i, d := range devices {
		state := data.StateReactive
		if _, skip := ignored[d.ID]; skip {
			state = data.StateNonReactive
		}
		targets[i] = data.DeviceState{DeviceID: d.ID, State: state}
	}

	err = s.Directory.SetDeviceStatesBulk(ctx, targets)
	s.Metrics.BulkWrite(err)
	if err != nil {
		// The write is all-or-nothing; without it the snapshot must not
		// stay behind as a false override-active signal.
		if cerr := s.Snapshots.Clear(ctx, b.ID); cerr != nil {
			log.Printf("[Building %d] failed to roll back snapshot after write error: %v", b.ID, cerr)
		}
		return fmt.Errorf("bulk write: %w", err)
	}

	log.Printf("[Building %d] override applied: %d devices non-reactive, %d reactive",
		b.ID, len(ignored), len(targets)-len(ignored))
	s.recordHistory(ctx, b.ID, targets)
	s.Metrics.OverrideEntered()
	return nil
}

// revertOverride writes the snapshot's original states back verbatim, then
// deletes the snapshot. The snapshot is only cleared once the write
// succeeded.
func (s *Service) revertOverride(ctx context.Context, b data.Building, snap []data.DeviceState) error {
	err := s.Directory.SetDeviceStatesBulk(ctx, snap)
	s.Metrics.BulkWrite(err)
	if err != nil {
		return fmt.Errorf("bulk write: %w", err)
	}
	if err := s.Snapshots.Clear(ctx, b.ID); err != nil {
		return fmt.Errorf("snapshot clear: %w", err)
	}
	s.recordHistory(ctx, b.ID, snap)
	s.Metrics.OverrideReverted()
	return nil
}

func (s *Service) recordHistory(ctx context.Context, buildingID int64, states []data.DeviceState) {
	if s.History == nil {
		return
	}
	for _, st := range states {
		text := "armed"
		if st.State == data.StateNonReactive {
			text = "disarmed"
		}
		if err := s.History.LogStateChange(ctx, st.DeviceID, buildingID, text); err != nil {
			log.Printf("[Building %d] history write failed for device %d: %v", buildingID, st.DeviceID, err)
			return
		}
	}
}

// ReevaluateBuilding runs the override state machine for one building right
// now, on behalf of the API. Armed panels are refused: the machine only ever
// runs while disarmed.
func (s *Service) ReevaluateBuilding(ctx context.Context, buildingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	armStates, err := s.Directory.LiveArmStates(ctx)
	if err != nil {
		return fmt.Errorf("live arm states: %w", err)
	}
	armed, ok := armStates[buildingID]
	if !ok {
		armed = true
	}
	if armed {
		log.Printf("[Building %d] manual re-evaluation skipped: panel is ARMED", buildingID)
		return ErrBuildingArmed
	}

	inside, err := s.insideSchedule(ctx, buildingID)
	if err != nil {
		return err
	}
	return s.stepOverride(ctx, data.Building{ID: buildingID}, inside)
}

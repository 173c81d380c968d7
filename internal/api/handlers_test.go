package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-apc/internal/buildings"
	"github.com/technosupport/ts-apc/internal/data"
	"github.com/technosupport/ts-apc/internal/reconcile"
)

type fakeReevaluator struct {
	err    error
	called []int64
}

func (f *fakeReevaluator) ReevaluateBuilding(_ context.Context, id int64) error {
	f.called = append(f.called, id)
	return f.err
}

type fakePanelStore struct {
	armed bool
	err   error
}

func (f *fakePanelStore) PanelArmed(context.Context) (bool, error) { return f.armed, f.err }
func (f *fakePanelStore) SetPanelArmed(_ context.Context, armed bool) error {
	f.armed = armed
	return f.err
}

func newTestRouter(t *testing.T) (http.Handler, *buildings.MockDirectory, *buildings.MockScheduleStore, *fakeReevaluator, *fakePanelStore) {
	t.Helper()
	dir := new(buildings.MockDirectory)
	sched := new(buildings.MockScheduleStore)
	reev := &fakeReevaluator{}
	panel := &fakePanelStore{armed: true}

	bh := &BuildingHandler{
		Service:    buildings.NewService(dir, sched),
		Reconciler: reev,
	}
	ph := &PanelHandler{Store: panel}
	hh := &HealthHandler{}

	return Router(bh, ph, hh, nil), dir, sched, reev, panel
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListBuildings(t *testing.T) {
	router, dir, sched, _, _ := newTestRouter(t)

	dir.On("ListBuildings", mock.Anything).Return([]data.Building{{ID: 1, Name: "Main Depot"}}, nil)
	sched.On("AllTimes", mock.Anything).Return(map[int64]data.ScheduleTimes{}, nil)

	rec := do(t, router, http.MethodGet, "/api/v1/buildings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []buildings.BuildingView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Main Depot", resp.Data[0].Name)
	assert.Equal(t, "09:00", resp.Data[0].StartTime)
}

func TestListBuildings_ProServerDownIs502(t *testing.T) {
	router, dir, _, _, _ := newTestRouter(t)
	dir.On("ListBuildings", mock.Anything).Return(nil, errors.New("connection refused"))

	rec := do(t, router, http.MethodGet, "/api/v1/buildings", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSetSchedule(t *testing.T) {
	router, _, sched, _, _ := newTestRouter(t)
	sched.On("SetTimes", mock.Anything, int64(7), "08:00", "18:30").Return(nil)

	rec := do(t, router, http.MethodPut, "/api/v1/buildings/7/schedule",
		`{"start_time":"08:00","end_time":"18:30"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	sched.AssertExpectations(t)
}

func TestSetSchedule_RejectsBadClock(t *testing.T) {
	router, _, _, _, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/v1/buildings/7/schedule",
		`{"start_time":"25:00","end_time":"18:30"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetSchedule_RejectsBadID(t *testing.T) {
	router, _, _, _, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/v1/buildings/depot/schedule",
		`{"start_time":"08:00","end_time":"18:30"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDevices(t *testing.T) {
	router, dir, sched, _, _ := newTestRouter(t)

	dir.On("DeviceStates", mock.Anything, int64(7)).Return([]data.ProEvent{
		{ID: 101, Alias: "Front Door", State: data.StateReactive},
	}, nil)
	sched.On("AllIgnored", mock.Anything).Return(map[int64]data.IgnoredProEvent{}, nil)

	rec := do(t, router, http.MethodGet, "/api/v1/buildings/7/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"armed"`)
}

func TestReevaluate_ArmedIsConflict(t *testing.T) {
	router, _, _, reev, _ := newTestRouter(t)
	reev.err = reconcile.ErrBuildingArmed

	rec := do(t, router, http.MethodPost, "/api/v1/buildings/7/reevaluate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, []int64{7}, reev.called)
}

func TestReevaluate_OK(t *testing.T) {
	router, _, _, reev, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/buildings/7/reevaluate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{7}, reev.called)
}

func TestIgnoreBulk(t *testing.T) {
	router, _, sched, _, _ := newTestRouter(t)
	sched.On("SetIgnoreStatus", mock.Anything, data.IgnoredProEvent{
		ProEventID: 101, BuildingID: 7, IgnoreOnDisarm: true,
	}).Return(nil)

	rec := do(t, router, http.MethodPost, "/api/v1/proevents/ignore/bulk",
		`[{"proevent_id":101,"building_id":7,"ignore_on_disarm":true}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updated":1`)
}

func TestIgnoreBulk_EmptyBatchRejected(t *testing.T) {
	router, _, _, _, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/proevents/ignore/bulk", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPanelStatusRoundTrip(t *testing.T) {
	router, _, _, _, panel := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/panel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"armed":true`)

	rec = do(t, router, http.MethodPost, "/api/v1/panel", `{"armed":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, panel.armed)
}

func TestAction_ForcesBuildingState(t *testing.T) {
	router, dir, sched, _, _ := newTestRouter(t)

	dir.On("DeviceStates", mock.Anything, int64(7)).Return([]data.ProEvent{{ID: 101}}, nil)
	dir.On("SetDeviceStatesBulk", mock.Anything, []data.DeviceState{
		{DeviceID: 101, State: data.StateNonReactive},
	}).Return(nil)
	sched.On("LogStateChange", mock.Anything, int64(101), int64(7), "disarmed").Return(nil)

	rec := do(t, router, http.MethodPost, "/api/v1/buildings/7/action", `{"state":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	dir.AssertExpectations(t)
}

func TestHealthz_NoDepsIsHealthy(t *testing.T) {
	router, _, _, _, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("dial tcp: refused") }

func TestHealthz_DegradedDependencyIs503(t *testing.T) {
	hh := &HealthHandler{ProServer: failingPinger{}}
	rec := httptest.NewRecorder()
	hh.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

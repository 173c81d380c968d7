package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert kinds, used as the metrics label and in the mirrored event.
const (
	KindArmed    = "armed"
	KindDisarmed = "disarmed"
)

// Wire formats expected by the ProServer axe listener. These literals are an
// external contract; downstream consumers match them byte for byte.
const (
	armedMessageFormat    = "axe,%s_Is_Armed@"
	disarmedMessageFormat = "axe,%d_Is_Disarmed@"
)

// Event is the JSON payload mirrored to the internal event bus whenever an
// axe message is sent.
type Event struct {
	EventID    uuid.UUID `json:"event_id"`
	BuildingID int64     `json:"building_id"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

package alert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/technosupport/ts-apc/internal/data"
	"github.com/technosupport/ts-apc/internal/metrics"
)

// NameResolver is the send-time re-check against the live directory: it
// returns the building's name only while its panel is still armed, and
// data.ErrRecordNotFound once it has been disarmed.
type NameResolver interface {
	ArmedBuildingName(ctx context.Context, buildingID int64) (string, error)
}

// EventPublisher mirrors sent alerts to the internal bus. Optional.
type EventPublisher interface {
	Publish(event *Event) error
}

// Dispatcher formats and sends axe messages. Fire and forget: every failure
// is logged, nothing is retried synchronously and nothing propagates back
// into the reconciliation cycle.
type Dispatcher struct {
	Sender    Sender
	Resolver  NameResolver
	Publisher EventPublisher     // optional
	Metrics   *metrics.Collector // optional

	dedup *Dedup
}

func NewDispatcher(sender Sender, resolver NameResolver, dedup *Dedup) *Dispatcher {
	if dedup == nil {
		dedup = NewDedup(256, 90*time.Second)
	}
	return &Dispatcher{
		Sender:   sender,
		Resolver: resolver,
		dedup:    dedup,
	}
}

// ArmedDuringWindow notifies ProServer that a building's window started
// while its panel was still armed. The live state is re-checked at send
// time: a panel disarmed between the cycle decision and now gets the
// id-based disarmed message instead.
func (d *Dispatcher) ArmedDuringWindow(ctx context.Context, building data.Building) {
	var message, kind string

	name, err := d.Resolver.ArmedBuildingName(ctx, building.ID)
	switch {
	case err == nil:
		message = fmt.Sprintf(armedMessageFormat, name)
		kind = KindArmed
	case errors.Is(err, data.ErrRecordNotFound):
		message = fmt.Sprintf(disarmedMessageFormat, building.ID)
		kind = KindDisarmed
	default:
		log.Printf("Alert: name lookup failed for building %d: %v", building.ID, err)
		return
	}

	if d.dedup.IsDuplicate(message) {
		log.Printf("Alert: duplicate suppressed for building %d: %s", building.ID, message)
		return
	}

	if err := d.Sender.Send(ctx, message); err != nil {
		log.Printf("Alert: send failed for building %d: %v", building.ID, err)
		return
	}
	log.Printf("Alert: sent for building %d: %s", building.ID, message)
	d.Metrics.AlertSent(kind)

	if d.Publisher != nil {
		evt := &Event{
			EventID:    uuid.New(),
			BuildingID: building.ID,
			Kind:       kind,
			Message:    message,
			SentAt:     time.Now().UTC(),
		}
		if err := d.Publisher.Publish(evt); err != nil {
			log.Printf("Alert: event mirror failed for building %d: %v", building.ID, err)
		}
	}
}

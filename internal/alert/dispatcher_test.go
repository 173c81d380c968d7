package alert

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/technosupport/ts-apc/internal/data"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message)
	return nil
}

type fakeResolver struct {
	name string
	err  error
}

func (f *fakeResolver) ArmedBuildingName(ctx context.Context, buildingID int64) (string, error) {
	return f.name, f.err
}

type fakePublisher struct {
	events []*Event
}

func (f *fakePublisher) Publish(event *Event) error {
	f.events = append(f.events, event)
	return nil
}

func TestDispatcher_ArmedMessageFormat(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, &fakeResolver{name: "Main Depot"}, nil)

	d.ArmedDuringWindow(context.Background(), data.Building{ID: 7, Name: "Main Depot"})

	assert.Equal(t, []string{"axe,Main Depot_Is_Armed@"}, sender.sent)
}

func TestDispatcher_DisarmedAtSendTime(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, &fakeResolver{err: data.ErrRecordNotFound}, nil)

	d.ArmedDuringWindow(context.Background(), data.Building{ID: 42})

	assert.Equal(t, []string{"axe,42_Is_Disarmed@"}, sender.sent)
}

func TestDispatcher_ResolverErrorSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, &fakeResolver{err: errors.New("db down")}, nil)

	d.ArmedDuringWindow(context.Background(), data.Building{ID: 7})

	assert.Empty(t, sender.sent)
}

func TestDispatcher_DuplicateSuppressed(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, &fakeResolver{name: "Depot"}, NewDedup(16, time.Minute))

	b := data.Building{ID: 7}
	d.ArmedDuringWindow(context.Background(), b)
	d.ArmedDuringWindow(context.Background(), b)

	assert.Len(t, sender.sent, 1)
}

func TestDispatcher_SendFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(&fakeSender{err: errors.New("refused")}, &fakeResolver{name: "Depot"}, nil)
	d.Publisher = pub

	d.ArmedDuringWindow(context.Background(), data.Building{ID: 7})

	// No event mirrored when the wire send failed.
	assert.Empty(t, pub.events)
}

func TestDispatcher_MirrorsEvent(t *testing.T) {
	pub := &fakePublisher{}
	sender := &fakeSender{}
	d := NewDispatcher(sender, &fakeResolver{name: "Depot"}, nil)
	d.Publisher = pub

	d.ArmedDuringWindow(context.Background(), data.Building{ID: 7})

	if assert.Len(t, pub.events, 1) {
		evt := pub.events[0]
		assert.Equal(t, int64(7), evt.BuildingID)
		assert.Equal(t, KindArmed, evt.Kind)
		assert.Equal(t, "axe,Depot_Is_Armed@", evt.Message)
	}
}

func TestTCPSender_WritesRawBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		n, _ := conn.Read(buf)
		received <- string(buf[:n])
	}()

	s := NewTCPSender(func() string { return ln.Addr().String() }, time.Second)
	assert.NoError(t, s.Send(context.Background(), "axe,Depot_Is_Armed@"))

	select {
	case got := <-received:
		assert.Equal(t, "axe,Depot_Is_Armed@", got)
	case <-time.After(2 * time.Second):
		t.Fatal("listener never received the message")
	}
}

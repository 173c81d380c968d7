//go:build windows

package windows

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/sys/windows/svc/eventlog"
)

// EventLogger mirrors messages to the Windows Event Log and standard log.
// A missing event source degrades to standard log only.
type EventLogger struct {
	source string
	elog   *eventlog.Log
}

// NewEventLogger opens the named event source. The installer registers it;
// a dev box without it just logs to stdout.
func NewEventLogger(source string) *EventLogger {
	l, err := eventlog.Open(source)
	if err != nil {
		log.Printf("Warning: Could not open Windows Event Log source '%s': %v. Falling back to stdout.", source, err)
		return &EventLogger{source: source}
	}
	return &EventLogger{source: source, elog: l}
}

func (l *EventLogger) Info(eid uint32, msg string) {
	if l.elog != nil {
		l.elog.Info(eid, msg)
	}
	log.Printf("[INFO] %s: %s", l.source, msg)
}

func (l *EventLogger) Warning(eid uint32, msg string) {
	if l.elog != nil {
		l.elog.Warning(eid, msg)
	}
	log.Printf("[WARN] %s: %s", l.source, msg)
}

func (l *EventLogger) Error(eid uint32, msg string) {
	if l.elog != nil {
		l.elog.Error(eid, msg)
	}
	fmt.Fprintf(os.Stderr, "[ERROR] %s: %s\n", l.source, msg)
}

func (l *EventLogger) Close() {
	if l.elog != nil {
		l.elog.Close()
	}
}

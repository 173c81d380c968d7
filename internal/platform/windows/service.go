//go:build windows

package windows

import (
	"golang.org/x/sys/windows/svc"
)

// serviceHandler drives the Windows Service lifecycle. Stop and Shutdown
// close StopChan; the main goroutine owns the actual teardown.
type serviceHandler struct {
	StopChan chan<- struct{}
}

func (h *serviceHandler) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown
	changes <- svc.Status{State: svc.StartPending}
	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}

	for c := range r {
		switch c.Cmd {
		case svc.Interrogate:
			changes <- c.CurrentStatus
		case svc.Stop, svc.Shutdown:
			if h.StopChan != nil {
				close(h.StopChan)
				h.StopChan = nil
			}
		}
	}

	changes <- svc.Status{State: svc.StopPending}
	return
}

// RunAsService enters the service loop if running in service context.
func RunAsService(name string, stopChan chan<- struct{}) error {
	return svc.Run(name, &serviceHandler{StopChan: stopChan})
}

// IsWindowsService checks if the process is running as a Windows Service.
func IsWindowsService() bool {
	isService, _ := svc.IsWindowsService()
	return isService
}

package backend

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/life/gpucore"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU device.
	BackendSoftware = "software"
	// BackendWGPU is the name of the Pure Go GPU device (gogpu/wgpu HAL).
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or no registered backend could be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory opens a new device. A factory returns an error when the backend
// is compiled in but cannot run on this machine (e.g. no GPU adapter).
type Factory func() (gpucore.Device, error)

// loggerSetter is implemented by devices that log.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger handed to devices opened after this call.
// Pass nil to disable logging.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current backend logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

func propagateLogger(dev gpucore.Device) {
	if s, ok := dev.(loggerSetter); ok {
		s.SetLogger(Logger())
	}
}

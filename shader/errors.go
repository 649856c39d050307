package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/life/gpucore"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrCompile matches every *CompileError.
	ErrCompile = errors.New("shader: compile failed")

	// ErrLink matches every *LinkError.
	ErrLink = errors.New("shader: link failed")

	// ErrUniformNotFound is returned when a program declares no variable
	// of the requested name.
	ErrUniformNotFound = errors.New("shader: uniform not found")

	// ErrStageCount is returned when a program is built from the wrong
	// number or kinds of stages.
	ErrStageCount = errors.New("shader: invalid stage list")

	// ErrClosed is returned by operations on a released program.
	ErrClosed = errors.New("shader: program closed")
)

// CompileError reports a stage that failed to compile. Startup aborts on
// it; the log is the device's diagnostic text.
type CompileError struct {
	Index int
	Kind  gpucore.StageKind
	Path  string
	Log   string
}

func (e *CompileError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("shader: compile %s stage %d (%s): %s", e.Kind, e.Index, e.Path, e.Log)
	}
	return fmt.Sprintf("shader: compile %s stage %d: %s", e.Kind, e.Index, e.Log)
}

// Is reports whether target is ErrCompile.
func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// LinkError reports a program that failed to link.
type LinkError struct {
	Label string
	Log   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("shader: link %s: %s", e.Label, e.Log)
}

// Is reports whether target is ErrLink.
func (e *LinkError) Is(target error) bool { return target == ErrLink }

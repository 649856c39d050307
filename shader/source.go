package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/life/gpucore"
)

// Stage is one shader source to compile. Path is informational and only
// used in diagnostics.
type Stage struct {
	Kind   gpucore.StageKind
	Source string
	Path   string
}

// LoadStage reads a stage source from disk.
func LoadStage(kind gpucore.StageKind, path string) (Stage, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Stage{}, fmt.Errorf("shader: load %s stage: %w", kind, err)
	}
	return Stage{Kind: kind, Source: string(src), Path: path}, nil
}

// LoadStages reads several stage sources of the same kind, in order.
func LoadStages(kind gpucore.StageKind, paths ...string) ([]Stage, error) {
	stages := make([]Stage, 0, len(paths))
	for _, p := range paths {
		st, err := LoadStage(kind, p)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, nil
}

// KindFromPath guesses the stage kind from a file name: *.comp, *_cs.wgsl
// and *.compute.wgsl are compute; *.vert, *_vs.wgsl and *.vertex.wgsl are
// vertex; *.frag, *_fs.wgsl and *.fragment.wgsl are fragment.
func KindFromPath(path string) (gpucore.StageKind, bool) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".comp"), strings.HasSuffix(name, "_cs.wgsl"), strings.HasSuffix(name, ".compute.wgsl"):
		return gpucore.StageCompute, true
	case strings.HasSuffix(name, ".vert"), strings.HasSuffix(name, "_vs.wgsl"), strings.HasSuffix(name, ".vertex.wgsl"):
		return gpucore.StageVertex, true
	case strings.HasSuffix(name, ".frag"), strings.HasSuffix(name, "_fs.wgsl"), strings.HasSuffix(name, ".fragment.wgsl"):
		return gpucore.StageFragment, true
	default:
		return 0, false
	}
}

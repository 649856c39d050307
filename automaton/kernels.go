package automaton

import (
	"math"

	"github.com/gogpu/life/backend/software"
)

func init() {
	software.RegisterCompute(StepEntry, stepKernel)
	software.RegisterCompute(CopyEntry, copyKernel)
	software.RegisterVertex(QuadEntry, quadKernel)
	software.RegisterFragment(CellsEntry, cellsKernel)
}

// Alive reports whether a stored cell value counts as a live cell.
func Alive(v uint32) bool { return v > 127 }

// InBrush reports whether the center of cell (x, y) of a w x h grid lies
// within radius of center. center and radius are in normalized grid
// coordinates with the origin at the bottom-left.
func InBrush(x, y, w, h int, center [2]float32, radius float32) bool {
	u := (float32(x) + 0.5) / float32(w)
	v := (float32(y) + 0.5) / float32(h)
	du, dv := u-center[0], v-center[1]
	return float32(math.Sqrt(float64(du*du+dv*dv))) < radius
}

func stepKernel(inv *software.Invocation) {
	size := inv.UVec2(GridSize)
	if inv.GlobalID[0] >= size[0] || inv.GlobalID[1] >= size[1] {
		return
	}
	w, h := int(size[0]), int(size[1])
	x, y := int(inv.GlobalID[0]), int(inv.GlobalID[1])
	cur, next := inv.Image(CurrentImage), inv.Image(NextImage)

	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			wx := (x + dx + w) % w
			wy := (y + dy + h) % h
			if Alive(cur.Load(wy*w + wx)) {
				n++
			}
		}
	}

	index := y*w + x
	rule := Rule{Birth: inv.Uint(BirthMask), Survive: inv.Uint(SurviveMask)}
	alive := rule.Next(Alive(cur.Load(index)), n)
	if inv.Uint(MousePressed) != 0 && InBrush(x, y, w, h, inv.Vec2(MousePosition), inv.Float(MouseRadius)) {
		alive = true
	}

	var v uint32
	if alive {
		v = 255
	}
	next.Store(index, v)
}

func copyKernel(inv *software.Invocation) {
	size := inv.UVec2(GridSize)
	if inv.GlobalID[0] >= size[0] || inv.GlobalID[1] >= size[1] {
		return
	}
	index := int(inv.GlobalID[1]*size[0] + inv.GlobalID[0])
	inv.Image(CopyTarget).Store(index, inv.Image(CopySource).Load(index))
}

var quadCorners = [6][2]float32{
	{-1, -1}, {1, -1}, {1, 1},
	{-1, -1}, {1, 1}, {-1, 1},
}

func quadKernel(inv *software.Invocation) ([4]float32, []float32) {
	p := quadCorners[inv.VertexIndex%6]
	return [4]float32{p[0], p[1], 0, 1}, []float32{p[0]*0.5 + 0.5, p[1]*0.5 + 0.5}
}

func cellsKernel(inv *software.Invocation, varyings []float32) [4]float32 {
	size := inv.UVec2(GridSize)
	if size[0] == 0 || size[1] == 0 || len(varyings) < 2 {
		return inv.Vec4(Background)
	}
	x := min(uint32(max(varyings[0], 0)*float32(size[0])), size[0]-1)
	y := min(uint32(max(varyings[1], 0)*float32(size[1])), size[1]-1)
	t := float32(inv.Image(CellsTexture).Load(int(y*size[0]+x))) / 255

	bg, fg := inv.Vec4(Background), inv.Vec4(AliveColor)
	var out [4]float32
	for i := range out {
		out[i] = bg[i] + (fg[i]-bg[i])*t
	}
	return out
}

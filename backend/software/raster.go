package software

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/life/gpucore"
)

type vertexOut struct {
	position [4]float32
	varyings []float32
}

// rasterize fills every pixel whose center lies inside the triangle,
// interpolating varyings with barycentric weights. Both windings are
// filled (no culling) and no blending is applied.
func rasterize(dst *image.RGBA, tri [3]vertexOut, shade func(varyings []float32) [4]float32) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	var sx, sy [3]float32
	for i, v := range tri {
		cw := v.position[3]
		if cw == 0 {
			return
		}
		sx[i] = (v.position[0]/cw + 1) * 0.5 * float32(w)
		sy[i] = (1 - v.position[1]/cw) * 0.5 * float32(h)
	}

	area := edge(sx[0], sy[0], sx[1], sy[1], sx[2], sy[2])
	if area == 0 {
		return
	}

	minX := max(0, int(math.Floor(float64(min(sx[0], sx[1], sx[2])))))
	maxX := min(w-1, int(math.Ceil(float64(max(sx[0], sx[1], sx[2])))))
	minY := max(0, int(math.Floor(float64(min(sy[0], sy[1], sy[2])))))
	maxY := min(h-1, int(math.Ceil(float64(max(sy[0], sy[1], sy[2])))))

	n := min(len(tri[0].varyings), len(tri[1].varyings), len(tri[2].varyings))
	varyings := make([]float32, n)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(sx[1], sy[1], sx[2], sy[2], px, py) / area
			w1 := edge(sx[2], sy[2], sx[0], sy[0], px, py) / area
			w2 := edge(sx[0], sy[0], sx[1], sy[1], px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			for k := range varyings {
				varyings[k] = w0*tri[0].varyings[k] + w1*tri[1].varyings[k] + w2*tri[2].varyings[k]
			}
			c := shade(varyings)
			dst.SetRGBA(x, y, toRGBA(gpucore.Color{R: c[0], G: c[1], B: c[2], A: c[3]}))
		}
	}
}

// edge is twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func toRGBA(c gpucore.Color) color.RGBA {
	return color.RGBA{R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: unorm8(c.A)}
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

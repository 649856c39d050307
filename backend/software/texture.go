package software

import (
	"encoding/binary"

	"github.com/gogpu/life/gpucore"
)

type texture struct {
	width, height int
	format        gpucore.TextureFormat
	data          []byte
}

func newTexture(width, height int, format gpucore.TextureFormat) *texture {
	return &texture{
		width:  width,
		height: height,
		format: format,
		data:   make([]byte, width*height*format.BytesPerTexel()),
	}
}

// Image is a kernel's view of a texture bound as a storage array with one
// u32 per texel, row-major from the bottom row. R8 texels hold 0..255;
// RGBA8 texels are packed with R in the low byte.
//
// The zero Image is unbound: loads return 0 and stores are dropped.
type Image struct {
	tex    *texture
	access gpucore.Access
}

// Bound reports whether a texture is behind the view.
func (im Image) Bound() bool { return im.tex != nil }

// Width returns the texture width in texels.
func (im Image) Width() int {
	if im.tex == nil {
		return 0
	}
	return im.tex.width
}

// Height returns the texture height in texels.
func (im Image) Height() int {
	if im.tex == nil {
		return 0
	}
	return im.tex.height
}

// Len returns the number of texels.
func (im Image) Len() int { return im.Width() * im.Height() }

// Load returns texel i. Out of range reads return 0.
func (im Image) Load(i int) uint32 {
	if im.tex == nil || i < 0 || i >= im.Len() {
		return 0
	}
	if im.tex.format == gpucore.TextureFormatRGBA8Unorm {
		return binary.LittleEndian.Uint32(im.tex.data[i*4:])
	}
	return uint32(im.tex.data[i])
}

// Store writes texel i. Stores through a read-only binding or out of
// range are dropped.
func (im Image) Store(i int, v uint32) {
	if im.tex == nil || !im.access.CanWrite() || i < 0 || i >= im.Len() {
		return
	}
	if im.tex.format == gpucore.TextureFormatRGBA8Unorm {
		binary.LittleEndian.PutUint32(im.tex.data[i*4:], v)
		return
	}
	im.tex.data[i] = uint8(v)
}

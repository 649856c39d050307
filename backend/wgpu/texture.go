//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life/gpucore"
)

// texture is a storage buffer with one u32 per texel.
type texture struct {
	width, height int
	format        gpucore.TextureFormat
	buf           hal.Buffer
}

func (t *texture) texels() int { return t.width * t.height }

func (t *texture) size() uint64 { return uint64(t.texels()) * 4 }

// CreateTexture allocates a zero-filled storage buffer for the texture.
func (d *Device) CreateTexture(width, height int, format gpucore.TextureFormat) (gpucore.TextureID, error) {
	if width <= 0 || height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: invalid texture size %dx%d", width, height)
	}
	if format.BytesPerTexel() == 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: unsupported format %v", format)
	}
	t := &texture{width: width, height: height, format: format}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("texture_%dx%d", width, height),
		Size:  t.size(),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create texture buffer: %w", err)
	}
	t.buf = buf
	d.queue.WriteBuffer(buf, 0, make([]byte, t.size()))

	id := gpucore.TextureID(d.newID())
	d.textures[id] = t
	return id, nil
}

// WriteTexture uploads tightly packed texels.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("wgpu: texture %d does not exist", id)
	}
	if want := t.texels() * t.format.BytesPerTexel(); len(data) != want {
		return fmt.Errorf("wgpu: texture %d expects %d bytes, got %d", id, want, len(data))
	}
	d.queue.WriteBuffer(t.buf, 0, packTexels(data, t.format))
	return nil
}

// ReadTexture copies the texture into a staging buffer, waits for the
// copy and unpacks the texels.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("wgpu: texture %d does not exist", id)
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "texture_staging",
		Size:  t.size(),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.encoder("texture_readback")
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	enc.CopyBufferToBuffer(t.buf, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: t.size()},
	})
	if err := d.submit(enc, nil); err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	if err := d.wait(); err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}

	words := make([]byte, t.size())
	if err := d.queue.ReadBuffer(staging, 0, words); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	return unpackTexels(words, t.format), nil
}

// DeleteTexture releases the texture's buffer once pending work completes.
func (d *Device) DeleteTexture(id gpucore.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	delete(d.textures, id)
	if err := d.wait(); err != nil {
		d.log().Warn("wgpu: texture released while busy", "id", id, "err", err)
	}
	d.device.DestroyBuffer(t.buf)
}

// BindImageTexture attaches a texture to an image unit.
func (d *Device) BindImageTexture(unit uint32, id gpucore.TextureID, access gpucore.Access, format gpucore.TextureFormat) {
	d.images[unit] = imageBinding{texture: id, access: access, format: format}
}

// BindTexture attaches a texture to a sampling unit.
func (d *Device) BindTexture(unit uint32, id gpucore.TextureID) {
	d.sampled[unit] = id
}

// packTexels widens tightly packed texels to one little-endian u32 each.
// RGBA8 texels already have that layout.
func packTexels(data []byte, format gpucore.TextureFormat) []byte {
	if format == gpucore.TextureFormatRGBA8Unorm {
		return append([]byte(nil), data...)
	}
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

// unpackTexels is the inverse of packTexels. R8 texels keep the low byte.
func unpackTexels(words []byte, format gpucore.TextureFormat) []byte {
	if format == gpucore.TextureFormatRGBA8Unorm {
		return words
	}
	out := make([]byte, len(words)/4)
	for i := range out {
		out[i] = words[i*4]
	}
	return out
}

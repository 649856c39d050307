//go:build !nogpu

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life/gpucore"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// framebuffer is the offscreen render target sized by Viewport.
type framebuffer struct {
	tex           hal.Texture
	view          hal.TextureView
	width, height uint32
}

func (fb *framebuffer) ensure(device hal.Device, w, h uint32) error {
	if fb.tex != nil && fb.width == w && fb.height == h {
		return nil
	}
	fb.destroy(device)

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "life_framebuffer",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        framebufferFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create framebuffer: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "life_framebuffer_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("create framebuffer view: %w", err)
	}
	fb.tex, fb.view, fb.width, fb.height = tex, view, w, h
	return nil
}

func (fb *framebuffer) destroy(device hal.Device) {
	if fb.view != nil {
		device.DestroyTextureView(fb.view)
	}
	if fb.tex != nil {
		device.DestroyTexture(fb.tex)
	}
	*fb = framebuffer{}
}

// bindGroup binds the program's uniform buffers and the textures attached
// to the units its resources point at. Compute programs read image units;
// render programs read texture units.
func (d *Device) bindGroup(p *program) (hal.BindGroup, error) {
	var entries []gputypes.BindGroupEntry
	for i, b := range p.meta.Uniforms {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  b.Binding,
			Resource: gputypes.BufferBinding{Buffer: p.uniformBufs[i].NativeHandle(), Offset: 0, Size: uint64(b.Size)},
		})
	}
	for _, r := range p.meta.Resources {
		unit := p.units[r.Name]
		var id gpucore.TextureID
		if p.kind == gpucore.StageCompute {
			img, ok := d.images[unit]
			if !ok {
				return nil, fmt.Errorf("%s: no texture on image unit %d", r.Name, unit)
			}
			if r.Access.CanWrite() && !img.access.CanWrite() {
				d.log().Debug("wgpu: writable resource bound read-only", "resource", r.Name, "unit", unit)
			}
			id = img.texture
		} else {
			var ok bool
			if id, ok = d.sampled[unit]; !ok {
				return nil, fmt.Errorf("%s: no texture on texture unit %d", r.Name, unit)
			}
		}
		t, ok := d.textures[id]
		if !ok {
			return nil, fmt.Errorf("%s: texture %d does not exist", r.Name, id)
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  r.Binding,
			Resource: gputypes.BufferBinding{Buffer: t.buf.NativeHandle(), Offset: 0, Size: t.size()},
		})
	}

	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "life_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	return bg, nil
}

// DispatchCompute records and submits one compute pass.
func (d *Device) DispatchCompute(groupsX, groupsY, groupsZ uint32) {
	p := d.active
	if p == nil || p.compute == nil {
		d.log().Warn("wgpu: dispatch without an active compute program")
		return
	}
	if err := d.dispatch(p, groupsX, groupsY, groupsZ); err != nil {
		d.log().Error("wgpu: dispatch failed", "program", p.id, "err", err)
	}
}

func (d *Device) dispatch(p *program, x, y, z uint32) error {
	d.flushUniforms(p)
	bg, err := d.bindGroup(p)
	if err != nil {
		return err
	}
	enc, err := d.encoder("life_compute")
	if err != nil {
		d.device.DestroyBindGroup(bg)
		return err
	}
	pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "life_compute_pass"})
	pass.SetPipeline(p.compute)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(x, y, z)
	pass.End()
	return d.submit(enc, []hal.BindGroup{bg})
}

// MemoryBarrier waits for every submitted command to complete.
func (d *Device) MemoryBarrier(bits gpucore.BarrierBits) {
	if err := d.wait(); err != nil {
		d.log().Error("wgpu: barrier failed", "bits", bits, "err", err)
	}
}

// Viewport resizes the framebuffer. Contents are discarded.
func (d *Device) Viewport(_, _, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := d.wait(); err != nil {
		d.log().Warn("wgpu: viewport change while busy", "err", err)
	}
	if err := d.fb.ensure(d.device, uint32(width), uint32(height)); err != nil {
		d.log().Error("wgpu: viewport failed", "err", err)
	}
}

// ClearColor sets the clear color.
func (d *Device) ClearColor(c gpucore.Color) {
	d.clearColor = c
}

// Clear records a render pass that only clears the framebuffer.
func (d *Device) Clear() {
	if err := d.renderPass(nil, 0, 0, true); err != nil {
		d.log().Error("wgpu: clear failed", "err", err)
	}
}

// DrawArrays draws count vertices as a triangle list.
func (d *Device) DrawArrays(first, count int) {
	p := d.active
	if p == nil || p.render == nil {
		d.log().Warn("wgpu: draw without an active render program")
		return
	}
	if count <= 0 || first < 0 {
		return
	}
	if err := d.renderPass(p, uint32(first), uint32(count), false); err != nil {
		d.log().Error("wgpu: draw failed", "program", p.id, "err", err)
	}
}

func (d *Device) renderPass(p *program, first, count uint32, clearTarget bool) error {
	if d.fb.tex == nil {
		if err := d.fb.ensure(d.device, 1, 1); err != nil {
			return err
		}
	}

	var groups []hal.BindGroup
	if p != nil {
		d.flushUniforms(p)
		bg, err := d.bindGroup(p)
		if err != nil {
			return err
		}
		groups = append(groups, bg)
	}

	enc, err := d.encoder("life_render")
	if err != nil {
		d.destroyGroups(groups)
		return err
	}
	load := gputypes.LoadOpLoad
	if clearTarget {
		load = gputypes.LoadOpClear
	}
	c := d.clearColor
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "life_render_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.fb.view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
		}},
	})
	if p != nil {
		rp.SetPipeline(p.render)
		rp.SetBindGroup(0, groups[0], nil)
		rp.Draw(count, 1, first, 0)
	}
	rp.End()
	return d.submit(enc, groups)
}

// ReadPixels copies the framebuffer to a staging buffer with 256-byte
// aligned rows and returns it top row first.
func (d *Device) ReadPixels() (*image.RGBA, error) {
	if d.fb.tex == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}
	w, h := d.fb.width, d.fb.height
	bytesPerRow := w * 4
	aligned := alignRow(bytesPerRow)
	size := uint64(aligned) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "framebuffer_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.encoder("framebuffer_readback")
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.fb.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(d.fb.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: d.fb.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.fb.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := d.submit(enc, nil); err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	if err := d.wait(); err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}

	readback := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	stripRowPadding(img.Pix, readback, int(bytesPerRow), int(aligned), int(h))
	return img, nil
}

// alignRow rounds a row pitch up to copyPitchAlignment.
func alignRow(bytesPerRow uint32) uint32 {
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// stripRowPadding drops the per-row padding of an aligned readback.
func stripRowPadding(dst, src []byte, tight, padded, rows int) {
	if tight == padded {
		copy(dst, src[:tight*rows])
		return
	}
	for row := 0; row < rows; row++ {
		copy(dst[row*tight:(row+1)*tight], src[row*padded:row*padded+tight])
	}
}

package shader

import "github.com/gogpu/life/gpucore"

// Binding is the last attachment made to a unit through a BindingTable.
type Binding struct {
	Texture gpucore.TextureID
	Access  gpucore.Access
	Format  gpucore.TextureFormat
	Sampled bool
}

// BindingTable attaches textures to the device's image and texture units.
//
// Bindings are device state: they are not owned by any program and stay in
// effect until rebound. The table only remembers what it bound last, for
// inspection.
type BindingTable struct {
	dev    gpucore.Device
	images map[uint32]Binding
	sample map[uint32]Binding
}

// NewBindingTable creates a table bound to dev.
func NewBindingTable(dev gpucore.Device) *BindingTable {
	return &BindingTable{
		dev:    dev,
		images: make(map[uint32]Binding),
		sample: make(map[uint32]Binding),
	}
}

// BindImage attaches tex to an image unit for load/store with the given
// access and format. The format must match the texture's storage format;
// a mismatch is not detected.
func (t *BindingTable) BindImage(tex gpucore.TextureID, unit uint32, access gpucore.Access, format gpucore.TextureFormat) {
	t.dev.BindImageTexture(unit, tex, access, format)
	t.images[unit] = Binding{Texture: tex, Access: access, Format: format}
}

// BindTexture attaches tex to a sampling unit.
func (t *BindingTable) BindTexture(tex gpucore.TextureID, unit uint32) {
	t.dev.BindTexture(unit, tex)
	t.sample[unit] = Binding{Texture: tex, Access: gpucore.ReadOnly, Sampled: true}
}

// Image returns the last image binding made on unit.
func (t *BindingTable) Image(unit uint32) (Binding, bool) {
	b, ok := t.images[unit]
	return b, ok
}

// Texture returns the last sampling binding made on unit.
func (t *BindingTable) Texture(unit uint32) (Binding, bool) {
	b, ok := t.sample[unit]
	return b, ok
}

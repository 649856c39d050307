//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life/backend"
	"github.com/gogpu/life/gpucore"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// waitTimeout bounds every fence wait.
const waitTimeout = 5 * time.Second

// ErrNoAdapter is returned by Open when no GPU adapter is available.
var ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

func init() {
	backend.Register(backend.BackendWGPU, func() (gpucore.Device, error) {
		return Open()
	})
}

// Device is a gpucore.Device backed by a HAL device and queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string
	external bool

	logger *slog.Logger

	nextID   uint64
	shaders  map[gpucore.ShaderID]*shaderObject
	programs map[gpucore.ProgramID]*program
	textures map[gpucore.TextureID]*texture
	active   *program

	images  map[uint32]imageBinding
	sampled map[uint32]gpucore.TextureID

	fb         framebuffer
	clearColor gpucore.Color

	fence     hal.Fence
	submitted uint64
	completed uint64
	inflight  []inflight
}

var _ gpucore.Device = (*Device)(nil)

type imageBinding struct {
	texture gpucore.TextureID
	access  gpucore.Access
	format  gpucore.TextureFormat
}

// inflight holds the per-submission resources released once the fence
// passes value.
type inflight struct {
	value  uint64
	cmd    hal.CommandBuffer
	groups []hal.BindGroup
}

// Open creates a Vulkan instance and opens the first discrete or
// integrated adapter, falling back to the first adapter listed.
func Open() (*Device, error) {
	be, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := be.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d, err := newDevice(openDev.Device, openDev.Queue)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.adapter = selected.Info.Name
	d.log().Info("wgpu: device opened", "adapter", d.adapter)
	return d, nil
}

// NewFromProvider wraps the device of a host application. The provider
// must also expose HalDevice() and HalQueue() returning hal.Device and
// hal.Queue. The shared device is not destroyed by Destroy.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	d, err := newDevice(device, queue)
	if err != nil {
		return nil, err
	}
	d.external = true
	return d, nil
}

func newDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fence: %w", err)
	}
	return &Device{
		device:   device,
		queue:    queue,
		nextID:   1,
		shaders:  make(map[gpucore.ShaderID]*shaderObject),
		programs: make(map[gpucore.ProgramID]*program),
		textures: make(map[gpucore.TextureID]*texture),
		images:   make(map[uint32]imageBinding),
		sampled:  make(map[uint32]gpucore.TextureID),
		fence:    fence,
	}, nil
}

// Name returns "wgpu".
func (d *Device) Name() string { return backend.BackendWGPU }

// Adapter returns the name of the opened adapter, or "" for a device
// taken from a provider.
func (d *Device) Adapter() string { return d.adapter }

// SetLogger sets the logger for device diagnostics. Pass nil to disable
// logging.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	d.logger = l
}

func (d *Device) log() *slog.Logger {
	if d.logger == nil {
		return newNopLogger()
	}
	return d.logger
}

func (d *Device) newID() uint64 {
	id := d.nextID
	d.nextID++
	return id
}

// submit finishes an encoder and queues it behind the device fence.
// groups are released with the command buffer once it completes.
func (d *Device) submit(encoder hal.CommandEncoder, groups []hal.BindGroup) error {
	cmd, err := encoder.EndEncoding()
	if err != nil {
		d.destroyGroups(groups)
		return fmt.Errorf("end encoding: %w", err)
	}
	d.submitted++
	if err := d.queue.Submit([]hal.CommandBuffer{cmd}, d.fence, d.submitted); err != nil {
		d.submitted--
		d.device.FreeCommandBuffer(cmd)
		d.destroyGroups(groups)
		return fmt.Errorf("submit: %w", err)
	}
	d.inflight = append(d.inflight, inflight{value: d.submitted, cmd: cmd, groups: groups})
	return nil
}

// wait blocks until every submitted command buffer has completed.
func (d *Device) wait() error {
	if d.completed == d.submitted {
		return nil
	}
	ok, err := d.device.Wait(d.fence, d.submitted, waitTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	d.completed = d.submitted
	for _, f := range d.inflight {
		d.device.FreeCommandBuffer(f.cmd)
		d.destroyGroups(f.groups)
	}
	d.inflight = d.inflight[:0]
	return nil
}

func (d *Device) destroyGroups(groups []hal.BindGroup) {
	for _, g := range groups {
		if g != nil {
			d.device.DestroyBindGroup(g)
		}
	}
}

func (d *Device) encoder(label string) (hal.CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return enc, nil
}

// Destroy waits for outstanding work and releases every resource. The
// HAL device is destroyed unless it came from a provider.
func (d *Device) Destroy() {
	if d.device == nil {
		return
	}
	if err := d.wait(); err != nil {
		d.log().Warn("wgpu: destroy without idle", "err", err)
	}
	for id := range d.programs {
		d.DeleteProgram(id)
	}
	for id := range d.shaders {
		d.DeleteShader(id)
	}
	for id := range d.textures {
		d.DeleteTexture(id)
	}
	d.fb.destroy(d.device)
	d.device.DestroyFence(d.fence)

	if !d.external {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device, d.queue, d.instance = nil, nil, nil
}

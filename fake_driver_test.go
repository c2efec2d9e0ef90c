package vkframe

import (
	"fmt"
	"strings"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// fakeGPU describes one physical device exposed by fakeDriver.
type fakeGPU struct {
	name       string
	deviceType vk.PhysicalDeviceType
	families   []vk.QueueFamilyProperties
	present    []bool
	extensions []string
	features   vk.PhysicalDeviceFeatures
	depth      []vk.Format
	samples    vk.SampleCountFlagBits
}

func unifiedGPU(name string) *fakeGPU {
	return &fakeGPU{
		name:       name,
		deviceType: vk.PhysicalDeviceTypeDiscreteGpu,
		families: []vk.QueueFamilyProperties{{
			QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit),
			QueueCount: 16,
		}},
		present:    []bool{true},
		extensions: []string{"VK_KHR_swapchain"},
		features:   vk.PhysicalDeviceFeatures{SamplerAnisotropy: vk.True},
		depth:      []vk.Format{vk.FormatD32Sfloat},
		samples:    vk.SampleCount1Bit | vk.SampleCount2Bit | vk.SampleCount4Bit,
	}
}

// fakeDriver records every call in order and fabricates handles. GPU work
// completes the moment it is submitted, so a fence is signaled by the
// submission that carries it.
type fakeDriver struct {
	calls []string

	instanceExtensions []string
	layers             []string
	gpus               []*fakeGPU

	caps     vk.SurfaceCapabilities
	formats  []vk.SurfaceFormat
	modes    []vk.PresentMode
	fail     map[string]vk.Result
	acquire  []vk.Result
	presents []vk.Result

	names    map[unsafe.Pointer]string
	counts   map[string]int
	next     uintptr
	signaled map[unsafe.Pointer]bool
	queues   map[uint32]vk.Queue
	mapped   map[unsafe.Pointer][]byte

	swapchainInfos []vk.SwapchainCreateInfo
	deviceInfo     *vk.DeviceCreateInfo
	instanceInfo   *vk.InstanceCreateInfo
	copies         [][]vk.BufferCopy
	acquireIndex   uint32
	imageCount     uint32

	// violations collects protocol errors, such as waiting on a fence that
	// no pending submission will ever signal.
	violations []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		instanceExtensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", debugReportExtension},
		layers:             []string{"VK_LAYER_KHRONOS_validation"},
		gpus:               []*fakeGPU{unifiedGPU("fake discrete")},
		caps: vk.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           0,
			CurrentExtent:           vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          vk.Extent2D{Width: 4096, Height: 4096},
			SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
			CurrentTransform:        vk.SurfaceTransformIdentityBit,
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
			SupportedUsageFlags:     vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		},
		formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		modes:    []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		fail:     map[string]vk.Result{},
		names:    map[unsafe.Pointer]string{},
		counts:   map[string]int{},
		signaled: map[unsafe.Pointer]bool{},
		queues:   map[uint32]vk.Queue{},
		mapped:   map[unsafe.Pointer][]byte{},
	}
}

// fakeHandleBase keeps fabricated handles outside the Go heap. Handle types
// point at incomplete C structs, and reflect rejects heap addresses for them.
const fakeHandleBase = 1 << 20

// addr returns a fresh address that is never dereferenced.
func (f *fakeDriver) addr() unsafe.Pointer {
	f.next += 16
	return unsafe.Add(unsafe.Pointer(nil), fakeHandleBase+f.next)
}

func (f *fakeDriver) handle(kind string) unsafe.Pointer {
	p := f.addr()
	f.names[p] = fmt.Sprintf("%s%d", kind, f.counts[kind])
	f.counts[kind]++
	return p
}

func (f *fakeDriver) name(p unsafe.Pointer) string {
	if p == nil {
		return "nil"
	}
	if n, ok := f.names[p]; ok {
		return n
	}
	return "?"
}

func (f *fakeDriver) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// result returns the injected failure for call, if any.
func (f *fakeDriver) result(call string) vk.Result {
	if ret, ok := f.fail[call]; ok {
		return ret
	}
	return vk.Success
}

// callsWith returns the recorded calls starting with prefix.
func (f *fakeDriver) callsWith(prefix string) []string {
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// indexOf returns the position of the first call equal to call at or after
// from, or -1.
func (f *fakeDriver) indexOf(call string, from int) int {
	for i := from; i < len(f.calls); i++ {
		if f.calls[i] == call {
			return i
		}
	}
	return -1
}

func (f *fakeDriver) resetCalls() {
	f.calls = nil
}

func (f *fakeDriver) gpu(h vk.PhysicalDevice) *fakeGPU {
	name := f.name(unsafe.Pointer(h))
	var i int
	fmt.Sscanf(name, "gpu%d", &i)
	return f.gpus[i]
}

func (f *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result) {
	f.instanceInfo = info
	if ret := f.result("CreateInstance"); ret != vk.Success {
		return nil, ret
	}
	h := vk.Instance(f.handle("instance"))
	f.record("CreateInstance %s", f.name(unsafe.Pointer(h)))
	return h, vk.Success
}

func (f *fakeDriver) DestroyInstance(instance vk.Instance) {
	f.record("DestroyInstance %s", f.name(unsafe.Pointer(instance)))
}

func (f *fakeDriver) InstanceExtensions() ([]string, vk.Result) {
	return f.instanceExtensions, f.result("InstanceExtensions")
}

func (f *fakeDriver) InstanceLayers() ([]string, vk.Result) {
	return f.layers, f.result("InstanceLayers")
}

func (f *fakeDriver) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, vk.Result) {
	h := vk.DebugReportCallback(f.handle("debug"))
	f.record("CreateDebugCallback %s", f.name(unsafe.Pointer(h)))
	return h, vk.Success
}

func (f *fakeDriver) DestroyDebugCallback(instance vk.Instance, cb vk.DebugReportCallback) {
	f.record("DestroyDebugCallback %s", f.name(unsafe.Pointer(cb)))
}

func (f *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	f.record("DestroySurface %s", f.name(unsafe.Pointer(surface)))
}

func (f *fakeDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result) {
	if ret := f.result("EnumeratePhysicalDevices"); ret != vk.Success {
		return nil, ret
	}
	out := make([]vk.PhysicalDevice, len(f.gpus))
	for i := range f.gpus {
		p := f.addr()
		f.names[p] = fmt.Sprintf("gpu%d", i)
		out[i] = vk.PhysicalDevice(p)
	}
	return out, vk.Success
}

func (f *fakeDriver) PhysicalDeviceProperties(h vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	g := f.gpu(h)
	var props vk.PhysicalDeviceProperties
	copy(props.DeviceName[:], g.name)
	props.DeviceType = g.deviceType
	props.Limits.FramebufferColorSampleCounts = vk.SampleCountFlags(g.samples)
	props.Limits.FramebufferDepthSampleCounts = vk.SampleCountFlags(g.samples)
	return props
}

func (f *fakeDriver) PhysicalDeviceFeatures(h vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	return f.gpu(h).features
}

func (f *fakeDriver) PhysicalDeviceMemoryProperties(h vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 2
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	return props
}

func (f *fakeDriver) FormatProperties(h vk.PhysicalDevice, format vk.Format) vk.FormatProperties {
	var props vk.FormatProperties
	for _, d := range f.gpu(h).depth {
		if d == format {
			props.OptimalTilingFeatures = vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
		}
	}
	return props
}

func (f *fakeDriver) QueueFamilyProperties(h vk.PhysicalDevice) []vk.QueueFamilyProperties {
	return f.gpu(h).families
}

func (f *fakeDriver) DeviceExtensions(h vk.PhysicalDevice) ([]string, vk.Result) {
	return f.gpu(h).extensions, vk.Success
}

func (f *fakeDriver) SurfaceSupport(h vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result) {
	return f.gpu(h).present[family], vk.Success
}

func (f *fakeDriver) SurfaceCapabilities(h vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	f.record("SurfaceCapabilities")
	return f.caps, f.result("SurfaceCapabilities")
}

func (f *fakeDriver) SurfaceFormats(h vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	return f.formats, vk.Success
}

func (f *fakeDriver) SurfacePresentModes(h vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result) {
	return f.modes, vk.Success
}

func (f *fakeDriver) CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result) {
	f.deviceInfo = info
	if ret := f.result("CreateDevice"); ret != vk.Success {
		return nil, ret
	}
	h := vk.Device(f.handle("device"))
	f.record("CreateDevice %s", f.name(unsafe.Pointer(h)))
	return h, vk.Success
}

func (f *fakeDriver) DestroyDevice(dev vk.Device) {
	f.record("DestroyDevice %s", f.name(unsafe.Pointer(dev)))
}

func (f *fakeDriver) DeviceQueue(dev vk.Device, family, index uint32) vk.Queue {
	if q, ok := f.queues[family]; ok {
		return q
	}
	p := f.addr()
	f.names[p] = fmt.Sprintf("queue%d", family)
	f.queues[family] = vk.Queue(p)
	return f.queues[family]
}

func (f *fakeDriver) DeviceWaitIdle(dev vk.Device) vk.Result {
	f.record("DeviceWaitIdle")
	return vk.Success
}

func (f *fakeDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	f.record("QueueSubmit %s %s", f.name(unsafe.Pointer(queue)), f.name(unsafe.Pointer(fence)))
	if ret := f.result("QueueSubmit"); ret != vk.Success {
		return ret
	}
	if fence != nil {
		if f.signaled[unsafe.Pointer(fence)] {
			f.violations = append(f.violations, "submit with signaled "+f.name(unsafe.Pointer(fence)))
		}
		f.signaled[unsafe.Pointer(fence)] = true
	}
	return vk.Success
}

func (f *fakeDriver) CreateCommandPool(dev vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result) {
	kind := "resettable"
	if info.Flags&vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit) != 0 {
		kind = "transient"
	}
	h := vk.CommandPool(f.handle(kind))
	f.record("CreateCommandPool %s family=%d", f.name(unsafe.Pointer(h)), info.QueueFamilyIndex)
	return h, vk.Success
}

func (f *fakeDriver) DestroyCommandPool(dev vk.Device, pool vk.CommandPool) {
	f.record("DestroyCommandPool %s", f.name(unsafe.Pointer(pool)))
}

func (f *fakeDriver) AllocateCommandBuffers(dev vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result) {
	out := make([]vk.CommandBuffer, info.CommandBufferCount)
	for i := range out {
		out[i] = vk.CommandBuffer(f.handle("cmd"))
	}
	f.record("AllocateCommandBuffers %s %d", f.name(unsafe.Pointer(info.CommandPool)), info.CommandBufferCount)
	return out, vk.Success
}

func (f *fakeDriver) FreeCommandBuffers(dev vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	f.record("FreeCommandBuffers %s %d", f.name(unsafe.Pointer(pool)), len(buffers))
}

func (f *fakeDriver) ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	f.record("ResetCommandBuffer %s", f.name(unsafe.Pointer(cmd)))
	return vk.Success
}

func (f *fakeDriver) BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result {
	f.record("BeginCommandBuffer %s", f.name(unsafe.Pointer(cmd)))
	return vk.Success
}

func (f *fakeDriver) EndCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	f.record("EndCommandBuffer %s", f.name(unsafe.Pointer(cmd)))
	return vk.Success
}

func (f *fakeDriver) CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, barriers []vk.ImageMemoryBarrier) {
	f.record("CmdPipelineBarrier %d", len(barriers))
}

func (f *fakeDriver) CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	f.record("CmdCopyBuffer %s %s", f.name(unsafe.Pointer(src)), f.name(unsafe.Pointer(dst)))
	f.copies = append(f.copies, regions)
}

func (f *fakeDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	f.record("CmdBeginRenderPass %s %s", f.name(unsafe.Pointer(info.RenderPass)), f.name(unsafe.Pointer(info.Framebuffer)))
}

func (f *fakeDriver) CmdEndRenderPass(cmd vk.CommandBuffer) {
	f.record("CmdEndRenderPass")
}

func (f *fakeDriver) CreateFence(dev vk.Device, signaled bool) (vk.Fence, vk.Result) {
	h := vk.Fence(f.handle("fence"))
	f.signaled[unsafe.Pointer(h)] = signaled
	f.record("CreateFence %s signaled=%t", f.name(unsafe.Pointer(h)), signaled)
	return h, vk.Success
}

func (f *fakeDriver) DestroyFence(dev vk.Device, fence vk.Fence) {
	f.record("DestroyFence %s", f.name(unsafe.Pointer(fence)))
}

func (f *fakeDriver) WaitForFences(dev vk.Device, fences []vk.Fence, timeout uint64) vk.Result {
	for _, fence := range fences {
		f.record("WaitForFences %s", f.name(unsafe.Pointer(fence)))
		if !f.signaled[unsafe.Pointer(fence)] {
			f.violations = append(f.violations, "wait on unsignaled "+f.name(unsafe.Pointer(fence)))
		}
	}
	return f.result("WaitForFences")
}

func (f *fakeDriver) ResetFences(dev vk.Device, fences []vk.Fence) vk.Result {
	for _, fence := range fences {
		f.record("ResetFences %s", f.name(unsafe.Pointer(fence)))
		f.signaled[unsafe.Pointer(fence)] = false
	}
	return vk.Success
}

func (f *fakeDriver) CreateSemaphore(dev vk.Device) (vk.Semaphore, vk.Result) {
	h := vk.Semaphore(f.handle("sem"))
	f.record("CreateSemaphore %s", f.name(unsafe.Pointer(h)))
	return h, vk.Success
}

func (f *fakeDriver) DestroySemaphore(dev vk.Device, sem vk.Semaphore) {
	f.record("DestroySemaphore %s", f.name(unsafe.Pointer(sem)))
}

func (f *fakeDriver) CreateSwapchain(dev vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	f.swapchainInfos = append(f.swapchainInfos, *info)
	if ret := f.result("CreateSwapchain"); ret != vk.Success {
		return vk.NullSwapchain, ret
	}
	h := vk.Swapchain(f.handle("swapchain"))
	f.imageCount = info.MinImageCount
	f.acquireIndex = 0
	f.record("CreateSwapchain %s old=%s", f.name(unsafe.Pointer(h)), f.name(unsafe.Pointer(info.OldSwapchain)))
	return h, vk.Success
}

func (f *fakeDriver) DestroySwapchain(dev vk.Device, swapchain vk.Swapchain) {
	f.record("DestroySwapchain %s", f.name(unsafe.Pointer(swapchain)))
}

func (f *fakeDriver) SwapchainImages(dev vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result) {
	out := make([]vk.Image, f.imageCount)
	for i := range out {
		out[i] = vk.Image(f.handle("swapimage"))
	}
	return out, vk.Success
}

func (f *fakeDriver) AcquireNextImage(dev vk.Device, swapchain vk.Swapchain, timeout uint64, sem vk.Semaphore) (uint32, vk.Result) {
	f.record("AcquireNextImage %s %s", f.name(unsafe.Pointer(swapchain)), f.name(unsafe.Pointer(sem)))
	ret := vk.Success
	if len(f.acquire) > 0 {
		ret, f.acquire = f.acquire[0], f.acquire[1:]
	}
	if ret != vk.Success && ret != vk.Suboptimal {
		return 0, ret
	}
	index := f.acquireIndex
	f.acquireIndex = (f.acquireIndex + 1) % f.imageCount
	return index, ret
}

func (f *fakeDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	f.record("QueuePresent %s %s", f.name(unsafe.Pointer(queue)), f.name(unsafe.Pointer(info.PWaitSemaphores[0])))
	if len(f.presents) > 0 {
		var ret vk.Result
		ret, f.presents = f.presents[0], f.presents[1:]
		return ret
	}
	return vk.Success
}

func (f *fakeDriver) CreateImage(dev vk.Device, info *vk.ImageCreateInfo) (vk.Image, vk.Result) {
	h := vk.Image(f.handle("image"))
	f.record("CreateImage %s samples=%d", f.name(unsafe.Pointer(h)), info.Samples)
	return h, vk.Success
}

func (f *fakeDriver) DestroyImage(dev vk.Device, image vk.Image) {
	f.record("DestroyImage %s", f.name(unsafe.Pointer(image)))
}

func (f *fakeDriver) ImageMemoryRequirements(dev vk.Device, image vk.Image) vk.MemoryRequirements {
	return vk.MemoryRequirements{Size: 1 << 20, Alignment: 256, MemoryTypeBits: 0x3}
}

func (f *fakeDriver) BindImageMemory(dev vk.Device, image vk.Image, mem vk.DeviceMemory) vk.Result {
	return vk.Success
}

func (f *fakeDriver) CreateImageView(dev vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	h := vk.ImageView(f.handle("view"))
	f.record("CreateImageView %s", f.name(unsafe.Pointer(h)))
	return h, vk.Success
}

func (f *fakeDriver) DestroyImageView(dev vk.Device, view vk.ImageView) {
	f.record("DestroyImageView %s", f.name(unsafe.Pointer(view)))
}

func (f *fakeDriver) AllocateMemory(dev vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result) {
	h := vk.DeviceMemory(f.handle("memory"))
	f.mapped[unsafe.Pointer(h)] = make([]byte, info.AllocationSize)
	f.record("AllocateMemory %s type=%d", f.name(unsafe.Pointer(h)), info.MemoryTypeIndex)
	return h, vk.Success
}

func (f *fakeDriver) FreeMemory(dev vk.Device, mem vk.DeviceMemory) {
	f.record("FreeMemory %s", f.name(unsafe.Pointer(mem)))
}

func (f *fakeDriver) MapMemory(dev vk.Device, mem vk.DeviceMemory, size vk.DeviceSize) (unsafe.Pointer, vk.Result) {
	f.record("MapMemory %s", f.name(unsafe.Pointer(mem)))
	buf := f.mapped[unsafe.Pointer(mem)]
	return unsafe.Pointer(&buf[0]), vk.Success
}

func (f *fakeDriver) UnmapMemory(dev vk.Device, mem vk.DeviceMemory) {
	f.record("UnmapMemory %s", f.name(unsafe.Pointer(mem)))
}

func (f *fakeDriver) CreateRenderPass(dev vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
	h := vk.RenderPass(f.handle("renderpass"))
	f.record("CreateRenderPass %s attachments=%d", f.name(unsafe.Pointer(h)), info.AttachmentCount)
	return h, vk.Success
}

func (f *fakeDriver) DestroyRenderPass(dev vk.Device, pass vk.RenderPass) {
	f.record("DestroyRenderPass %s", f.name(unsafe.Pointer(pass)))
}

func (f *fakeDriver) CreateFramebuffer(dev vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
	h := vk.Framebuffer(f.handle("framebuffer"))
	f.record("CreateFramebuffer %s %dx%d", f.name(unsafe.Pointer(h)), info.Width, info.Height)
	return h, vk.Success
}

func (f *fakeDriver) DestroyFramebuffer(dev vk.Device, fb vk.Framebuffer) {
	f.record("DestroyFramebuffer %s", f.name(unsafe.Pointer(fb)))
}

func (f *fakeDriver) CreateBuffer(dev vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result) {
	h := vk.Buffer(f.handle("buffer"))
	f.record("CreateBuffer %s size=%d", f.name(unsafe.Pointer(h)), info.Size)
	return h, vk.Success
}

func (f *fakeDriver) DestroyBuffer(dev vk.Device, buf vk.Buffer) {
	f.record("DestroyBuffer %s", f.name(unsafe.Pointer(buf)))
}

func (f *fakeDriver) BufferMemoryRequirements(dev vk.Device, buf vk.Buffer) vk.MemoryRequirements {
	return vk.MemoryRequirements{Size: 4096, Alignment: 256, MemoryTypeBits: 0x3}
}

func (f *fakeDriver) BindBufferMemory(dev vk.Device, buf vk.Buffer, mem vk.DeviceMemory) vk.Result {
	return vk.Success
}

// fakeWindow is a Window with a settable framebuffer size.
type fakeWindow struct {
	drv           *fakeDriver
	width, height int
	extensions    []string
}

func newFakeWindow(drv *fakeDriver) *fakeWindow {
	return &fakeWindow{
		drv:        drv,
		width:      800,
		height:     600,
		extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
	}
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return w.extensions
}

func (w *fakeWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	return vk.Surface(w.drv.handle("surface")), nil
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

// testConfig is DefaultConfig without multisampling, so framebuffers carry
// two attachments unless a test asks for more.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MSAASamples = 1
	return cfg
}

// fatalRecorder collects errors passed to a context's fatal hook.
type fatalRecorder struct {
	errs []error
}

func (r *fatalRecorder) hook(err error) {
	r.errs = append(r.errs, err)
}

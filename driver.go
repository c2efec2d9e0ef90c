package vkframe

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// driver is the set of Vulkan entry points the backend calls. vkDriver
// forwards them to the loader; query results come back already Deref'd.
type driver interface {
	// instance
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result)
	DestroyInstance(instance vk.Instance)
	InstanceExtensions() ([]string, vk.Result)
	InstanceLayers() ([]string, vk.Result)
	CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, vk.Result)
	DestroyDebugCallback(instance vk.Instance, cb vk.DebugReportCallback)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	// physical device
	EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result)
	PhysicalDeviceProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceProperties
	PhysicalDeviceFeatures(gpu vk.PhysicalDevice) vk.PhysicalDeviceFeatures
	PhysicalDeviceMemoryProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties
	FormatProperties(gpu vk.PhysicalDevice, format vk.Format) vk.FormatProperties
	QueueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties
	DeviceExtensions(gpu vk.PhysicalDevice) ([]string, vk.Result)
	SurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result)
	SurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result)
	SurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result)
	SurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result)

	// logical device and queues
	CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result)
	DestroyDevice(dev vk.Device)
	DeviceQueue(dev vk.Device, family, index uint32) vk.Queue
	DeviceWaitIdle(dev vk.Device) vk.Result
	QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result

	// command pools and buffers
	CreateCommandPool(dev vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result)
	DestroyCommandPool(dev vk.Device, pool vk.CommandPool)
	AllocateCommandBuffers(dev vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result)
	FreeCommandBuffers(dev vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)
	ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result
	BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result
	EndCommandBuffer(cmd vk.CommandBuffer) vk.Result
	CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, barriers []vk.ImageMemoryBarrier)
	CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy)
	CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo)
	CmdEndRenderPass(cmd vk.CommandBuffer)

	// synchronization
	CreateFence(dev vk.Device, signaled bool) (vk.Fence, vk.Result)
	DestroyFence(dev vk.Device, fence vk.Fence)
	WaitForFences(dev vk.Device, fences []vk.Fence, timeout uint64) vk.Result
	ResetFences(dev vk.Device, fences []vk.Fence) vk.Result
	CreateSemaphore(dev vk.Device) (vk.Semaphore, vk.Result)
	DestroySemaphore(dev vk.Device, sem vk.Semaphore)

	// swapchain
	CreateSwapchain(dev vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result)
	DestroySwapchain(dev vk.Device, swapchain vk.Swapchain)
	SwapchainImages(dev vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result)
	AcquireNextImage(dev vk.Device, swapchain vk.Swapchain, timeout uint64, sem vk.Semaphore) (uint32, vk.Result)
	QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result

	// images, memory and attachments
	CreateImage(dev vk.Device, info *vk.ImageCreateInfo) (vk.Image, vk.Result)
	DestroyImage(dev vk.Device, image vk.Image)
	ImageMemoryRequirements(dev vk.Device, image vk.Image) vk.MemoryRequirements
	BindImageMemory(dev vk.Device, image vk.Image, mem vk.DeviceMemory) vk.Result
	CreateImageView(dev vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result)
	DestroyImageView(dev vk.Device, view vk.ImageView)
	AllocateMemory(dev vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result)
	FreeMemory(dev vk.Device, mem vk.DeviceMemory)
	MapMemory(dev vk.Device, mem vk.DeviceMemory, size vk.DeviceSize) (unsafe.Pointer, vk.Result)
	UnmapMemory(dev vk.Device, mem vk.DeviceMemory)
	CreateRenderPass(dev vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result)
	DestroyRenderPass(dev vk.Device, pass vk.RenderPass)
	CreateFramebuffer(dev vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result)
	DestroyFramebuffer(dev vk.Device, fb vk.Framebuffer)

	// buffers
	CreateBuffer(dev vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result)
	DestroyBuffer(dev vk.Device, buf vk.Buffer)
	BufferMemoryRequirements(dev vk.Device, buf vk.Buffer) vk.MemoryRequirements
	BindBufferMemory(dev vk.Device, buf vk.Buffer, mem vk.DeviceMemory) vk.Result
}

// vkDriver calls straight into github.com/vulkan-go/vulkan.
type vkDriver struct{}

func (vkDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result) {
	var instance vk.Instance
	ret := vk.CreateInstance(info, nil, &instance)
	if ret == vk.Success {
		if err := vk.InitInstance(instance); err != nil {
			Logger().Warn("vulkan: InitInstance failed", "err", err)
		}
	}
	return instance, ret
}

func (vkDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (vkDriver) InstanceExtensions() ([]string, vk.Result) {
	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if isError(ret) {
		return nil, ret
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, ret
}

func (vkDriver) InstanceLayers() ([]string, vk.Result) {
	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if isError(ret) {
		return nil, ret
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	names := make([]string, 0, count)
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, ret
}

func (vkDriver) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, vk.Result) {
	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}, nil, &cb)
	return cb, ret
}

func (vkDriver) DestroyDebugCallback(instance vk.Instance, cb vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, cb, nil)
}

func (vkDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (vkDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) || count == 0 {
		return nil, ret
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, gpus)
	return gpus[:count], ret
}

func (vkDriver) PhysicalDeviceProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	props.Limits.Deref()
	return props
}

func (vkDriver) PhysicalDeviceFeatures(gpu vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()
	return features
}

func (vkDriver) PhysicalDeviceMemoryProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &props)
	props.Deref()
	for i := range props.MemoryTypes {
		props.MemoryTypes[i].Deref()
	}
	return props
}

func (vkDriver) FormatProperties(gpu vk.PhysicalDevice, format vk.Format) vk.FormatProperties {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(gpu, format, &props)
	props.Deref()
	return props
}

func (vkDriver) QueueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	for i := range props {
		props[i].Deref()
	}
	return props
}

func (vkDriver) DeviceExtensions(gpu vk.PhysicalDevice) ([]string, vk.Result) {
	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if isError(ret) {
		return nil, ret
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, ret
}

func (vkDriver) SurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, family, surface, &supported)
	return supported.B(), ret
}

func (vkDriver) SurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, ret
}

func (vkDriver) SurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, ret
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
	}
	return formats, ret
}

func (vkDriver) SurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, ret
	}
	modes := make([]vk.PresentMode, count)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	return modes, ret
}

func (vkDriver) CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result) {
	var dev vk.Device
	ret := vk.CreateDevice(gpu, info, nil, &dev)
	return dev, ret
}

func (vkDriver) DestroyDevice(dev vk.Device) {
	vk.DestroyDevice(dev, nil)
}

func (vkDriver) DeviceQueue(dev vk.Device, family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(dev, family, index, &queue)
	return queue
}

func (vkDriver) DeviceWaitIdle(dev vk.Device) vk.Result {
	return vk.DeviceWaitIdle(dev)
}

func (vkDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	return vk.QueueSubmit(queue, uint32(len(submits)), submits, fence)
}

func (vkDriver) CreateCommandPool(dev vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(dev, info, nil, &pool)
	return pool, ret
}

func (vkDriver) DestroyCommandPool(dev vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(dev, pool, nil)
}

func (vkDriver) AllocateCommandBuffers(dev vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	ret := vk.AllocateCommandBuffers(dev, info, buffers)
	return buffers, ret
}

func (vkDriver) FreeCommandBuffers(dev vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(dev, pool, uint32(len(buffers)), buffers)
}

func (vkDriver) ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.ResetCommandBuffer(cmd, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
}

func (vkDriver) BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result {
	return vk.BeginCommandBuffer(cmd, info)
}

func (vkDriver) EndCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.EndCommandBuffer(cmd)
}

func (vkDriver) CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, barriers []vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(cmd, src, dst, 0, 0, nil, 0, nil, uint32(len(barriers)), barriers)
}

func (vkDriver) CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	vk.CmdCopyBuffer(cmd, src, dst, uint32(len(regions)), regions)
}

func (vkDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(cmd, info, vk.SubpassContentsInline)
}

func (vkDriver) CmdEndRenderPass(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

func (vkDriver) CreateFence(dev vk.Device, signaled bool) (vk.Fence, vk.Result) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(dev, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fence)
	return fence, ret
}

func (vkDriver) DestroyFence(dev vk.Device, fence vk.Fence) {
	vk.DestroyFence(dev, fence, nil)
}

func (vkDriver) WaitForFences(dev vk.Device, fences []vk.Fence, timeout uint64) vk.Result {
	return vk.WaitForFences(dev, uint32(len(fences)), fences, vk.True, timeout)
}

func (vkDriver) ResetFences(dev vk.Device, fences []vk.Fence) vk.Result {
	return vk.ResetFences(dev, uint32(len(fences)), fences)
}

func (vkDriver) CreateSemaphore(dev vk.Device) (vk.Semaphore, vk.Result) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(dev, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	return sem, ret
}

func (vkDriver) DestroySemaphore(dev vk.Device, sem vk.Semaphore) {
	vk.DestroySemaphore(dev, sem, nil)
}

func (vkDriver) CreateSwapchain(dev vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(dev, info, nil, &swapchain)
	return swapchain, ret
}

func (vkDriver) DestroySwapchain(dev vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(dev, swapchain, nil)
}

func (vkDriver) SwapchainImages(dev vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result) {
	var count uint32
	ret := vk.GetSwapchainImages(dev, swapchain, &count, nil)
	if isError(ret) {
		return nil, ret
	}
	images := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(dev, swapchain, &count, images)
	return images, ret
}

func (vkDriver) AcquireNextImage(dev vk.Device, swapchain vk.Swapchain, timeout uint64, sem vk.Semaphore) (uint32, vk.Result) {
	var index uint32
	ret := vk.AcquireNextImage(dev, swapchain, timeout, sem, vk.NullFence, &index)
	return index, ret
}

func (vkDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(queue, info)
}

func (vkDriver) CreateImage(dev vk.Device, info *vk.ImageCreateInfo) (vk.Image, vk.Result) {
	var image vk.Image
	ret := vk.CreateImage(dev, info, nil, &image)
	return image, ret
}

func (vkDriver) DestroyImage(dev vk.Device, image vk.Image) {
	vk.DestroyImage(dev, image, nil)
}

func (vkDriver) ImageMemoryRequirements(dev vk.Device, image vk.Image) vk.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev, image, &req)
	req.Deref()
	return req
}

func (vkDriver) BindImageMemory(dev vk.Device, image vk.Image, mem vk.DeviceMemory) vk.Result {
	return vk.BindImageMemory(dev, image, mem, 0)
}

func (vkDriver) CreateImageView(dev vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	var view vk.ImageView
	ret := vk.CreateImageView(dev, info, nil, &view)
	return view, ret
}

func (vkDriver) DestroyImageView(dev vk.Device, view vk.ImageView) {
	vk.DestroyImageView(dev, view, nil)
}

func (vkDriver) AllocateMemory(dev vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result) {
	var mem vk.DeviceMemory
	ret := vk.AllocateMemory(dev, info, nil, &mem)
	return mem, ret
}

func (vkDriver) FreeMemory(dev vk.Device, mem vk.DeviceMemory) {
	vk.FreeMemory(dev, mem, nil)
}

func (vkDriver) MapMemory(dev vk.Device, mem vk.DeviceMemory, size vk.DeviceSize) (unsafe.Pointer, vk.Result) {
	var data unsafe.Pointer
	ret := vk.MapMemory(dev, mem, 0, size, 0, &data)
	return data, ret
}

func (vkDriver) UnmapMemory(dev vk.Device, mem vk.DeviceMemory) {
	vk.UnmapMemory(dev, mem)
}

func (vkDriver) CreateRenderPass(dev vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
	var pass vk.RenderPass
	ret := vk.CreateRenderPass(dev, info, nil, &pass)
	return pass, ret
}

func (vkDriver) DestroyRenderPass(dev vk.Device, pass vk.RenderPass) {
	vk.DestroyRenderPass(dev, pass, nil)
}

func (vkDriver) CreateFramebuffer(dev vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(dev, info, nil, &fb)
	return fb, ret
}

func (vkDriver) DestroyFramebuffer(dev vk.Device, fb vk.Framebuffer) {
	vk.DestroyFramebuffer(dev, fb, nil)
}

func (vkDriver) CreateBuffer(dev vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(dev, info, nil, &buf)
	return buf, ret
}

func (vkDriver) DestroyBuffer(dev vk.Device, buf vk.Buffer) {
	vk.DestroyBuffer(dev, buf, nil)
}

func (vkDriver) BufferMemoryRequirements(dev vk.Device, buf vk.Buffer) vk.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buf, &req)
	req.Deref()
	return req
}

func (vkDriver) BindBufferMemory(dev vk.Device, buf vk.Buffer, mem vk.DeviceMemory) vk.Result {
	return vk.BindBufferMemory(dev, buf, mem, 0)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	log := Logger()
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Error("vulkan validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		log.Warn("vulkan validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	default:
		log.Debug("vulkan validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	}
	return vk.Bool32(vk.False)
}

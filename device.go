package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDeviceInfo is the selected GPU and everything queried from it.
// It is not modified after SelectPhysicalDevice returns.
type PhysicalDeviceInfo struct {
	Handle           vk.PhysicalDevice
	Name             string
	Properties       vk.PhysicalDeviceProperties
	Features         vk.PhysicalDeviceFeatures
	MemoryProperties vk.PhysicalDeviceMemoryProperties
	Families         []QueueFamily
	Queues           QueueIndices
	Extensions       nameSet
	DepthFormat      vk.Format
}

// SelectPhysicalDevice enumerates the GPUs of instance, prefers a discrete
// one, falls back to the first enumerated, and resolves its queue roles
// against surface.
func SelectPhysicalDevice(inst *Instance, surface vk.Surface) (*PhysicalDeviceInfo, error) {
	return selectPhysicalDevice(inst.drv, inst.Handle, surface)
}

func selectPhysicalDevice(drv driver, instance vk.Instance, surface vk.Surface) (*PhysicalDeviceInfo, error) {
	gpus, ret := drv.EnumeratePhysicalDevices(instance)
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}
	if len(gpus) == 0 {
		return nil, ErrNoGPU
	}

	props := make([]vk.PhysicalDeviceProperties, len(gpus))
	for i, gpu := range gpus {
		props[i] = drv.PhysicalDeviceProperties(gpu)
	}
	pick := pickPhysicalDevice(props)

	info := &PhysicalDeviceInfo{
		Handle:           gpus[pick],
		Name:             vk.ToString(props[pick].DeviceName[:]),
		Properties:       props[pick],
		Features:         drv.PhysicalDeviceFeatures(gpus[pick]),
		MemoryProperties: drv.PhysicalDeviceMemoryProperties(gpus[pick]),
	}

	for i, fp := range drv.QueueFamilyProperties(info.Handle) {
		present, ret := drv.SurfaceSupport(info.Handle, uint32(i), surface)
		if err := NewError(ret); err != nil {
			return nil, errors.Wrapf(err, "surface support for family %d", i)
		}
		info.Families = append(info.Families, QueueFamily{
			Index:   uint32(i),
			Flags:   fp.QueueFlags,
			Count:   fp.QueueCount,
			Present: present,
		})
	}
	queues, err := ResolveQueueRoles(info.Families)
	if err != nil {
		return nil, errors.Wrapf(err, "device %s", info.Name)
	}
	info.Queues = queues

	exts, ret := drv.DeviceExtensions(info.Handle)
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "enumerate device extensions")
	}
	info.Extensions = newNameSet(exts)

	info.DepthFormat = vk.FormatUndefined
	for _, f := range depthFormats {
		fp := drv.FormatProperties(info.Handle, f)
		if fp.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0 {
			info.DepthFormat = f
			break
		}
	}
	if info.DepthFormat == vk.FormatUndefined {
		return nil, errors.Wrapf(ErrNoDepthFormat, "device %s", info.Name)
	}

	Logger().Info("vulkan: physical device selected",
		"name", info.Name,
		"type", info.Properties.DeviceType,
		"graphics", queues.Graphics,
		"transfer", queues.Transfer,
		"compute", queues.Compute,
		"present", queues.Present)
	return info, nil
}

// depthFormats in order of preference.
var depthFormats = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
	vk.FormatD16Unorm,
}

// pickPhysicalDevice returns the index of the first discrete GPU, or 0.
func pickPhysicalDevice(props []vk.PhysicalDeviceProperties) int {
	for i, p := range props {
		if p.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			return i
		}
	}
	return 0
}

// ChooseSampleCount clamps the requested MSAA sample count to the highest
// count both color and depth framebuffers support.
func ChooseSampleCount(limits vk.PhysicalDeviceLimits, requested int) vk.SampleCountFlagBits {
	supported := limits.FramebufferColorSampleCounts & limits.FramebufferDepthSampleCounts
	for count := requested; count > 1; count >>= 1 {
		bit := vk.SampleCountFlagBits(count)
		if supported&vk.SampleCountFlags(bit) != 0 {
			return bit
		}
	}
	return vk.SampleCount1Bit
}

// FindMemoryType returns the first memory type allowed by typeBits that has
// all the wanted property flags.
func FindMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, wanted vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < props.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		flags := props.MemoryTypes[i].PropertyFlags
		if flags&vk.MemoryPropertyFlags(wanted) == vk.MemoryPropertyFlags(wanted) {
			return i, true
		}
	}
	return 0, false
}

package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// LogicalDevice owns the device handle, one queue per role and the command
// pools of every family in use.
type LogicalDevice struct {
	Handle     vk.Device
	Extensions []string
	Features   vk.PhysicalDeviceFeatures

	physical *PhysicalDeviceInfo
	drv      driver
	queues   [numQueueRoles]vk.Queue
	pools    map[uint32]CommandPools

	// oneShotFence is signaled by the single open CommandSession.
	oneShotFence vk.Fence
	session      *CommandSession
}

// swapchainExtension is requested whatever the configured list says.
const swapchainExtension = "VK_KHR_swapchain"

func newLogicalDevice(drv driver, phys *PhysicalDeviceInfo, cfg Config) (d *LogicalDevice, err error) {
	wanted := append([]string{swapchainExtension}, cfg.DeviceExtensions...)
	extensions, missing := checkExisting(phys.Extensions, wanted)
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrMissingExtension, "device %s lacks %v", phys.Name, missing)
	}
	features, missing := requestFeatures(phys.Features, cfg.DeviceFeatures)
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrMissingFeature, "device %s lacks %v", phys.Name, missing)
	}

	families := phys.Queues.Unique()
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	handle, ret := drv.CreateDevice(phys.Handle, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	})
	if err := NewError(ret); err != nil {
		switch ret {
		case vk.ErrorExtensionNotPresent:
			err = errors.Wrap(ErrMissingExtension, err.Error())
		case vk.ErrorFeatureNotPresent:
			err = errors.Wrap(ErrMissingFeature, err.Error())
		}
		return nil, errors.Wrap(err, "create device")
	}

	d = &LogicalDevice{
		Handle:     handle,
		Extensions: extensions,
		Features:   features,
		physical:   phys,
		drv:        drv,
		pools:      make(map[uint32]CommandPools, len(families)),
	}
	defer func() {
		if err != nil {
			d.Destroy()
		}
	}()

	for role := QueueRole(0); role < numQueueRoles; role++ {
		d.queues[role] = drv.DeviceQueue(handle, phys.Queues.Index(role), 0)
	}
	for _, family := range families {
		pools, err := newCommandPools(drv, handle, family)
		if err != nil {
			return d, err
		}
		d.pools[family] = pools
	}

	fence, ret := drv.CreateFence(handle, false)
	if err := NewError(ret); err != nil {
		return d, errors.Wrap(err, "create one-shot fence")
	}
	d.oneShotFence = fence

	Logger().Info("vulkan: logical device created",
		"families", families, "extensions", extensions)
	return d, nil
}

// Queue returns the queue handle of role. Aliased roles share a handle.
func (d *LogicalDevice) Queue(role QueueRole) vk.Queue {
	return d.queues[role]
}

// Family returns the queue family index of role.
func (d *LogicalDevice) Family(role QueueRole) uint32 {
	return d.physical.Queues.Index(role)
}

// Pools returns the resettable and transient pools serving role.
func (d *LogicalDevice) Pools(role QueueRole) CommandPools {
	return d.pools[d.Family(role)]
}

// Physical returns the device the logical device was created on.
func (d *LogicalDevice) Physical() *PhysicalDeviceInfo {
	return d.physical
}

// WaitIdle blocks until every queue of the device is idle.
func (d *LogicalDevice) WaitIdle() {
	orPanic(NewError(d.drv.DeviceWaitIdle(d.Handle)))
}

// Destroy releases pools, the one-shot fence and the device. The device must
// be idle.
func (d *LogicalDevice) Destroy() {
	if d == nil || d.Handle == nil {
		return
	}
	if d.oneShotFence != nil {
		d.drv.DestroyFence(d.Handle, d.oneShotFence)
		d.oneShotFence = nil
	}
	for family, pools := range d.pools {
		pools.destroy(d.drv, d.Handle)
		delete(d.pools, family)
	}
	d.drv.DestroyDevice(d.Handle)
	d.Handle = nil
}

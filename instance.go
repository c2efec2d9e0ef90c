package vkframe

import (
	"runtime"
	"slices"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	portabilityEnumeration = "VK_KHR_portability_enumeration"
	debugReportExtension   = "VK_EXT_debug_report"

	instanceCreateEnumeratePortability = 0x00000001
)

// Instance is the process-wide graphics API handle. It is created first and
// destroyed last.
type Instance struct {
	Handle     vk.Instance
	Extensions []string
	Layers     []string

	drv           driver
	debugCallback vk.DebugReportCallback
	debug         bool
}

func newInstance(drv driver, cfg Config, windowExtensions []string) (inst *Instance, err error) {
	defer checkErr(&err)

	available, ret := drv.InstanceExtensions()
	orPanic(NewError(ret))
	availableSet := newNameSet(available)

	wanted := append([]string{}, windowExtensions...)
	wanted = append(wanted, cfg.InstanceExtensions...)
	if cfg.Debug {
		wanted = append(wanted, debugReportExtension)
	}
	var flags vk.InstanceCreateFlags
	if runtime.GOOS == "darwin" && availableSet.Has(portabilityEnumeration) {
		wanted = append(wanted, portabilityEnumeration)
		flags |= instanceCreateEnumeratePortability
	}
	extensions, missing := checkExisting(availableSet, wanted)
	for _, name := range missing {
		if !slices.Contains(windowExtensions, name) && !slices.Contains(cfg.InstanceExtensions, name) {
			continue
		}
		return nil, errors.Wrapf(ErrMissingExtension, "instance extension %s", name)
	}
	debug := cfg.Debug && availableSet.Has(debugReportExtension)
	if cfg.Debug && !debug {
		Logger().Warn("vulkan: debug report extension unavailable, validation output disabled")
	}

	var layers []string
	if len(cfg.ValidationLayers) > 0 {
		availableLayers, ret := drv.InstanceLayers()
		orPanic(NewError(ret))
		var missingLayers []string
		layers, missingLayers = checkExisting(newNameSet(availableLayers), cfg.ValidationLayers)
		for _, name := range missingLayers {
			Logger().Warn("vulkan: skipping validation layer", "layer", name,
				"err", ErrMissingLayer)
		}
	}

	handle, ret := drv.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		Flags: flags,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(cfg.AppName),
			PEngineName:        "vkframe\x00",
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	})
	orPanic(errors.Wrap(NewError(ret), "create instance"))

	inst = &Instance{
		Handle:     handle,
		Extensions: extensions,
		Layers:     layers,
		drv:        drv,
		debug:      debug,
	}
	if debug {
		cb, ret := drv.CreateDebugCallback(handle)
		if err := NewError(ret); err != nil {
			drv.DestroyInstance(handle)
			orPanic(errors.Wrap(err, "create debug report callback"))
		}
		inst.debugCallback = cb
		Logger().Info("vulkan: debug report callback enabled")
	}
	Logger().Info("vulkan: instance created",
		"extensions", len(extensions), "layers", len(layers))
	return inst, nil
}

// Destroy releases the debug callback and the instance handle.
func (i *Instance) Destroy() {
	if i == nil || i.Handle == nil {
		return
	}
	if i.debug {
		i.drv.DestroyDebugCallback(i.Handle, i.debugCallback)
		i.debug = false
	}
	i.drv.DestroyInstance(i.Handle)
	i.Handle = nil
}

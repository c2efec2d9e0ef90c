package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// nameSet is a set of extension or layer names as reported by the loader.
type nameSet map[string]struct{}

func newNameSet(names []string) nameSet {
	set := make(nameSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s nameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// checkExisting splits wanted into the names that are available and the
// ones that are missing. Duplicates in wanted are dropped.
func checkExisting(available nameSet, wanted []string) (existing, missing []string) {
	seen := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		if seen[name] {
			continue
		}
		seen[name] = true
		if available.Has(name) {
			existing = append(existing, name)
		} else {
			missing = append(missing, name)
		}
	}
	return existing, missing
}

// safeStrings null-terminates names for the C side.
func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

// featureFields maps VkPhysicalDeviceFeatures member names onto their Go fields.
var featureFields = map[string]func(*vk.PhysicalDeviceFeatures) *vk.Bool32{
	"samplerAnisotropy":        func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.SamplerAnisotropy },
	"sampleRateShading":        func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.SampleRateShading },
	"fillModeNonSolid":         func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.FillModeNonSolid },
	"wideLines":                func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.WideLines },
	"largePoints":              func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.LargePoints },
	"geometryShader":           func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.GeometryShader },
	"tessellationShader":       func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.TessellationShader },
	"multiDrawIndirect":        func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.MultiDrawIndirect },
	"depthClamp":               func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.DepthClamp },
	"independentBlend":         func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.IndependentBlend },
	"shaderInt64":              func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.ShaderInt64 },
	"textureCompressionBC":     func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.TextureCompressionBC },
	"fragmentStoresAndAtomics": func(f *vk.PhysicalDeviceFeatures) *vk.Bool32 { return &f.FragmentStoresAndAtomics },
}

// requestFeatures builds the enabled feature struct for the named features and
// returns the names the device does not support.
func requestFeatures(supported vk.PhysicalDeviceFeatures, names []string) (vk.PhysicalDeviceFeatures, []string) {
	var enabled vk.PhysicalDeviceFeatures
	var missing []string
	for _, name := range names {
		field, ok := featureFields[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if *field(&supported) != vk.True {
			missing = append(missing, name)
			continue
		}
		*field(&enabled) = vk.True
	}
	return enabled, missing
}

// InstanceExtensions lists the instance extensions the loader offers.
func InstanceExtensions() ([]string, error) {
	names, ret := vkDriver{}.InstanceExtensions()
	return names, NewError(ret)
}

// ValidationLayers lists the instance layers the loader offers.
func ValidationLayers() ([]string, error) {
	names, ret := vkDriver{}.InstanceLayers()
	return names, NewError(ret)
}

// DeviceExtensions lists the extensions gpu supports.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	names, ret := vkDriver{}.DeviceExtensions(gpu)
	return names, NewError(ret)
}

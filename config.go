package vkframe

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// FramesInFlight is the number of frame slots the CPU may run ahead of the GPU.
const FramesInFlight = 2

// Config holds the startup settings of a Context. It maps one to one onto a
// TOML document, see LoadConfig.
type Config struct {
	AppName string `toml:"app_name"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`

	// VSync selects FIFO presentation. It can be changed at runtime with
	// SetVerticalSync and takes effect at the next swapchain rebuild.
	VSync bool `toml:"vsync"`

	// MSAASamples is the requested sample count (1, 2, 4, 8, ...). It is
	// clamped to what the device supports.
	MSAASamples int `toml:"msaa_samples"`

	// Debug enables the debug report callback, routed through Logger.
	Debug bool `toml:"debug"`

	ValidationLayers   []string `toml:"validation_layers"`
	InstanceExtensions []string `toml:"instance_extensions"`
	DeviceExtensions   []string `toml:"device_extensions"`

	// DeviceFeatures names VkPhysicalDeviceFeatures members to enable, e.g.
	// "samplerAnisotropy". Every entry must be supported by the device.
	DeviceFeatures []string `toml:"device_features"`

	// ClearColor is the RGBA color the main render pass clears to.
	ClearColor [4]float32 `toml:"clear_color"`

	// TransferDst adds transfer-dst usage to the swapchain images when the
	// surface supports it.
	TransferDst bool `toml:"transfer_dst"`

	// PreferredFormat is "bgra8_unorm" or "bgra8_srgb".
	PreferredFormat string `toml:"preferred_format"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		AppName:          "vkframe",
		Width:            1280,
		Height:           720,
		VSync:            true,
		MSAASamples:      4,
		DeviceExtensions: []string{swapchainExtension},
		ClearColor:       [4]float32{0, 0, 0, 1},
		PreferredFormat:  "bgra8_unorm",
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("vkframe: invalid window size %dx%d", c.Width, c.Height)
	}
	switch c.MSAASamples {
	case 1, 2, 4, 8, 16, 32, 64:
	default:
		return errors.Errorf("vkframe: msaa_samples must be a power of two in [1,64], got %d", c.MSAASamples)
	}
	if _, ok := surfaceFormats[c.PreferredFormat]; !ok {
		return errors.Errorf("vkframe: unknown preferred_format %q", c.PreferredFormat)
	}
	for _, name := range c.DeviceFeatures {
		if _, ok := featureFields[name]; !ok {
			return errors.Wrap(ErrUnknownFeatureName, name)
		}
	}
	return nil
}

var surfaceFormats = map[string]vk.Format{
	"bgra8_unorm": vk.FormatB8g8r8a8Unorm,
	"bgra8_srgb":  vk.FormatB8g8r8a8Srgb,
}

func (c Config) preferredFormat() vk.Format {
	if f, ok := surfaceFormats[c.PreferredFormat]; ok {
		return f
	}
	return vk.FormatB8g8r8a8Unorm
}

package vkframe

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Configuration errors. Init wraps one of these with the offending detail.
var (
	ErrNoGPU              = errors.New("vkframe: no Vulkan physical devices found")
	ErrNoUnifiedQueue     = errors.New("vkframe: no queue family supports graphics, transfer and compute together")
	ErrNoPresentQueue     = errors.New("vkframe: no queue family can present to the surface")
	ErrMissingExtension   = errors.New("vkframe: requested extension not supported")
	ErrMissingFeature     = errors.New("vkframe: requested device feature not supported")
	ErrMissingLayer       = errors.New("vkframe: requested validation layer not available")
	ErrUnsupportedUsage   = errors.New("vkframe: surface does not support color attachment usage")
	ErrNoSurfaceFormat    = errors.New("vkframe: surface reports no pixel formats")
	ErrNoDepthFormat      = errors.New("vkframe: no supported depth attachment format")
	ErrNoMemoryType       = errors.New("vkframe: no memory type satisfies the requirements")
	ErrNotInitialized     = errors.New("vkframe: context not initialized")
	ErrUnknownFeatureName = errors.New("vkframe: unknown device feature name")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError decodes a driver result. Success maps to nil.
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	return errors.WithStack(vk.Error(ret))
}

// Fatal logs err and terminates the process. Finalizers run first, in order.
// A nil err is a no-op.
func Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	Logger().Error("vkframe: fatal", "err", fmt.Sprintf("%+v", err))
	fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
	os.Exit(1)
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

// checkErr converts an error panic raised through orPanic back into a
// returned error. Anything else keeps unwinding.
func checkErr(err *error) {
	if v := recover(); v != nil {
		e, ok := v.(error)
		if _, rt := v.(runtime.Error); !ok || rt {
			panic(v)
		}
		*err = e
	}
}

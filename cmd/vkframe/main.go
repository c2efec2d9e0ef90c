package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/andewx/vkframe"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// glfw and the Vulkan queue calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	vkframe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := vkframe.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = vkframe.LoadConfig(*configPath)
		vkframe.Fatal(err)
	}

	vkframe.Fatal(vkframe.InitGLFW())
	defer vkframe.TerminateGLFW()

	window, err := vkframe.NewGLFWWindow(cfg.Width, cfg.Height, cfg.AppName)
	vkframe.Fatal(err, vkframe.TerminateGLFW)
	defer window.Destroy()

	ctx := vkframe.New(cfg, window)
	vkframe.Fatal(ctx.Init(), window.Destroy, vkframe.TerminateGLFW)
	defer ctx.Shutdown()
	window.Attach(ctx)

	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyV:
			vsync := !ctx.Swapchain().VerticalSync()
			ctx.SetVerticalSync(vsync)
			vkframe.Logger().Info("vsync toggled", "enabled", vsync)
		case glfw.KeyEscape:
			window.SetShouldClose(true)
		}
	})

	lastTitle := time.Now()
	for !window.ShouldClose() {
		glfw.PollEvents()
		// The render pass clears to the configured color. Draw calls would
		// be recorded into ctx.CommandBuffer() when BeginFrame reports true.
		ctx.BeginFrame()
		ctx.EndFrame()

		if time.Since(lastTitle) > time.Second {
			st := ctx.Stats()
			window.SetTitle(fmt.Sprintf("%s  frames %d  skipped %d  rebuilds %d  cpu %v",
				cfg.AppName, st.Frames, st.Skipped, st.Invalidations, st.LastFrameTime))
			lastTitle = time.Now()
		}
	}
}

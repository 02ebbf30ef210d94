// Package acrylic provides a temporal blur-layer compositor for
// real-time renderers: frosted-glass style background blur whose cost
// is amortized across frames.
//
// # Overview
//
// A Scheduler owns a fixed set of blur layers, each describing one
// blurred view of the scene: what to capture (a render-layer mask and a
// capture event), how hard to blur it (dual-filter or Kawase, 2-7
// passes, optional downsampling), and how often to recompute it (every
// frame, or every N frames with the old and new result cross-faded over
// a blend window to hide the update).
//
// Consumers reference a layer's output by name through a Bindings
// table, the way a shader samples a global texture. Layers are
// reference counted: any number of consumers can enable the same layer,
// and it leaves the host pipeline only when the last one disables it.
//
// # Integration
//
// acrylic is a library embedded by a host renderer, not a renderer
// itself. The host implements the small contracts in the render
// package (render.Pipeline, render.Blitter, render.Allocator) and calls
// Scheduler.Tick once per frame:
//
//	pipe := myengine.AcrylicPipeline()       // implements render.Pipeline
//	sched := acrylic.NewScheduler(cfg, pipe)
//	sched.Initialize()
//
//	// per consumer:
//	sched.EnableLayer(0)
//	defer sched.DisableLayer(0)
//
//	// per frame, from the host's frame-begin callback:
//	sched.Tick()
//
// Ready-made backends live under backend/: backend/soft is a
// deterministic CPU reference used by the tests and examples, and
// backend/wgpu runs the same kernel passes on a wgpu/hal device.
//
// All scheduler and layer state is frame-synchronous: every method is
// driven from the render thread. A failed capture or blur skips that
// layer's update for the frame; Tick reports the failure but the other
// layers and the next frame proceed normally.
package acrylic

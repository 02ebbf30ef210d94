// Package render defines the contracts between the acrylic blur
// compositor and the host rendering pipeline.
//
// # Key Principle
//
// acrylic RECEIVES its GPU capabilities from the host, it does NOT talk
// to a GPU API itself. Everything the blur algorithms need reduces to
// four capabilities:
//
//   - Target / Allocator: offscreen images the layers own, resize, and
//     release through their lifetime.
//   - Blitter: a full-screen textured draw parameterized by a kernel
//     pass and per-draw uniform vectors. This is the only drawing
//     primitive the blur chain uses.
//   - FeatureList: the host pipeline's ordered pass list, which the
//     scheduler keeps consistent with layer activation state.
//   - Pipeline.Capture: rendering the current scene (filtered by a
//     layer mask) into a layer's source target.
//
// Backends under backend/ provide ready-made implementations: a CPU
// reference backend (backend/soft) and a wgpu/hal backend
// (backend/wgpu). Hosts with their own renderer implement these
// interfaces directly.
package render

// Package filter implements the blur strategies used by acrylic layers.
//
// Two strategies are provided behind the Filter interface:
//
//   - Dual: hierarchical dual-filter (dual Kawase) blur. Downsamples
//     through a cached chain of half-resolution buffers, then upsamples
//     back, touching far fewer pixels than an equivalent single-pass
//     kernel.
//   - Kawase: classic iterative Kawase blur ping-ponging between the
//     image and one scratch buffer at full resolution, with the tap
//     distance growing each pass.
//
// Both operate in place on a render.Target and issue all pixel work
// through a render.Blitter, so they run unchanged on the CPU and GPU
// backends.
package filter

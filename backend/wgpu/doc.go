// Package wgpu is the GPU backend.
//
// It runs every blit kernel as a full-screen fragment pass over
// wgpu/hal textures. A Device either self-initializes a Vulkan adapter
// or borrows the host's existing hal device through a provider, so a
// host renderer and the blur layers share one GPU device and queue.
//
// Capture stays the host's job: the host renders into the textures this
// package allocates, at the capture events the scheduler announces.
package wgpu

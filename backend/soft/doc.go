// Package soft is the CPU reference backend.
//
// It executes every blit kernel with plain bilinear sampling over
// CPU-backed pixmap targets. It exists for hosts without a GPU, for
// golden-image debugging of the blur kernels, and for tests: the
// results are deterministic across platforms.
//
// The package also provides a minimal offscreen Pipeline so a scheduler
// can run end to end without a real renderer.
package soft

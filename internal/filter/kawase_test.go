package filter

import (
	"errors"
	"testing"

	"github.com/gogpu/acrylic/render"
)

func TestKawasePingPong(t *testing.T) {
	blitter := &recordingBlitter{}
	alloc := &countingAllocator{}
	k := NewKawase(blitter, alloc, nil)
	img := render.NewPixmapTarget(32, 32)

	if err := k.Apply(img, 2); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Even pass count: result lands back in the image, no resolve copy.
	if len(blitter.blits) != 2 {
		t.Fatalf("blit count = %d, want 2", len(blitter.blits))
	}
	if blitter.blits[0].src != render.Target(img) {
		t.Error("pass 0 src is not the input image")
	}
	if blitter.blits[1].dst != render.Target(img) {
		t.Error("pass 1 dst is not the input image")
	}
	for i, b := range blitter.blits {
		if b.pass != render.PassKawase {
			t.Errorf("blit %d pass = %v, want kawase", i, b.pass)
		}
	}
}

func TestKawaseOddPassesResolveCopy(t *testing.T) {
	blitter := &recordingBlitter{}
	k := NewKawase(blitter, &countingAllocator{}, nil)
	img := render.NewPixmapTarget(32, 32)

	if err := k.Apply(img, 3); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// 3 kawase passes leave the result in scratch; a copy resolves it.
	if len(blitter.blits) != 4 {
		t.Fatalf("blit count = %d, want 4", len(blitter.blits))
	}
	last := blitter.blits[3]
	if last.pass != render.PassCopy {
		t.Errorf("final pass = %v, want copy", last.pass)
	}
	if last.dst != render.Target(img) {
		t.Error("resolve copy dst is not the input image")
	}
}

func TestKawaseGrowingOffsets(t *testing.T) {
	blitter := &recordingBlitter{}
	k := NewKawase(blitter, &countingAllocator{}, nil)
	img := render.NewPixmapTarget(32, 32)

	if err := k.Apply(img, 2); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Tap distance grows 0.5, 1.5 texels.
	if got := blitter.blits[0].params.Offset.X(); got != 0.5/32 {
		t.Errorf("pass 0 offset = %v, want %v", got, 0.5/32)
	}
	if got := blitter.blits[1].params.Offset.X(); got != 1.5/32 {
		t.Errorf("pass 1 offset = %v, want %v", got, 1.5/32)
	}
}

func TestKawaseScratchCached(t *testing.T) {
	alloc := &countingAllocator{}
	k := NewKawase(&recordingBlitter{}, alloc, nil)
	img := render.NewPixmapTarget(32, 32)

	if err := k.Apply(img, 2); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := k.Apply(img, 4); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if alloc.allocs != 1 {
		t.Errorf("allocs = %d, want 1 (scratch reused across pass counts)", alloc.allocs)
	}

	// Resizing the image rebuilds the scratch buffer.
	if err := k.Apply(render.NewPixmapTarget(16, 16), 2); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if alloc.allocs != 2 {
		t.Errorf("allocs = %d after resize, want 2", alloc.allocs)
	}
	if alloc.releases != 1 {
		t.Errorf("releases = %d after resize, want 1", alloc.releases)
	}
}

func TestKawaseNilAndDegenerate(t *testing.T) {
	k := NewKawase(&recordingBlitter{}, &countingAllocator{}, nil)

	if err := k.Apply(nil, 2); !errors.Is(err, render.ErrNilTarget) {
		t.Errorf("Apply(nil) err = %v, want ErrNilTarget", err)
	}
	if err := k.Apply(render.NewPixmapTarget(1, 1), 2); err != nil {
		t.Errorf("Apply(1x1) err = %v, want nil (no-op)", err)
	}
	if err := k.Apply(render.NewPixmapTarget(32, 32), 0); err != nil {
		t.Errorf("Apply(passes=0) err = %v, want nil (no-op)", err)
	}
}

func TestKawaseRelease(t *testing.T) {
	alloc := &countingAllocator{}
	k := NewKawase(&recordingBlitter{}, alloc, nil)

	if err := k.Apply(render.NewPixmapTarget(32, 32), 2); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	k.Release()
	if alloc.releases != alloc.allocs {
		t.Errorf("releases = %d, allocs = %d; scratch leaked", alloc.releases, alloc.allocs)
	}

	// Filter stays usable after Release.
	if err := k.Apply(render.NewPixmapTarget(32, 32), 2); err != nil {
		t.Errorf("Apply after Release: %v", err)
	}
}

package render

import "testing"

// stubFeature is a minimal Feature for list tests.
type stubFeature struct {
	name string
}

func (f *stubFeature) Name() string        { return f.name }
func (f *stubFeature) Event() CaptureEvent { return CaptureAfterTransparents }

func TestPassListInsertOrder(t *testing.T) {
	var l PassList
	a := &stubFeature{name: "a"}
	b := &stubFeature{name: "b"}
	c := &stubFeature{name: "c"}

	l.Insert(a, 0)
	l.Insert(b, 1)
	l.Insert(c, 1) // between a and b

	got := l.Features()
	want := []string{"a", "c", "b"}
	if len(got) != len(want) {
		t.Fatalf("Len = %d, want %d", len(got), len(want))
	}
	for i, f := range got {
		if f.Name() != want[i] {
			t.Errorf("features[%d] = %q, want %q", i, f.Name(), want[i])
		}
	}
}

func TestPassListInsertClampsIndex(t *testing.T) {
	var l PassList
	a := &stubFeature{name: "a"}
	b := &stubFeature{name: "b"}

	l.Insert(a, -5) // clamped to 0
	l.Insert(b, 99) // clamped to end

	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	if got := l.Features()[1].Name(); got != "b" {
		t.Errorf("features[1] = %q, want b", got)
	}
}

func TestPassListRemove(t *testing.T) {
	var l PassList
	a := &stubFeature{name: "a"}
	b := &stubFeature{name: "b"}

	l.Insert(a, 0)
	l.Insert(b, 1)
	l.Remove(a)

	if l.Contains(a) {
		t.Error("Contains(a) = true after Remove")
	}
	if !l.Contains(b) {
		t.Error("Contains(b) = false, want true")
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}

	// Removing an absent feature is a no-op.
	l.Remove(a)
	if l.Len() != 1 {
		t.Errorf("Len after double remove = %d, want 1", l.Len())
	}
}

func TestPassListIdentityNotName(t *testing.T) {
	var l PassList
	a1 := &stubFeature{name: "a"}
	a2 := &stubFeature{name: "a"}

	l.Insert(a1, 0)

	if l.Contains(a2) {
		t.Error("Contains matched by name, want identity")
	}
	l.Remove(a2)
	if l.Len() != 1 {
		t.Errorf("Remove by name removed a feature, Len = %d, want 1", l.Len())
	}
}

func TestPassListInsertNil(t *testing.T) {
	var l PassList
	l.Insert(nil, 0)
	if l.Len() != 0 {
		t.Errorf("Len = %d after inserting nil, want 0", l.Len())
	}
}

package render

import "testing"

func TestBindingsSetGet(t *testing.T) {
	b := NewBindings()
	tex := NewPixmapTarget(4, 4)

	b.Set("AcrylicBlur", tex)

	got, ok := b.Get("AcrylicBlur")
	if !ok {
		t.Fatal("Get = false, want true")
	}
	if got != Target(tex) {
		t.Error("Get returned a different target")
	}
}

func TestBindingsLastWriterWins(t *testing.T) {
	b := NewBindings()
	first := NewPixmapTarget(4, 4)
	second := NewPixmapTarget(8, 8)

	b.Set("blur", first)
	b.Set("blur", second)

	got, _ := b.Get("blur")
	if got != Target(second) {
		t.Error("Get did not return the last written target")
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
}

func TestBindingsSetNilRemoves(t *testing.T) {
	b := NewBindings()
	b.Set("blur", NewPixmapTarget(4, 4))
	b.Set("blur", nil)

	if _, ok := b.Get("blur"); ok {
		t.Error("Get = true after Set(nil), want false")
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestBindingsGetAbsent(t *testing.T) {
	b := NewBindings()
	if _, ok := b.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
}

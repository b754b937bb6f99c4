package fonts

import "testing"

func TestLoadBuiltins(t *testing.T) {
	for _, name := range []string{"go", "embed:go-mono", "Go Bold", "EMBED:go-medium", "Embed: Go Mono Bold"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) returned empty font", name)
		}
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("calibri"); err == nil {
		t.Fatalf("expected error for font that is not built in")
	}
	if Has("calibri") {
		t.Fatalf("Has reported an unknown font")
	}
	if !Has(Fallback) {
		t.Fatalf("fallback font %q must be built in", Fallback)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) != 7 {
		t.Fatalf("expected 7 built-in fonts, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

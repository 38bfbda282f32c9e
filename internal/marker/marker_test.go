package marker

import (
	"testing"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	if got := Format([]string{"home-visits-1", "workplace-2"}); got != "[SOURCES:home-visits-1,workplace-2]" {
		t.Errorf("Format: got %q", got)
	}
	if got := Format(nil); got != "[SOURCES:]" {
		t.Errorf("Format empty: got %q", got)
	}
}

func TestParse_TrailingMarker(t *testing.T) {
	t.Parallel()

	body, ids, ok := Parse("You have the right to remain silent.\n\n[SOURCES:home-visits-1,basic-rights-3]")
	if !ok {
		t.Fatal("expected marker to be found")
	}
	if body != "You have the right to remain silent." {
		t.Errorf("body: got %q", body)
	}
	if len(ids) != 2 || ids[0] != "home-visits-1" || ids[1] != "basic-rights-3" {
		t.Errorf("ids: got %v", ids)
	}
}

func TestParse_EmptyList(t *testing.T) {
	t.Parallel()

	body, ids, ok := Parse("General guidance only.\n\n[SOURCES:]")
	if !ok {
		t.Fatal("expected marker to be found")
	}
	if len(ids) != 0 {
		t.Errorf("ids: got %v, want none", ids)
	}
	if body != "General guidance only." {
		t.Errorf("body: got %q", body)
	}
}

func TestParse_AbsentMarker(t *testing.T) {
	t.Parallel()

	body, ids, ok := Parse("The model forgot the marker entirely.")
	if ok {
		t.Error("expected ok=false for absent marker")
	}
	if ids != nil {
		t.Errorf("ids: got %v, want nil", ids)
	}
	if body != "The model forgot the marker entirely." {
		t.Errorf("body must be returned unchanged, got %q", body)
	}
}

// TestParse_TrailingProse covers the misbehaving-model case: prose after the
// marker is stripped along with it, and the ids are still recovered.
func TestParse_TrailingProse(t *testing.T) {
	t.Parallel()

	body, ids, ok := Parse("Answer. [SOURCES:kb-1] Let me know if you need more help!")
	if !ok {
		t.Fatal("expected marker to be found")
	}
	if len(ids) != 1 || ids[0] != "kb-1" {
		t.Errorf("ids: got %v", ids)
	}
	if body != "Answer.  Let me know if you need more help!" {
		t.Errorf("body: got %q", body)
	}
}

func TestVerifiable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ids  []string
		want bool
	}{
		{nil, false},
		{[]string{}, false},
		{[]string{FallbackSourceID}, false},
		{[]string{"home-visits-1"}, true},
		{[]string{FallbackSourceID, "home-visits-1"}, true},
	}
	for _, tt := range tests {
		if got := Verifiable(tt.ids); got != tt.want {
			t.Errorf("Verifiable(%v) = %v, want %v", tt.ids, got, tt.want)
		}
	}
}

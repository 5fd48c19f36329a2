package sounds

import (
	"strings"
	"testing"
)

func TestContextualChaseScared(t *testing.T) {
	got := Contextual("A frantic chase through narrow alleys", "scared")

	want := map[string]bool{"breathing": false, "gasp": false}
	for _, c := range got {
		if _, ok := want[c]; ok {
			want[c] = true
		}
	}
	for c, found := range want {
		if !found {
			t.Errorf("Expected inferred set to contain %q, got %v", c, got)
		}
	}
}

func TestContextualDeduplicates(t *testing.T) {
	// "scared" and "chase" both suggest breathing; it must appear once.
	got := Contextual("chase scene", "scared")
	count := 0
	for _, c := range got {
		if c == "breathing" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("breathing appeared %d times, want 1", count)
	}
}

func TestContextualNoMatch(t *testing.T) {
	if got := Contextual("a plain empty room", ""); len(got) != 0 {
		t.Errorf("Expected no suggestions, got %v", got)
	}
}

func TestParseMarker(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"[laughs]", "laughter", true},
		{"SIGHS", "sigh", true},
		{"breathes heavily", "breathing", true},
		{"pants", "breathing", true},
		{"[sobs quietly]", "cry", true},
		{"[waves hand]", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		got, ok := ParseMarker(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseMarker(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"breathing", "breathing", true},
		{"Stomach_Growl", "stomach_growl", true},
		{"effort", "effort", true},
		{"laughs", "laughter", true},
		{"telepathy", "", false},
	}

	for _, c := range cases {
		got, ok := Category(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("Category(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestValidate(t *testing.T) {
	good := HumanSound{Category: "laughter", Intensity: 0.7, Duration: 1.5}
	if err := good.Validate(); err != nil {
		t.Errorf("Valid sound rejected: %v", err)
	}

	bad := []HumanSound{
		{Category: "laughter", Intensity: 1.2, Duration: 1},
		{Category: "laughter", Intensity: 0.5, Duration: 0},
		{Category: "nonsense", Intensity: 0.5, Duration: 1},
	}
	for i, h := range bad {
		if err := h.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestPromptVariantSelection(t *testing.T) {
	p := Prompt(HumanSound{Category: "sigh", Emotion: "relieved", Intensity: 0.9})
	if !strings.Contains(p, "relieved sigh") {
		t.Errorf("Expected emotion-matched variant, got %q", p)
	}
	if !strings.Contains(p, "intense") {
		t.Errorf("Expected intensity adjective, got %q", p)
	}

	p = Prompt(HumanSound{Category: "gasp", Intensity: 0.1, Character: "elderly female neighbor"})
	if !strings.Contains(p, "subtle") || !strings.Contains(p, "female voice") {
		t.Errorf("Expected subtle female-voice prompt, got %q", p)
	}
}

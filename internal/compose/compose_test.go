package compose

import (
	"os"
	"strings"
	"testing"
)

func TestMixFilterFullStack(t *testing.T) {
	graph, out := MixFilter(1, 2, []int{3, 4})

	if out != "[aout]" {
		t.Errorf("audio out = %q, want [aout]", out)
	}
	if !strings.Contains(graph, "[2:a]volume=0.30[bgm]") {
		t.Errorf("music must be layered at reduced level, got %q", graph)
	}
	if !strings.Contains(graph, "amix=inputs=4") {
		t.Errorf("expected 4-way mix, got %q", graph)
	}

	// Overlay order is fixed: dialogue, then music, then sfx.
	dlg := strings.Index(graph, "[dlg]")
	bgm := strings.Index(graph, "[bgm]")
	fx := strings.Index(graph, "[fx0]")
	if !(dlg < bgm && bgm < fx) {
		t.Errorf("mix order wrong: dlg=%d bgm=%d fx=%d in %q", dlg, bgm, fx, graph)
	}
}

func TestMixFilterDialogueOnly(t *testing.T) {
	graph, out := MixFilter(1, -1, nil)
	if graph != "" {
		t.Errorf("single dialogue track needs no graph, got %q", graph)
	}
	if out != "1:a" {
		t.Errorf("audio out = %q, want 1:a", out)
	}
}

func TestConcatListsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	paths := []string{"a.wav", "b.wav"}

	// Two scenes can concat dialogue at the same time; each needs its own
	// list file.
	p1, err := writeConcatList(dir, paths)
	if err != nil {
		t.Fatalf("writeConcatList: %v", err)
	}
	p2, err := writeConcatList(dir, paths)
	if err != nil {
		t.Fatalf("writeConcatList: %v", err)
	}
	if p1 == p2 {
		t.Fatalf("list files collide: %s", p1)
	}

	data, err := os.ReadFile(p1)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	if !strings.Contains(string(data), "a.wav") || !strings.Contains(string(data), "b.wav") {
		t.Errorf("list incomplete: %q", string(data))
	}
}

func TestMixFilterMusicOnlyKeepsLevel(t *testing.T) {
	graph, out := MixFilter(-1, 1, nil)
	if !strings.Contains(graph, "volume=0.30") {
		t.Errorf("lone music still plays as background layer, got %q", graph)
	}
	if out != "[aout]" {
		t.Errorf("audio out = %q, want [aout]", out)
	}
}

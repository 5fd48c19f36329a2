package tier

import "testing"

func TestSelectThresholds(t *testing.T) {
	cases := []struct {
		memGB float64
		want  Tier
	}{
		{80, High},
		{96, High},
		{79.9, Medium},
		{40, Medium},
		{39.9, Low},
		{24, Low},
		{0, None},
		{-1, None},
	}

	for _, c := range cases {
		got := Select(c.memGB)
		if got.Tier != c.want {
			t.Errorf("Select(%.1f) = %s, want %s", c.memGB, got.Tier, c.want)
		}
	}
}

func TestSelectIsPure(t *testing.T) {
	a := Select(80)
	b := Select(80)
	if a.Tier != b.Tier || a.Concurrent != b.Concurrent || a.MaxSegmentSeconds != b.MaxSegmentSeconds {
		t.Error("Select must be a pure function of memory")
	}
}

func TestTierContracts(t *testing.T) {
	high := Select(80)
	if !high.Concurrent || high.MaxSegmentSeconds != 8 || high.ClearCache {
		t.Errorf("high tier contract wrong: %+v", high)
	}
	if len(high.VideoBackends) != 3 || high.VideoBackends[0] != BackendFast {
		t.Errorf("high tier back-ends wrong: %v", high.VideoBackends)
	}

	medium := Select(40)
	if !medium.Concurrent || medium.MaxSegmentSeconds != 8 {
		t.Errorf("medium tier contract wrong: %+v", medium)
	}

	low := Select(16)
	if low.Concurrent || !low.ClearCache {
		t.Errorf("low tier must be sequential with cache clearing: %+v", low)
	}
	if len(low.VideoBackends) != 1 || low.VideoBackends[0] != BackendFast {
		t.Errorf("low tier back-ends wrong: %v", low.VideoBackends)
	}

	none := Select(0)
	if none.Concurrent || len(none.VideoBackends) != 1 || none.VideoBackends[0] != BackendFallback {
		t.Errorf("none tier contract wrong: %+v", none)
	}
}

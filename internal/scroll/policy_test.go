package scroll

import "testing"

func TestThresholdConstants(t *testing.T) {
	if DefaultThresholds.NearBottom != 80 || DefaultThresholds.LoadOlder != 100 || DefaultThresholds.Overflow != 4 {
		t.Fatalf("default thresholds changed: %+v", DefaultThresholds)
	}
	if TerminalThresholds.NearBottom != 3 || TerminalThresholds.LoadOlder != 5 || TerminalThresholds.Overflow != 0 {
		t.Fatalf("terminal thresholds changed: %+v", TerminalThresholds)
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want Decision
	}{
		{
			name: "initial load sticks",
			in:   Input{InitialLoad: true, DistanceFromBottom: 500},
			want: Decision{Action: StickToBottom},
		},
		{
			name: "older page preserves anchor",
			in:   Input{OlderPageLoaded: true, PrevOffset: 10, HeightAdded: 240},
			want: Decision{Action: PreserveAnchor, Offset: 250},
		},
		{
			name: "older page wins over initial",
			in:   Input{InitialLoad: true, OlderPageLoaded: true, PrevOffset: 0, HeightAdded: 30},
			want: Decision{Action: PreserveAnchor, Offset: 30},
		},
		{
			name: "near bottom follows",
			in:   Input{DistanceFromBottom: 79},
			want: Decision{Action: StickToBottom},
		},
		{
			name: "at threshold stays",
			in:   Input{DistanceFromBottom: 80},
			want: Decision{Action: None},
		},
		{
			name: "scrolled away stays",
			in:   Input{DistanceFromBottom: 400},
			want: Decision{Action: None},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.in, DefaultThresholds); got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestDecideTerminalRows(t *testing.T) {
	if got := Decide(Input{DistanceFromBottom: 2}, TerminalThresholds); got.Action != StickToBottom {
		t.Fatalf("expected stick within 3 rows, got %s", got.Action)
	}
	if got := Decide(Input{DistanceFromBottom: 3}, TerminalThresholds); got.Action != None {
		t.Fatalf("expected none at 3 rows, got %s", got.Action)
	}
}

func TestShouldLoadOlder(t *testing.T) {
	if !ShouldLoadOlder(99, true, false, DefaultThresholds) {
		t.Fatalf("expected load near top")
	}
	if ShouldLoadOlder(100, true, false, DefaultThresholds) {
		t.Fatalf("threshold is exclusive")
	}
	if ShouldLoadOlder(0, false, false, DefaultThresholds) {
		t.Fatalf("no older pages")
	}
	if ShouldLoadOlder(0, true, true, DefaultThresholds) {
		t.Fatalf("already loading")
	}
}

func TestNeedsFill(t *testing.T) {
	if !NeedsFill(104, 100, DefaultThresholds) {
		t.Fatalf("4px of overflow is not enough")
	}
	if NeedsFill(105, 100, DefaultThresholds) {
		t.Fatalf("5px of overflow scrolls")
	}
	if !NeedsFill(10, 20, TerminalThresholds) {
		t.Fatalf("short content needs fill")
	}
	if NeedsFill(21, 20, TerminalThresholds) {
		t.Fatalf("one extra row scrolls")
	}
}

package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Appending two values in reverse order must keep the history sorted.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[0] != d2 || h.days[1] != d1 {
		t.Errorf("history days = %v want [%v %v]", h.days, d2, d1)
	}
	if h.values[0] != v2 || h.values[1] != v1 {
		t.Errorf("history values = %v want [%v %v]", h.values, v2, v1)
	}

	// Same day overwrites.
	h.Append(d1, "replaced")
	if h.Len() != 2 {
		t.Errorf("Append(d1, ...).Len() = %v want 2", h.Len())
	}
	if got, _ := h.Get(d1); got != "replaced" {
		t.Errorf("Get(d1) = %q want %q", got, "replaced")
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(MustParse("2025-01-10"), 10)
	h.Append(MustParse("2025-01-20"), 20)
	h.Append(MustParse("2025-01-15"), 15)

	tests := []struct {
		on     string
		want   float64
		wantOK bool
	}{
		{"2025-01-09", 0, false},
		{"2025-01-10", 10, true},
		{"2025-01-14", 10, true},
		{"2025-01-15", 15, true},
		{"2025-01-19", 15, true},
		{"2025-01-20", 20, true},
		{"2026-01-01", 20, true},
	}
	for _, tc := range tests {
		got, ok := h.ValueAsOf(MustParse(tc.on))
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ValueAsOf(%s) = %v, %v want %v, %v", tc.on, got, ok, tc.want, tc.wantOK)
		}
	}

	span, ok := h.Span()
	if !ok || span.From != MustParse("2025-01-10") || span.To != MustParse("2025-01-20") {
		t.Errorf("Span() = %v, %v", span, ok)
	}

	var days []Date
	for on := range h.Values() {
		days = append(days, on)
	}
	if len(days) != 3 || !days[0].Before(days[1]) || !days[1].Before(days[2]) {
		t.Errorf("Values() not chronological: %v", days)
	}
}

func TestSpan_Empty(t *testing.T) {
	var h History[int]
	if _, ok := h.Span(); ok {
		t.Error("Span() of an empty history should return false")
	}
	if _, ok := h.ValueAsOf(Today()); ok {
		t.Error("ValueAsOf() of an empty history should return false")
	}
}

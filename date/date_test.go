package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNew_Normalizes(t *testing.T) {
	if got, want := New(2025, time.January, 32), New(2025, time.February, 1); got != want {
		t.Errorf("New(2025, 1, 32) = %v, want %v", got, want)
	}
	if got, want := New(2024, time.March, 0), New(2024, time.February, 29); got != want {
		t.Errorf("New(2024, 3, 0) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2020-01-02", want: New(2020, time.January, 2)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "1900-01-01", want: New(1900, time.January, 1)},
		{in: "2020/01/02", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	a, b := MustParse("2020-01-31"), MustParse("2020-02-01")
	if !a.Before(b) || a.After(b) {
		t.Errorf("%v should be before %v", a, b)
	}
	if a.Compare(a) != 0 {
		t.Errorf("%v.Compare(itself) = %d, want 0", a, a.Compare(a))
	}
	if got := b.Compare(a); got != 1 {
		t.Errorf("%v.Compare(%v) = %d, want 1", b, a, got)
	}
}

func TestJSON(t *testing.T) {
	var v struct {
		On   Date `json:"on"`
		Zero Date `json:"zero"`
	}
	v.On = MustParse("2009-07-23")
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if got, want := string(data), `{"on":"2009-07-23","zero":""}`; got != want {
		t.Errorf("json.Marshal() = %s, want %s", got, want)
	}

	var back struct {
		On   Date `json:"on"`
		Zero Date `json:"zero"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if back.On != v.On || !back.Zero.IsZero() {
		t.Errorf("json.Unmarshal() = %+v, want %+v", back, v)
	}
}

func TestRange(t *testing.T) {
	r := NewRange(MustParse("2020-01-10"), MustParse("2020-01-01"))
	if r.From != MustParse("2020-01-01") {
		t.Errorf("NewRange did not order boundaries: %v", r)
	}
	if got := r.Days(); got != 10 {
		t.Errorf("Days() = %d, want 10", got)
	}
	for _, tc := range []struct {
		on   string
		want bool
	}{
		{"2019-12-31", false},
		{"2020-01-01", true},
		{"2020-01-05", true},
		{"2020-01-10", true},
		{"2020-01-11", false},
	} {
		if got := r.Contains(MustParse(tc.on)); got != tc.want {
			t.Errorf("Contains(%s) = %v, want %v", tc.on, got, tc.want)
		}
	}
}

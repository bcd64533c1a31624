package document

import "testing"

func TestParseLooseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"8080", 8080, true},
		{" 42px", 42, true},
		{"-3.9", -3, true},
		{"+7", 7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLooseInt(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLooseInt(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseLooseFloat(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"10", 10, true},
		{"1.5s", 1.5, true},
		{".5", 0.5, true},
		{"2e3x", 2000, true},
		{"3.", 3, true},
		{"  -0.25", -0.25, true},
		{"fast", 0, false},
		{".", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLooseFloat(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLooseFloat(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

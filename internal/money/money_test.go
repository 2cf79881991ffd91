package money

import (
	"errors"
	"testing"
)

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"250", 25000},
		{"250.5", 25050},
		{"250,50", 25050},
		{" 1 000 ", 100000},
		{"0.01", 1},
		{"1000000000000", MaxAmount},
	}
	for _, tt := range tests {
		got, err := ParseMajor(tt.in)
		if err != nil {
			t.Errorf("ParseMajor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMajor(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMajorErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrInvalidAmount},
		{"abc", ErrInvalidAmount},
		{"0", ErrNonPositiveAmount},
		{"-5", ErrNonPositiveAmount},
		{"1.005", ErrTooPrecise},
		{"1000000000000.01", ErrTooLarge},
		{"92233720368547758.08", ErrTooLarge},
		{"184467440737095516.17", ErrTooLarge},
		{"100000000000000000000", ErrTooLarge},
	}
	for _, tt := range tests {
		if _, err := ParseMajor(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("ParseMajor(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(125050, "SEK"); got != "1250.50 SEK" {
		t.Errorf("Format = %q", got)
	}
	if got := Format(5, "SEK"); got != "0.05 SEK" {
		t.Errorf("Format = %q", got)
	}
	if got := FormatRate(1923.0769, "SEK"); got != "19.23 SEK" {
		t.Errorf("FormatRate = %q", got)
	}
}

func TestToMajor(t *testing.T) {
	if got := ToMajor(250).String(); got != "2.5" {
		t.Errorf("ToMajor(250) = %s, want 2.5", got)
	}
}

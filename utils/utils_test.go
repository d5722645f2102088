package utils

import (
	"strconv"
	"testing"
)

// ============================================================================
// INTEGER FORMATTING TESTS
// ============================================================================

func TestUtoa(t *testing.T) {
	cases := []uint64{0, 1, 9, 10, 99, 100, 12345, 1<<32 - 1, 1 << 32, 1<<64 - 1}
	for _, v := range cases {
		got := Utoa(v)
		want := strconv.FormatUint(v, 10)
		if got != want {
			t.Errorf("Utoa(%d) = %q, want %q", v, got, want)
		}
	}
}

func TestItoa(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, 1<<63 - 1, -(1<<63 - 1), -1 << 63}
	for _, v := range cases {
		got := Itoa(v)
		want := strconv.FormatInt(v, 10)
		if got != want {
			t.Errorf("Itoa(%d) = %q, want %q", v, got, want)
		}
	}
}

// ============================================================================
// ZERO-ALLOCATION TYPE CONVERSION TESTS
// ============================================================================

func TestB2s(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "Empty slice", input: []byte{}, expected: ""},
		{name: "Nil slice", input: nil, expected: ""},
		{name: "ASCII", input: []byte("clock_speed"), expected: "clock_speed"},
		{name: "Single byte", input: []byte{'x'}, expected: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := B2s(tt.input); got != tt.expected {
				t.Errorf("B2s(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestB2sSharesBacking(t *testing.T) {
	b := []byte("abc")
	s := B2s(b)
	b[0] = 'z'
	if s != "zbc" {
		t.Errorf("B2s result did not track backing array mutation: %q", s)
	}
}

// ============================================================================
// WARNING OUTPUT TESTS
// ============================================================================

func TestPrintWarning(t *testing.T) {
	// Exercises the raw fd-2 write path; nothing to assert beyond survival.
	PrintWarning("")
	PrintWarning("utils_test: PrintWarning smoke line\n")
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkUtoa(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Utoa(uint64(i))
	}
}

func BenchmarkItoa(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Itoa(int64(-i))
	}
}

package cpulist

import (
	"reflect"
	"testing"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"0", []int{0}},
		{"7", []int{7}},
		{"0-3", []int{0, 1, 2, 3}},
		{"0-3,5", []int{0, 1, 2, 3, 5}},
		{"5,0-3", []int{0, 1, 2, 3, 5}},
		{"3,1,2", []int{1, 2, 3}},
		{"1,1-2,2", []int{1, 2}},
		{" 2 , 4 - 5 ", []int{2, 4, 5}},
		{"9-9", []int{9}},
		{"1023", []int{1023}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"", "  ", "x", "1,", ",1", "3-", "-3", "1-x", "5-2", "1.5",
		"1024", "0-1024", "0--3",
	} {
		if got, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) = %v, want error", in, got)
		}
	}
}

func TestParseOne(t *testing.T) {
	if cpu, err := ParseOne(" 12 "); err != nil || cpu != 12 {
		t.Errorf("ParseOne(\" 12 \") = %d, %v", cpu, err)
	}
	for _, in := range []string{"", "a", "-1", "1024"} {
		if _, err := ParseOne(in); err == nil {
			t.Errorf("ParseOne(%q) should fail", in)
		}
	}
}

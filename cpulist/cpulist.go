// cpulist.go — kernel-style CPU list parsing for the -c/-a/-s flags.
//
// Accepts the same shape as /sys cpulist files: comma-separated singles
// and inclusive ranges, e.g. "0-3,7".  Whitespace around terms is
// tolerated; everything else is rejected rather than guessed at, since a
// mis-parsed pin silently measures the wrong core.
package cpulist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dpreed/clock-speed/constants"
)

// Parse returns the ascending, de-duplicated CPU ids named by list.
func Parse(list string) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return nil, fmt.Errorf("empty cpu list")
	}
	var seen [constants.MaxCPUs]bool
	for _, term := range strings.Split(list, ",") {
		term = strings.TrimSpace(term)
		lo, hi, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		for cpu := lo; cpu <= hi; cpu++ {
			seen[cpu] = true
		}
	}
	var cpus []int
	for cpu, ok := range seen {
		if ok {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}

// ParseOne parses a single CPU id with the same bounds checking.
func ParseOne(s string) (int, error) {
	cpu, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("cpu %q: %v", s, err)
	}
	if cpu < 0 || cpu >= constants.MaxCPUs {
		return 0, fmt.Errorf("cpu %d out of range [0,%d)", cpu, constants.MaxCPUs)
	}
	return cpu, nil
}

// parseTerm handles one "n" or "a-b" term, ranges inclusive.
func parseTerm(term string) (lo, hi int, err error) {
	if term == "" {
		return 0, 0, fmt.Errorf("empty term in cpu list")
	}
	if i := strings.IndexByte(term, '-'); i >= 0 {
		lo, err = ParseOne(term[:i])
		if err != nil {
			return 0, 0, err
		}
		hi, err = ParseOne(term[i+1:])
		if err != nil {
			return 0, 0, err
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("reversed range %q", term)
		}
		return lo, hi, nil
	}
	lo, err = ParseOne(term)
	return lo, lo, err
}

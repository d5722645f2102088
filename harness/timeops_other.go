//go:build !linux

// timeops_other.go — no syscall or migration rows off linux.

package harness

func (c *Config) systemOps() []Measurement { return nil }

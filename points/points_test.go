package points

import (
	"math/rand"
	"strconv"
	"testing"
)

func TestRegisterLookupRoundTrip(t *testing.T) {
	r := New(16)
	names := []string{"run_start", "phase_start", "phase_end", "barrier_release", "pong_seen"}
	tags := make([]int32, len(names))
	for i, n := range names {
		tags[i] = r.Register(n)
		if tags[i] != int32(i) {
			t.Errorf("Register(%q) = %d, want dense tag %d", n, tags[i], i)
		}
	}
	if r.Len() != len(names) {
		t.Fatalf("Len = %d, want %d", r.Len(), len(names))
	}
	for i, n := range names {
		tag, ok := r.Lookup(n)
		if !ok || tag != tags[i] {
			t.Errorf("Lookup(%q) = %d,%v, want %d,true", n, tag, ok, tags[i])
		}
		if got := r.Name(tags[i]); got != n {
			t.Errorf("Name(%d) = %q, want %q", tags[i], got, n)
		}
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := New(8)
	a := r.Register("phase_start")
	b := r.Register("phase_start")
	if a != b {
		t.Fatalf("re-registration changed tag: %d vs %d", a, b)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d after duplicate registration", r.Len())
	}
}

func TestLookupMissing(t *testing.T) {
	r := New(8)
	r.Register("present")
	if _, ok := r.Lookup("absent"); ok {
		t.Fatal("Lookup should miss unregistered names")
	}
}

func TestNameOutOfRange(t *testing.T) {
	r := New(8)
	r.Register("only")
	for _, tag := range []int32{-1, 1, 99} {
		if got := r.Name(tag); got != "" {
			t.Errorf("Name(%d) = %q, want \"\"", tag, got)
		}
	}
}

func TestPanicsOnMisuse(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Register(\"\") should panic")
			}
		}()
		New(4).Register("")
	})
	t.Run("zero capacity", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("New(0) should panic")
			}
		}()
		New(0)
	})
	t.Run("refusal threshold", func(t *testing.T) {
		r := New(2) // table size 4, limit 3
		defer func() {
			if recover() == nil {
				t.Error("registration past the refusal threshold should panic")
			}
		}()
		for i := 0; i < 10; i++ {
			r.Register("p" + strconv.Itoa(i))
		}
	})
}

// TestAgainstMapReference hammers the table with a few hundred random
// names and checks every answer against the obvious map implementation.
func TestAgainstMapReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := New(512)
	ref := make(map[string]int32)

	for i := 0; i < 300; i++ {
		name := "probe_" + strconv.Itoa(rng.Intn(400))
		tag := r.Register(name)
		if want, seen := ref[name]; seen {
			if tag != want {
				t.Fatalf("Register(%q) = %d, reference says %d", name, tag, want)
			}
		} else {
			ref[name] = tag
		}
	}
	if r.Len() != len(ref) {
		t.Fatalf("Len = %d, reference has %d", r.Len(), len(ref))
	}
	for name, want := range ref {
		if tag, ok := r.Lookup(name); !ok || tag != want {
			t.Fatalf("Lookup(%q) = %d,%v, want %d,true", name, tag, ok, want)
		}
		if r.Name(want) != name {
			t.Fatalf("Name(%d) = %q, want %q", want, r.Name(want), name)
		}
	}
}

func BenchmarkLookup(b *testing.B) {
	r := New(256)
	for i := 0; i < 128; i++ {
		r.Register("probe_" + strconv.Itoa(i))
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = r.Lookup("probe_64")
	}
}

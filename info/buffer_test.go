package info

import (
	"strings"
	"testing"
)

func TestEnsureCapacityGrowsOnly(t *testing.T) {
	buf := NewBuffer(16)
	sizes := []int{4, 32, 8, 1024, 100, 1024, 4096, 0, 17}

	maxSize := 16
	prev := buf.Cap()
	for _, size := range sizes {
		buf.EnsureCapacity(size)
		maxSize = max(maxSize, size)

		if buf.Cap() < maxSize {
			t.Errorf("after EnsureCapacity(%d): Cap() = %d, want >= %d", size, buf.Cap(), maxSize)
		}
		if buf.Cap() < prev {
			t.Errorf("after EnsureCapacity(%d): Cap() shrank from %d to %d", size, prev, buf.Cap())
		}
		prev = buf.Cap()
	}

	if got := buf.Grows(); got != 3 {
		t.Errorf("Grows() = %d, want 3", got)
	}
}

func TestEnsureCapacityNoReallocation(t *testing.T) {
	buf := NewBuffer(64)
	before := &buf.data[0]

	buf.EnsureCapacity(64)
	buf.EnsureCapacity(10)

	if &buf.data[0] != before {
		t.Error("EnsureCapacity reallocated a buffer that was large enough")
	}
	if buf.Grows() != 0 {
		t.Errorf("Grows() = %d, want 0", buf.Grows())
	}
}

func TestEnsureCapacityExactSize(t *testing.T) {
	buf := NewBuffer(8)
	buf.EnsureCapacity(1000)

	if buf.Cap() != 1000 {
		t.Errorf("Cap() = %d, want exactly 1000", buf.Cap())
	}
}

func TestNewBufferMinimumSize(t *testing.T) {
	buf := NewBuffer(0)
	if buf.Cap() != HeaderSize {
		t.Errorf("Cap() = %d, want %d", buf.Cap(), HeaderSize)
	}
}

func TestEnsureRequestCapacity(t *testing.T) {
	t.Run("conservative bound fits", func(t *testing.T) {
		buf := NewBuffer(64)
		// 8 + 3*5+1 = 24 <= 64
		buf.EnsureRequestCapacity([]string{"build"})
		if buf.Cap() != 64 || buf.Grows() != 0 {
			t.Errorf("Cap() = %d, Grows() = %d, want 64 and 0", buf.Cap(), buf.Grows())
		}
	})

	t.Run("exact size used when bound does not fit", func(t *testing.T) {
		buf := NewBuffer(16)
		names := []string{"statistics", "namespaces"}
		buf.EnsureRequestCapacity(names)

		want := HeaderSize + len("statistics") + 1 + len("namespaces") + 1
		if buf.Cap() != want {
			t.Errorf("Cap() = %d, want exact size %d", buf.Cap(), want)
		}
	})

	t.Run("exact size already fits", func(t *testing.T) {
		buf := NewBuffer(30)
		// bound 8 + 3*10+1 = 39 > 30, exact 8 + 11 = 19 <= 30
		buf.EnsureRequestCapacity([]string{"statistics"})
		if buf.Cap() != 30 || buf.Grows() != 0 {
			t.Errorf("Cap() = %d, Grows() = %d, want 30 and 0", buf.Cap(), buf.Grows())
		}
	})
}

func TestEstimateRequestSize(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  int
	}{
		{name: "no names", names: nil, want: 8},
		{name: "ascii", names: []string{"node"}, want: 8 + 5},
		{name: "many", names: []string{"a", "bc", "def"}, want: 8 + 2 + 3 + 4},
		{name: "multi-byte", names: []string{"héllo"}, want: 8 + 6 + 1},
		{name: "invalid byte", names: []string{"a\xffb"}, want: 8 + 5 + 1},
		{name: "replacement char", names: []string{"�"}, want: 8 + 3 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateRequestSize(tt.names...); got != tt.want {
				t.Errorf("EstimateRequestSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConservativeBoundCoversExactSize(t *testing.T) {
	inputs := []string{
		"",
		"namespace/test",
		"日本語",
		"\xff\xfe\xfd",
		strings.Repeat("é", 100),
		"mixed\x80asciié",
	}

	for _, s := range inputs {
		names := []string{s}
		if conservativeRequestSize(names) < EstimateRequestSize(names...) {
			t.Errorf("conservative bound %d < exact %d for %q", conservativeRequestSize(names), EstimateRequestSize(names...), s)
		}
	}
}

func TestBufferReset(t *testing.T) {
	buf := NewBuffer(32)
	buf.length = 10
	buf.offset = 5

	buf.Reset()

	if buf.Len() != 0 || buf.Offset() != 0 {
		t.Errorf("after Reset: Len() = %d, Offset() = %d, want 0 and 0", buf.Len(), buf.Offset())
	}
	if buf.Cap() != 32 {
		t.Errorf("Reset changed capacity to %d", buf.Cap())
	}
}

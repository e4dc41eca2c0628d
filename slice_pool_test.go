package cfr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatSlicePool_ReusedSlicesAreZeroed(t *testing.T) {
	pool := &floatSlicePool{}

	s := pool.alloc(4)
	for i := range s {
		s[i] = float64(i + 1)
	}
	pool.free(s)

	reused := pool.alloc(4)
	assert.Equal(t, []float64{0, 0, 0, 0}, reused)
}

func TestFloatSlicePool_NilPoolStillAllocates(t *testing.T) {
	var pool *floatSlicePool
	s := pool.alloc(3)
	assert.Len(t, s, 3)
	pool.free(s) // must not panic
}

// BenchmarkAllocFree-24    200000000    7.79 ns/op
func BenchmarkAllocFree(b *testing.B) {
	pool := &floatSlicePool{}
	for i := 0; i < b.N; i++ {
		v := pool.alloc(10)
		pool.free(v)
	}
}

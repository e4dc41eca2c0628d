package cfr

import "sync"

// floatSlicePool recycles the per-node action utility buffers used
// during traversal, since the tree recursion allocates and discards one
// per player node. Returned buffers are zeroed.
type floatSlicePool struct {
	pool sync.Pool
}

func (p *floatSlicePool) alloc(n int) []float64 {
	if p == nil {
		return make([]float64, n)
	}

	if s, ok := p.pool.Get().(*[]float64); ok {
		return append(*s, make([]float64, n)...)
	}

	return make([]float64, n)
}

func (p *floatSlicePool) free(s []float64) {
	if p == nil || cap(s) == 0 {
		return
	}

	s = s[:0]
	p.pool.Put(&s)
}

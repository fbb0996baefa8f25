package spectrum

// Ring is a fixed-capacity FIFO of float64 samples. Once full, every Push
// evicts the oldest sample.
type Ring struct {
	data []float64
	pos  int
	full bool
}

// NewRing creates a Ring holding at most capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{data: make([]float64, capacity)}
}

// Push adds v, evicting the oldest sample when the ring is full.
func (r *Ring) Push(v float64) {
	r.data[r.pos] = v
	r.pos++
	if r.pos == len(r.data) {
		r.pos = 0
		r.full = true
	}
}

// Len returns the number of samples held.
func (r *Ring) Len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

func (r *Ring) Cap() int { return len(r.data) }

// Mean is the arithmetic mean of the samples held, or 0 when empty.
func (r *Ring) Mean() float64 {
	n := r.Len()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range r.data[:n] {
		sum += v
	}
	return sum / float64(n)
}

// Slice returns the samples in insertion order.
func (r *Ring) Slice() []float64 {
	out := make([]float64, r.Len())
	if r.full {
		k := copy(out, r.data[r.pos:])
		copy(out[k:], r.data[:r.pos])
	} else {
		copy(out, r.data[:r.pos])
	}
	return out
}

// Reset empties the ring.
func (r *Ring) Reset() {
	r.pos = 0
	r.full = false
	clear(r.data)
}

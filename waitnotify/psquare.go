package waitnotify

import (
	"sort"
)

// quantile estimates one quantile of a stream with the P-Square algorithm,
// in constant space (Jain and Chlamtac, CACM 28(10), 1985).
//
// Not safe for concurrent use.
type quantile struct {
	p       float64
	heights [5]float64
	pos     [5]float64
	want    [5]float64
	step    [5]float64
	count   int
}

func newQuantile(p float64) quantile {
	p = min(max(p, 0), 1)
	return quantile{
		p:    p,
		step: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (x *quantile) observe(v float64) {
	x.count++
	if x.count <= 5 {
		x.heights[x.count-1] = v
		if x.count == 5 {
			sort.Float64s(x.heights[:])
			x.pos = [5]float64{0, 1, 2, 3, 4}
			x.want = [5]float64{0, 2 * x.p, 4 * x.p, 2 + 2*x.p, 4}
		}
		return
	}

	var k int
	switch {
	case v < x.heights[0]:
		x.heights[0] = v
	case v >= x.heights[4]:
		x.heights[4] = v
		k = 3
	default:
		for k = 0; k < 3 && v >= x.heights[k+1]; k++ {
		}
	}
	for i := k + 1; i < 5; i++ {
		x.pos[i]++
	}
	for i := range x.want {
		x.want[i] += x.step[i]
	}

	for i := 1; i < 4; i++ {
		d := x.want[i] - x.pos[i]
		if !(d >= 1 && x.pos[i+1]-x.pos[i] > 1) && !(d <= -1 && x.pos[i-1]-x.pos[i] < -1) {
			continue
		}
		s := 1.0
		if d < 0 {
			s = -1
		}
		h := x.parabolic(i, s)
		if h <= x.heights[i-1] || h >= x.heights[i+1] {
			h = x.linear(i, s)
		}
		x.heights[i] = h
		x.pos[i] += s
	}
}

func (x *quantile) parabolic(i int, s float64) float64 {
	n0, n1, n2 := x.pos[i-1], x.pos[i], x.pos[i+1]
	q0, q1, q2 := x.heights[i-1], x.heights[i], x.heights[i+1]
	return q1 + s/(n2-n0)*((n1-n0+s)*(q2-q1)/(n2-n1)+(n2-n1-s)*(q1-q0)/(n1-n0))
}

func (x *quantile) linear(i int, s float64) float64 {
	j := i + int(s)
	return x.heights[i] + s*(x.heights[j]-x.heights[i])/(x.pos[j]-x.pos[i])
}

// value returns the current estimate, exact while fewer than five
// observations have been made.
func (x *quantile) value() float64 {
	switch {
	case x.count == 0:
		return 0
	case x.count < 5:
		buf := x.heights
		s := buf[:x.count]
		sort.Float64s(s)
		return s[int(float64(x.count-1)*x.p)]
	default:
		return x.heights[2]
	}
}

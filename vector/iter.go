package vector

import (
	"iter"

	"github.com/arloliu/fixvec/fixedpoint"
)

// All returns an iterator over the index and decoded value of every element.
//
// Each range statement keeps its own position, so a vector that is not being
// mutated can be ranged over nested or from several goroutines at once.
// Iteration stops early if a component cannot be read; Get at the next index
// reports that error.
//
// Example:
//
//	for i, x := range v.All() {
//	    fmt.Println(i, x)
//	}
func (v *Vector) All() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i := range v.n {
			c, err := v.components(i)
			if err != nil {
				return
			}
			if !yield(i, fixedpoint.DecodeComponents(c, v.precision)) {
				return
			}
		}
	}
}

// AllValues returns an iterator over the decoded values only. It stops on the
// same read errors as All.
func (v *Vector) AllValues() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for _, x := range v.All() {
			if !yield(x) {
				return
			}
		}
	}
}

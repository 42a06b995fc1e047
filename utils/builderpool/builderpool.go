// Package builderpool recycles strings.Builder values for hot-path key building.
package builderpool

import (
	"strings"
	"sync"
)

var pool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

func Get() *strings.Builder {
	sb := pool.Get().(*strings.Builder)
	sb.Reset()
	sb.Grow(32)
	return sb
}

func Put(sb *strings.Builder) {
	pool.Put(sb)
}

// Build runs fn against a pooled builder and returns the resulting string.
func Build(fn func(sb *strings.Builder)) string {
	sb := Get()
	defer Put(sb)
	fn(sb)
	return sb.String()
}

package builderpool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	got := Build(func(sb *strings.Builder) {
		sb.WriteString("askai")
		sb.WriteByte(':')
		sb.WriteString("total")
	})
	assert.Equal(t, "askai:total", got)

	again := Build(func(sb *strings.Builder) { sb.WriteString("x") })
	assert.Equal(t, "x", again, "pooled builders start empty")
}

package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kern/internal/build"
)

func TestString(t *testing.T) {
	version, commit := build.Version, build.Commit
	t.Cleanup(func() { build.Version, build.Commit = version, commit })

	build.Version, build.Commit = "1.2.0", "none"
	assert.Equal(t, "1.2.0", build.String())

	build.Commit = "abc123"
	assert.Equal(t, "1.2.0 (abc123)", build.String())
}

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	defer func(v, b, c string) { Version, BuildTime, GitCommit = v, b, c }(Version, BuildTime, GitCommit)

	Version, BuildTime, GitCommit = "1.2.0", "unknown", "unknown"
	assert.Equal(t, "1.2.0", Full())

	GitCommit = "abc123"
	assert.Equal(t, "1.2.0 (commit abc123, built unknown)", Full())
}

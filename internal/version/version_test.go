package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullIncludesBuildIdentity(t *testing.T) {
	assert.Equal(t, "v0.1.0 (built unknown, commit unknown)", Full())
}

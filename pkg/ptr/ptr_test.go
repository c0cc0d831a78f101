package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPtr(t *testing.T) {
	p := Ptr(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "value", Deref(Ptr("value"), "fallback"))
	assert.Equal(t, "fallback", Deref(nil, "fallback"))
}

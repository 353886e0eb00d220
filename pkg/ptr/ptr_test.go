package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/namjco/sales-tracker/pkg/ptr"
)

func TestDeref(t *testing.T) {
	assert.Equal(t, "p-1", ptr.Deref(ptr.New("p-1")))
	assert.Equal(t, "", ptr.Deref[string](nil))
	assert.Equal(t, int32(0), ptr.Deref[int32](nil))
}

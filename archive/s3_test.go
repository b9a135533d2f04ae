package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledWithoutBucket(t *testing.T) {
	s, err := New(context.Background(), Options{})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = s.Put(context.Background(), "k", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "tenant_a/invoices/INV-0007/packing-list.pdf", Key("tenant_a", "INV-0007", "packing-list"))
}

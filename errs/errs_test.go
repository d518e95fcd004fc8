package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndOfStreamIsNotFatalKind(t *testing.T) {
	err := EndOfStream()
	require.True(t, Is(err, KindEndOfStream))
	require.True(t, errors.Is(err, ErrEndOfStream))
}

func TestUnknownContainerTypeCarriesPayload(t *testing.T) {
	err := UnknownContainerType(7)
	require.True(t, Is(err, KindUnknownContainerType))
	require.Contains(t, err.Error(), "7")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(KindIO, "reading length prefix", cause)
	require.True(t, Is(err, KindIO))
	require.Contains(t, err.Error(), "boom")
}

func TestIsDoesNotMatchOtherKinds(t *testing.T) {
	err := New(KindFormat, "bad doc")
	require.False(t, Is(err, KindCatalogParse))
}

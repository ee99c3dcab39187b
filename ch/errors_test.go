package ch

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
)

func TestOpErrorUnwrapsToUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	op := newOpError(KindTransport, underlying)

	require.ErrorIs(t, op, underlying)
	require.Contains(t, op.Error(), "transport")
	require.Contains(t, op.Error(), "boom")
}

func TestOpErrorAsMatchesOnKind(t *testing.T) {
	err := error(newOpError(KindServerError, errors.New("exception")))

	var op *OpError
	require.True(t, errors.As(err, &op))
	require.Equal(t, KindServerError, op.Kind)
}

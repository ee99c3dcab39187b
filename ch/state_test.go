package ch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateClosed:       "closed",
		StateConnecting:   "connecting",
		StateHandshaking:  "handshaking",
		StateReady:        "ready",
		StateQueryActive:  "query_active",
		State(99):         "unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}

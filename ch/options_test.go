package ch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.setDefaults()

	require.Equal(t, "localhost:9000", o.Address)
	require.Equal(t, "default", o.Database)
	require.Equal(t, "default", o.User)
	require.Equal(t, 10*time.Second, o.DialTimeout)
	require.Equal(t, defaultVersion.Name, o.ClientName)
	require.NotNil(t, o.Logger)
}

func TestOptionsSetDefaultsPreservesExplicitValues(t *testing.T) {
	o := Options{
		Address:     "ch.internal:9440",
		Database:    "analytics",
		User:        "svc",
		DialTimeout: 2 * time.Second,
		ClientName:  "myapp",
	}
	o.setDefaults()

	require.Equal(t, "ch.internal:9440", o.Address)
	require.Equal(t, "analytics", o.Database)
	require.Equal(t, "svc", o.User)
	require.Equal(t, 2*time.Second, o.DialTimeout)
	require.Equal(t, "myapp", o.ClientName)
}

func TestToProtoSettings(t *testing.T) {
	require.Nil(t, toProtoSettings(nil))

	out := toProtoSettings([]Setting{{Key: "max_threads", Value: "4", Important: true}})
	require.Len(t, out, 1)
	require.Equal(t, "max_threads", out[0].Key)
	require.Equal(t, "4", out[0].Value)
	require.True(t, out[0].Important)
}

package chparam

import (
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolveTypeUsesDeclaredTypeVerbatim(t *testing.T) {
	typ, err := ResolveType(Param{Name: "x", Value: int64(1), Type: "Nullable(Int64)"})
	require.NoError(t, err)
	require.Equal(t, "Nullable(Int64)", typ)
}

func TestResolveTypeInfersScalars(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{int8(1), "Int8"},
		{uint8(1), "UInt8"},
		{int32(1), "Int32"},
		{uint64(1), "UInt64"},
		{float32(1), "Float32"},
		{float64(1), "Float64"},
		{"s", "String"},
		{true, "Bool"},
		{uuid.New(), "UUID"},
		{net.ParseIP("::1"), "IPv6"},
		{time.Now(), "DateTime64(6)"},
		{Date{}, "Date"},
		{DateTime{}, "DateTime"},
		{Decimal{Text: "1.5"}, "Decimal128(18)"},
	}
	for _, c := range cases {
		typ, err := ResolveType(Param{Name: "p", Value: c.value})
		require.NoError(t, err)
		require.Equal(t, c.want, typ)
	}
}

func TestResolveTypeInfersArray(t *testing.T) {
	typ, err := ResolveType(Param{Name: "xs", Value: []int64{1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, "Array(Int64)", typ)
}

func TestResolveTypeNilRequiresDeclaredType(t *testing.T) {
	_, err := ResolveType(Param{Name: "x", Value: nil})
	require.ErrorIs(t, err, ErrTypeInferenceFailure)
}

func TestResolveTypeUnsupportedGoType(t *testing.T) {
	_, err := ResolveType(Param{Name: "x", Value: map[string]string{}})
	require.ErrorIs(t, err, ErrTypeInferenceFailure)
}

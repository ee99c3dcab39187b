package chparam

import (
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFieldDumpNil(t *testing.T) {
	s, err := FieldDump(nil)
	require.NoError(t, err)
	require.Equal(t, "NULL", s)
}

func TestFieldDumpEscapesQuotesAndBackslashes(t *testing.T) {
	s, err := FieldDump(`it's a \test`)
	require.NoError(t, err)
	require.Equal(t, `'it\'s a \\test'`, s)
}

func TestFieldDumpBool(t *testing.T) {
	s, err := FieldDump(true)
	require.NoError(t, err)
	require.Equal(t, "'1'", s)

	s, err = FieldDump(false)
	require.NoError(t, err)
	require.Equal(t, "'0'", s)
}

func TestFieldDumpIntegers(t *testing.T) {
	s, err := FieldDump(int64(-42))
	require.NoError(t, err)
	require.Equal(t, "'-42'", s)

	s, err = FieldDump(uint32(42))
	require.NoError(t, err)
	require.Equal(t, "'42'", s)
}

func TestFieldDumpDateAndDateTime(t *testing.T) {
	d := Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	s, err := FieldDump(d)
	require.NoError(t, err)
	require.Equal(t, "'2024-03-15'", s)

	dt := DateTime(time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC))
	s, err = FieldDump(dt)
	require.NoError(t, err)
	require.Equal(t, "'2024-03-15 13:45:30'", s)
}

func TestFieldDumpUUIDAndIP(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	s, err := FieldDump(id)
	require.NoError(t, err)
	require.Equal(t, "'123e4567-e89b-12d3-a456-426614174000'", s)

	ip := net.ParseIP("192.0.2.1")
	s, err = FieldDump(ip)
	require.NoError(t, err)
	require.Equal(t, "'192.0.2.1'", s)
}

func TestFieldDumpArray(t *testing.T) {
	s, err := FieldDump([]int64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, "'[1, 2, 3]'", s)

	s, err = FieldDump([]string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, "'"+`[\'a\', \'b\']`+"'", s)
}

func TestFieldDumpUnsupportedType(t *testing.T) {
	_, err := FieldDump(struct{}{})
	require.Error(t, err)
}

func TestFieldDumpFloatSpecials(t *testing.T) {
	zero := 0.0
	nan := zero / zero
	s, err := FieldDump(nan)
	require.NoError(t, err)
	require.Equal(t, "'nan'", s)
}

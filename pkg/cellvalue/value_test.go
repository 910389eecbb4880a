package cellvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, Null().IsEmpty())
	assert.True(t, Text("").IsEmpty())
	assert.True(t, StringList(nil).IsEmpty())
	assert.True(t, RowRefList(nil).IsEmpty())

	assert.False(t, Text("x").IsEmpty())
	assert.False(t, Number(0).IsEmpty())
	assert.False(t, Bool(false).IsEmpty())
	assert.False(t, StringList([]string{"a"}).IsEmpty())
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "42", Number(42).String())
	assert.Equal(t, "3.14", Number(3.14).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "a, b", StringList([]string{"a", "b"}).String())
	assert.Equal(t, "1, 2", RowRefList([]int64{1, 2}).String())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, v := range []Value{
		Null(),
		Text("héllo"),
		Number(-7.5),
		Bool(true),
		StringList([]string{"x", "y"}),
		RowRefList([]int64{3, 1}),
	} {
		encoded, err := v.Encode()
		require.NoError(t, err)
		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, v.Kind(), decoded.Kind())
		assert.Equal(t, v.Interface(), decoded.Interface())
	}

	_, err := Decode("not json")
	assert.Error(t, err)
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = FromAny(int64(7))
	require.NoError(t, err)
	assert.Equal(t, KindNumber, v.Kind())

	v, err = FromAny([]any{float64(1), float64(2)})
	require.NoError(t, err)
	assert.Equal(t, KindRowRefList, v.Kind())
	assert.Equal(t, []int64{1, 2}, v.RowRefs())

	v, err = FromAny([]any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, KindStringList, v.Kind())

	_, err = FromAny([]any{"a", float64(1)})
	assert.Error(t, err)

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestSentinels(t *testing.T) {
	assert.True(t, Text(SentinelCycle).IsSentinel())
	assert.True(t, Text(SentinelConfigError).IsSentinel())
	assert.True(t, Text(SentinelError).IsSentinel())
	assert.False(t, Text("#OK").IsSentinel())
	assert.False(t, Text("#1!").IsSentinel())
	assert.False(t, Number(1).IsSentinel())
}

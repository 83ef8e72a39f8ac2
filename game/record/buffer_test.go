package record

import (
	"errors"
	"testing"

	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arena builds live bytes followed by pad zeros and a 0x1C-byte trailer.
func arena(live []byte, pad int) []byte {
	out := append([]byte(nil), live...)
	out = append(out, make([]byte, pad)...)
	for range TrailerSize {
		out = append(out, 0xEE)
	}
	return out
}

func TestBuffer_Measure(t *testing.T) {
	b := NewBuffer(arena([]byte{1, 2, 3, 4}, 100))
	assert.Equal(t, 4, b.Active())
	assert.Equal(t, 100, b.Slack())
	assert.Equal(t, 4+100+TrailerSize, b.Len())
}

func TestBuffer_SpliceGrowShrink(t *testing.T) {
	b := NewBuffer(arena([]byte{1, 2, 3, 4, 5, 6}, 80))
	total := b.Len()

	require.NoError(t, b.Splice(2, 1, []byte{9, 9, 9, 9}))
	assert.Equal(t, total, b.Len())
	assert.Equal(t, []byte{1, 2, 9, 9, 9, 9, 4, 5, 6}, b.Bytes()[:9])
	assert.Equal(t, 9, b.Active())
	assert.Equal(t, 77, b.Slack())

	require.NoError(t, b.Splice(2, 4, []byte{3}))
	assert.Equal(t, total, b.Len())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0, 0}, b.Bytes()[:9])
	assert.Equal(t, 80, b.Slack())
	assert.Equal(t, byte(0xEE), b.Bytes()[b.Len()-1])
}

func TestBuffer_SpliceMatchesPadRemoval(t *testing.T) {
	live := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	raw := arena(live, RelicDelta+8)
	b := NewBuffer(append([]byte(nil), raw...))

	relic := NewRelicItem(0xC0800055, RelicTemplate{RelicID: 117})
	require.NoError(t, b.Splice(0, SizeBase, relic.Encode()))

	// Same as inserting the record and cutting RelicDelta bytes just before the trailer.
	want := append(relic.Encode(), raw[SizeBase:]...)
	want = append(want[:len(want)-TrailerSize-RelicDelta], want[len(want)-TrailerSize:]...)
	assert.Equal(t, want, b.Bytes())
}

func TestBuffer_SpliceCapacity(t *testing.T) {
	b := NewBuffer(arena([]byte{1, 2, 3}, 4))
	err := b.Splice(0, 1, make([]byte, 10))
	var ce *saveerr.CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []byte{1, 2, 3}, b.Bytes()[:3])

	err = b.Splice(2, 5, nil)
	var se *saveerr.StructuralError
	assert.True(t, errors.As(err, &se))
}

func TestBuffer_WriteIntoPadExtendsActive(t *testing.T) {
	b := NewBuffer(arena([]byte{1, 2}, 20))
	require.NoError(t, b.WriteAt(4, []byte{7, 7}))
	assert.Equal(t, 6, b.Active())

	require.NoError(t, b.Splice(0, 0, []byte{5}))
	assert.Equal(t, []byte{5, 1, 2, 0, 0, 7, 7}, b.Bytes()[:7])

	v, err := b.Uint32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00020105), v)
	require.NoError(t, b.PutUint32(0, 0xAABBCCDD))
	_, err = b.Uint32(b.Len() - 2)
	assert.Error(t, err)
}

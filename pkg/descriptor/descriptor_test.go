package descriptor

import (
	"errors"
	"testing"

	"github.com/rstms/isolyzer/pkg/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilderShortRecord(t *testing.T) {
	_, err := NewBuilder(make(encoding.Region, 10), 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortRecord))

	b, err := NewBuilder(make(encoding.Region, 11), 11)
	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestBuilderFields(t *testing.T) {
	data := encoding.Region{0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03, 'A', 'B', 0x00}
	b, err := NewBuilder(data, len(data))
	require.NoError(t, err)

	d := b.Uint8("first", 0).
		Uint16BE("second", 1).
		Uint32BE("third", 3).
		Text("name", 7, 10).
		Uint32BE("pastEnd", 8).
		Build(KIND_APPLE_ZERO_BLOCK, 512)

	require.True(t, d.Parsed)
	assert.Equal(t, int64(512), d.Offset)
	assert.Equal(t, KIND_APPLE_ZERO_BLOCK, d.Kind)
	require.Len(t, d.Fields, 5)

	t.Run("order", func(t *testing.T) {
		names := []string{}
		for _, f := range d.Fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"first", "second", "third", "name", "pastEnd"}, names)
	})

	t.Run("int", func(t *testing.T) {
		v, ok := d.Int("second")
		require.True(t, ok)
		assert.Equal(t, int64(2), v)

		v, ok = d.Int("third")
		require.True(t, ok)
		assert.Equal(t, int64(3), v)
	})

	t.Run("sentinel is not an integer", func(t *testing.T) {
		raw, found := d.Get("pastEnd")
		require.True(t, found)
		assert.Equal(t, encoding.Sentinel, raw)

		_, ok := d.Int("pastEnd")
		assert.False(t, ok)
	})

	t.Run("text", func(t *testing.T) {
		assert.Equal(t, "AB", d.String("name"))
		assert.Equal(t, "", d.String("missing"))
		_, ok := d.Int("name")
		assert.False(t, ok)
	})
}

func TestFailed(t *testing.T) {
	d := Failed(KIND_MASTER_DIRECTORY_BLOCK, 1024, ErrShortRecord)
	assert.False(t, d.Parsed)
	assert.Empty(t, d.Fields)
	assert.Equal(t, ErrShortRecord.Error(), d.Failure)
}

func TestResultLookup(t *testing.T) {
	good := Descriptor{Kind: KIND_PRIMARY_VOLUME_DESCRIPTOR, Offset: 34816, Parsed: true}
	r := Result{
		Family: FAMILY_ISO9660,
		Descriptors: []Descriptor{
			Failed(KIND_PRIMARY_VOLUME_DESCRIPTOR, 32768, ErrShortRecord),
			good,
			{Kind: KIND_PRIMARY_VOLUME_DESCRIPTOR, Offset: 36864, Parsed: true},
		},
	}

	first, ok := r.First(KIND_PRIMARY_VOLUME_DESCRIPTOR)
	require.True(t, ok)
	assert.Equal(t, good, first)
	assert.Len(t, r.All(KIND_PRIMARY_VOLUME_DESCRIPTOR), 2)

	_, ok = r.First(KIND_UDF_PARTITION_DESCRIPTOR)
	assert.False(t, ok)
}

func TestBuilderDateTime(t *testing.T) {
	data := encoding.Region("2024010212304500\xf81988063015000000")
	b, err := NewBuilder(data, len(data))
	require.NoError(t, err)

	d := b.DateTime("created", 0, 17).
		DateTime("recorded", 17, 33).
		Build(KIND_PRIMARY_VOLUME_DESCRIPTOR, 0)

	assert.Equal(t, "2024/01/02, 12:30:45", d.String("created"))
	offset, ok := d.Int("createdGMTOffset")
	require.True(t, ok)
	assert.Equal(t, int64(-8), offset)

	assert.Equal(t, "1988/06/30, 15:00:00", d.String("recorded"))
	_, found := d.Get("recordedGMTOffset")
	assert.False(t, found)
}

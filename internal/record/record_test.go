package record

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
)

func TestBuilder_PreservesOrder(t *testing.T) {
	b := NewBuilder(4)
	require.NoError(t, b.Add("hello"))
	require.NoError(t, b.Add(true))
	require.NoError(t, b.AddAs(cell.Double, 2))
	require.NoError(t, b.AddNull(cell.Blob))
	require.Equal(t, 4, b.Len())

	r := b.Finish()
	require.Equal(t, 4, r.Len())
	require.Equal(t, []any{"hello", true, 2.0, nil}, r.Values())
	require.Equal(t, cell.Blob, r.At(3).Affinity())
}

func TestBuilder_RejectsAfterFinish(t *testing.T) {
	b := NewBuilder(1)
	require.NoError(t, b.Add(1))
	r := b.Finish()

	require.ErrorIs(t, b.Add(2), ErrBuilderFinished)
	require.ErrorIs(t, b.Append(cell.NewInt(2)), ErrBuilderFinished)
	require.ErrorIs(t, b.AddAs(cell.Int, 2), ErrBuilderFinished)
	require.ErrorIs(t, b.AddNull(cell.Int), ErrBuilderFinished)
	require.Equal(t, 1, r.Len())
}

func TestBuilder_BadValues(t *testing.T) {
	b := NewBuilder(0)
	require.ErrorIs(t, b.Add(nil), cell.ErrNilValue)
	require.Error(t, b.AddAs(cell.Bool, "x"))
	require.Equal(t, 0, b.Len())
}

func TestRecord_EqualAndHash(t *testing.T) {
	a := Of(cell.NewString("x"), cell.NewInt(1))
	b := Of(cell.NewString("x"), cell.NewInt(1))
	c := Of(cell.NewString("x"), cell.Null(cell.Int))

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(Of(cell.NewString("x"))))
	require.Equal(t, a.Hash(), b.Hash())
	require.NotEqual(t, a.Hash(), c.Hash())
	require.Equal(t, `["x", 1]`, a.String())
}

func TestRecord_CellsIsCopy(t *testing.T) {
	r := Of(cell.NewInt(1))
	cs := r.Cells()
	cs[0] = cell.NewInt(2)
	require.Equal(t, int64(1), r.At(0).Int())
}

func TestEncodeDecodeRecord_RoundTrip(t *testing.T) {
	r := Of(
		cell.NewInt(42),
		cell.NewString("hello"),
		cell.NewBool(true),
		cell.Null(cell.Double),
		cell.NewBlob([]byte{0x01, 0x02, 0x03}),
	)

	buf := EncodeRecord(r)
	// trailing bytes belong to the next frame
	buf = append(buf, 0xFF, 0xFF)

	got, n, err := DecodeRecord(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf)-2, n)
	require.True(t, r.Equal(got))

	empty, n, err := DecodeRecord(EncodeRecord(Record{}))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, 0, empty.Len())
}

func TestDecodeRecord_BadBuffer(t *testing.T) {
	buf := EncodeRecord(Of(cell.NewInt(99), cell.NewString("test")))

	t.Run("truncated buffer", func(t *testing.T) {
		_, _, err := DecodeRecord(buf[:len(buf)-3])
		require.Error(t, err)
		require.True(t, errkind.DataFormat.Is(err))
	})

	t.Run("too short for count", func(t *testing.T) {
		_, _, err := DecodeRecord([]byte{0x00})
		require.True(t, errkind.DataFormat.Is(err))
	})

	t.Run("absurd count", func(t *testing.T) {
		_, _, err := DecodeRecord([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0})
		require.True(t, errkind.DataFormat.Is(err))
	})

	t.Run("bad cell", func(t *testing.T) {
		bad := append([]byte(nil), buf...)
		bad[8] = 0x7F // tag of the first cell
		_, _, err := DecodeRecord(bad)
		require.True(t, errkind.DataFormat.Is(err))
	})
}

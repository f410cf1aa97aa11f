package primitive

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm-mapper/options"
)

type color int

const (
	colorRed color = iota + 1
	colorBlue
)

func (c color) IsValid() bool { return c == colorRed || c == colorBlue }

type level string

type blob []byte

func convertTo[T any](t *testing.T, src any, allowed options.CategoryEnum) (T, error) {
	t.Helper()

	var dst T

	err := Convert(src, reflect.ValueOf(&dst).Elem(), allowed)

	return dst, err
}

func TestConvert_Numbers(t *testing.T) {
	t.Run("int64 to int8 fits", func(t *testing.T) {
		got, err := convertTo[int8](t, int64(100), options.CategoryDefault)
		require.NoError(t, err)
		assert.Equal(t, int8(100), got)
	})

	t.Run("int64 to int8 overflows", func(t *testing.T) {
		_, err := convertTo[int8](t, int64(300), options.CategoryDefault)
		assert.ErrorIs(t, err, ErrLossy)
	})

	t.Run("overflow allowed when unsafe", func(t *testing.T) {
		got, err := convertTo[int8](t, int64(300), options.CategoryDefault|options.CategoryUnsafeNumber)
		require.NoError(t, err)
		assert.Equal(t, int8(44), got)
	})

	t.Run("negative to unsigned", func(t *testing.T) {
		_, err := convertTo[uint](t, int64(-1), options.CategoryDefault)
		assert.ErrorIs(t, err, ErrLossy)
	})

	t.Run("whole float to int", func(t *testing.T) {
		got, err := convertTo[int](t, 3.0, options.CategoryDefault)
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("fractional float to int", func(t *testing.T) {
		_, err := convertTo[int](t, 3.5, options.CategoryDefault)
		assert.ErrorIs(t, err, ErrLossy)
	})

	t.Run("float64 to float32 precision", func(t *testing.T) {
		_, err := convertTo[float32](t, 0.1, options.CategoryDefault)
		assert.ErrorIs(t, err, ErrLossy)

		got, err := convertTo[float32](t, 0.5, options.CategoryDefault)
		require.NoError(t, err)
		assert.Equal(t, float32(0.5), got)
	})

	t.Run("large int to float64", func(t *testing.T) {
		_, err := convertTo[float64](t, int64(math.MaxInt64), options.CategoryDefault)
		assert.ErrorIs(t, err, ErrLossy)
	})

	t.Run("numbers not allowed", func(t *testing.T) {
		_, err := convertTo[int](t, int64(1), options.CategoryNone)
		assert.ErrorIs(t, err, ErrNotAllowed)
	})
}

func TestConvert_Text(t *testing.T) {
	got, err := convertTo[int](t, " 42 ", options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = convertTo[int8](t, "1000", options.CategoryDefault)
	assert.ErrorIs(t, err, ErrInvalidValue)

	s, err := convertTo[string](t, 2.5, options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, "2.5", s)

	b, err := convertTo[bool](t, "Yes", options.CategoryDefault)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = convertTo[bool](t, "maybe", options.CategoryDefault)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = convertTo[bool](t, int64(1), options.CategoryDefault)
	assert.ErrorIs(t, err, ErrNotAllowed)

	b, err = convertTo[bool](t, int64(1), options.CategoryNumericBool)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestConvert_TimeAndDuration(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)

	got, err := convertTo[time.Time](t, when.Format(time.RFC3339Nano), options.CategoryDefault)
	require.NoError(t, err)
	assert.True(t, when.Equal(got))

	_, err = convertTo[time.Time](t, int64(0), options.CategoryDefault)
	assert.ErrorIs(t, err, ErrNotAllowed)

	got, err = convertTo[time.Time](t, int64(86400), options.CategoryTimestamp)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), got)

	d, err := convertTo[time.Duration](t, "1m30s", options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = convertTo[time.Duration](t, 1.5, options.CategorySeconds)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = convertTo[time.Duration](t, int64(5), options.CategoryNanoseconds)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Nanosecond, d)
}

func TestConvert_Enums(t *testing.T) {
	c, err := convertTo[color](t, int64(2), options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, colorBlue, c)

	_, err = convertTo[color](t, int64(7), options.CategoryDefault)
	assert.ErrorIs(t, err, ErrInvalidValue)

	l, err := convertTo[level](t, "debug", options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, level("debug"), l)

	_, err = convertTo[level](t, "debug", options.CategorySafeNumber)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestConvert_Containers(t *testing.T) {
	p, err := convertTo[*int](t, int64(9), options.CategoryDefault)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 9, *p)

	p, err = convertTo[*int](t, nil, options.CategoryDefault)
	require.NoError(t, err)
	assert.Nil(t, p)

	ints, err := convertTo[[]int](t, []any{int64(1), int64(2)}, options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ints)

	_, err = convertTo[[]int](t, int64(1), options.CategoryDefault)
	assert.ErrorIs(t, err, ErrUnsupported)

	arr, err := convertTo[[2]string](t, []any{"a", "b"}, options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"a", "b"}, arr)

	_, err = convertTo[[2]string](t, []any{"a"}, options.CategoryDefault)
	assert.ErrorIs(t, err, ErrLossy)

	arr, err = convertTo[[2]string](t, []any{"a"}, options.CategoryDefault|options.CategoryUnsafeArray)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"a", ""}, arr)

	bl, err := convertTo[blob](t, []byte{1, 2}, options.CategoryDefault)
	require.NoError(t, err)
	assert.Equal(t, blob{1, 2}, bl)

	_, err = convertTo[struct{}](t, "x", options.CategoryAll)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestExport(t *testing.T) {
	n := 5

	tests := []struct {
		name    string
		in      any
		allowed options.CategoryEnum
		want    any
		wantErr error
	}{
		{name: "int", in: 7, allowed: options.CategoryDefault, want: int64(7)},
		{name: "uint overflow", in: uint64(math.MaxUint64), allowed: options.CategoryDefault, wantErr: ErrLossy},
		{name: "float32", in: float32(0.5), allowed: options.CategoryDefault, want: 0.5},
		{name: "pointer", in: &n, allowed: options.CategoryDefault, want: int64(5)},
		{name: "nil pointer", in: (*int)(nil), allowed: options.CategoryDefault, want: nil},
		{name: "duration text", in: 2 * time.Second, allowed: options.CategoryDefault, want: "2s"},
		{name: "duration nanos", in: time.Duration(3), allowed: options.CategoryNanoseconds, want: int64(3)},
		{name: "duration denied", in: time.Second, allowed: options.CategorySafeNumber, wantErr: ErrNotAllowed},
		{name: "int enum", in: colorRed, allowed: options.CategoryDefault, want: int64(1)},
		{name: "string enum", in: level("info"), allowed: options.CategoryDefault, want: "info"},
		{name: "string enum denied", in: level("info"), allowed: options.CategorySafeNumber, wantErr: ErrNotAllowed},
		{name: "slice", in: []int8{1, 2}, allowed: options.CategoryDefault, want: []any{int64(1), int64(2)}},
		{name: "nil slice", in: []string(nil), allowed: options.CategoryDefault, want: nil},
		{name: "bytes", in: []byte("x"), allowed: options.CategoryDefault, want: []byte("x")},
		{name: "struct", in: struct{}{}, allowed: options.CategoryAll, wantErr: ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Export(reflect.ValueOf(tt.in), tt.allowed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportConvert_RoundTrip(t *testing.T) {
	type record struct {
		Count   uint16
		Ratio   float32
		Wait    time.Duration
		At      time.Time
		Color   color
		Tags    []string
		Payload blob
	}

	in := record{
		Count:   65000,
		Ratio:   0.25,
		Wait:    time.Minute,
		At:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Color:   colorBlue,
		Tags:    []string{"a"},
		Payload: blob("p"),
	}

	var out record

	iv := reflect.ValueOf(in)
	ov := reflect.ValueOf(&out).Elem()

	for i := range iv.NumField() {
		v, err := Export(iv.Field(i), options.CategoryDefault)
		require.NoError(t, err)
		require.NoError(t, Convert(v, ov.Field(i), options.CategoryDefault))
	}

	assert.Equal(t, in, out)
}

func TestCategoriesOf(t *testing.T) {
	assert.Equal(t, options.CategoryAll, CategoriesOf(ConversionPair{KindString, KindString}))
	assert.True(t, CategoriesOf(ConversionPair{KindInt64, KindInt8}).Has(options.CategorySafeNumber))
	assert.True(t, CategoriesOf(ConversionPair{KindString, KindDuration}).Has(options.CategoryDuration))
	assert.Zero(t, CategoriesOf(ConversionPair{KindTime, KindBool}))
}

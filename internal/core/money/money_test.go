package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mezgeb/internal/core/apperror"
)

func TestRound_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact_two_digits", "10.25", "10.25"},
		{"half_up", "10.255", "10.26"},
		{"half_down_negative", "-10.255", "-10.26"},
		{"below_half", "10.254", "10.25"},
		{"above_half", "10.256", "10.26"},
		{"integer", "7", "7"},
		{"tiny", "0.005", "0.01"},
		{"tiny_negative", "-0.005", "-0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round(MustParse(tt.in))
			assert.True(t, got.Equal(MustParse(tt.want)),
				"Round(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestRound_Idempotent(t *testing.T) {
	for _, s := range []string{"0.005", "123.456", "-99.999", "1000", "0.004999"} {
		once := Round(MustParse(s))
		twice := Round(once)
		assert.True(t, once.Equal(twice), "Round(Round(%s)) differs", s)
	}
}

func TestAdd_NeverExceedsTwoDigits(t *testing.T) {
	a := MustParse("0.333")
	b := MustParse("0.333")
	sum := Add(a, b)

	assert.True(t, sum.Equal(MustParse("0.67")))
	assert.LessOrEqual(t, int32(-sum.Exponent()), int32(Scale))
}

func TestSub_AllowsNegativeResult(t *testing.T) {
	got := Sub(MustParse("10.00"), MustParse("25.50"))
	assert.True(t, got.Equal(MustParse("-15.50")))
}

func TestPercentageOf(t *testing.T) {
	tests := []struct {
		amount string
		pct    string
		want   string
	}{
		{"1000", "15", "150"},
		{"25000", "3", "750"},
		{"99.99", "15", "15.00"},  // 14.9985 rounds up
		{"100.00", "8.875", "8.88"},
		{"1.00", "0.1", "0.00"}, // sub-cent rounds to zero
	}

	for _, tt := range tests {
		got := PercentageOf(MustParse(tt.amount), decimal.RequireFromString(tt.pct))
		assert.True(t, got.Equal(MustParse(tt.want)),
			"PercentageOf(%s, %s) = %s, want %s", tt.amount, tt.pct, got, tt.want)
	}
}

func TestFromFloat_RejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromFloat(f)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	}

	got, err := FromFloat(12.34)
	require.NoError(t, err)
	assert.True(t, got.Equal(MustParse("12.34")))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("12,34")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

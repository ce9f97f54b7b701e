package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckedMul(t *testing.T) {
	v, ok := CheckedMul(5000, 1000)
	assert.True(t, ok)
	assert.Equal(t, uint64(5_000_000), v)

	_, ok = CheckedMul(math.MaxUint64, 2)
	assert.False(t, ok)

	v, ok = CheckedMul(math.MaxUint64, 1)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), v)

	v, ok = CheckedMul(math.MaxUint64, 0)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), v)
}

func TestCheckedAdd(t *testing.T) {
	v, ok := CheckedAdd(math.MaxUint64-1, 1)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), v)

	_, ok = CheckedAdd(math.MaxUint64, 1)
	assert.False(t, ok)
}

func TestDisplayAmount(t *testing.T) {
	assert.Equal(t, "5", DisplayAmount(5_000_000_000))
	assert.Equal(t, "0.000000001", DisplayAmount(1))
	assert.Equal(t, "0", DisplayAmount(0))
	// Past int64 range, must not truncate.
	assert.Equal(t, "18446744073.709551615", DisplayAmount(math.MaxUint64))
}

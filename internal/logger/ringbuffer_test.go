package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_Overwrites(t *testing.T) {
	r := NewRingBuffer[int](3)
	assert.Empty(t, r.GetAll())

	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.GetAll())
}

func TestRingBuffer_Last(t *testing.T) {
	r := NewRingBuffer[int](4)
	for i := 1; i <= 6; i++ {
		r.Push(i)
	}

	tests := []struct {
		n    int
		want []int
	}{
		{n: 0, want: []int{3, 4, 5, 6}},
		{n: 2, want: []int{5, 6}},
		{n: 10, want: []int{3, 4, 5, 6}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Last(tt.n))
	}
}

func TestRingBuffer_Clear(t *testing.T) {
	r := NewRingBuffer[string](2)
	r.Push("a")
	r.Push("b")
	r.Clear()

	assert.Equal(t, 0, r.Len())
	r.Push("c")
	assert.Equal(t, []string{"c"}, r.GetAll())
}

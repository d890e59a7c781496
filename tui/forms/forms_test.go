package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeInputRoundTrip(t *testing.T) {
	in := NewRangeInput(2.5, 75)
	assert.Equal(t, "0:00:02.500", in.Start)
	assert.Equal(t, "0:01:15.000", in.End)

	start, end, err := in.Parse()
	require.NoError(t, err)
	assert.InDelta(t, 2.5, start, 1e-9)
	assert.InDelta(t, 75, end, 1e-9)
}

func TestRangeInputParseErrors(t *testing.T) {
	_, _, err := RangeInput{Start: "abc", End: "10"}.Parse()
	assert.ErrorContains(t, err, "start")

	_, _, err = RangeInput{Start: "1", End: "-4"}.Parse()
	assert.ErrorContains(t, err, "end")
}

func TestFormsBuild(t *testing.T) {
	in := NewRangeInput(0, 10)
	assert.NotNil(t, NewRangeForm(&in, 10))

	var confirm bool
	assert.NotNil(t, NewConfirmResetForm(&confirm))
	assert.NotNil(t, Theme())
}

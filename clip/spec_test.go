package clip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    TrimSpec
		wantErr bool
	}{
		{"full range", TrimSpec{StartTime: 0, EndTime: 60, SourceDuration: 60}, false},
		{"inner range", TrimSpec{StartTime: 10, EndTime: 25, SourceDuration: 60}, false},
		{"fractional", TrimSpec{StartTime: 0.5, EndTime: 0.75, SourceDuration: 1}, false},
		{"start equals end", TrimSpec{StartTime: 10, EndTime: 10, SourceDuration: 60}, true},
		{"start after end", TrimSpec{StartTime: 20, EndTime: 10, SourceDuration: 60}, true},
		{"end past duration", TrimSpec{StartTime: 0, EndTime: 61, SourceDuration: 60}, true},
		{"negative start", TrimSpec{StartTime: -1, EndTime: 10, SourceDuration: 60}, true},
		{"zero duration", TrimSpec{StartTime: 0, EndTime: 0, SourceDuration: 0}, true},
		{"nan start", TrimSpec{StartTime: math.NaN(), EndTime: 10, SourceDuration: 60}, true},
		{"infinite duration", TrimSpec{StartTime: 0, EndTime: 10, SourceDuration: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrimSpecDuration(t *testing.T) {
	assert.Equal(t, 15.0, TrimSpec{StartTime: 10, EndTime: 25}.Duration())
}

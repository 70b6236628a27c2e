package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"red", color.NRGBA{R: 255, A: 255}},
		{" White ", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#0f0", color.NRGBA{G: 255, A: 255}},
		{"#102030", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}},
		{"#10203040", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"mauve", "#12", "#zzzzzz"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

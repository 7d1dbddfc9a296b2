package tifflayout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestClampFloat16ToGray16(t *testing.T) {
	cases := []struct {
		name string
		f    float32
		want uint16
	}{
		{"zero", 0, 0},
		{"one", 1, 0xffff},
		{"half", 0.5, 0x7fff}, // 0.5 * 0xffff = 32767.5, truncated
		{"negative clamps to zero", -3.5, 0},
		{"above one clamps to max", 12, 0xffff},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := uint32(uint16(float16.Fromfloat32(tc.f)))
			require.Equal(t, tc.want, clampFloat16ToGray16(raw))
		})
	}
}

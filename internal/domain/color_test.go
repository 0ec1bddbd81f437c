package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHex(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "#112233", want: "#112233"},
		{in: "AABBCC", want: "#aabbcc"},
		{in: "#abc", want: "#aabbcc"},
		{in: "  #FfA500 ", want: "#ffa500"},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := NormalizeHex(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidColor, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestDefaultsFullyPopulated(t *testing.T) {
	colors := DefaultColors()
	enabled := DefaultEnabled()
	for _, p := range AllParts() {
		_, err := NormalizeHex(colors[p])
		assert.NoError(t, err, p)
		_, ok := enabled[p]
		assert.True(t, ok, p)
	}
	assert.Equal(t, []ExteriorPart{PartWall}, enabled.Parts())
}

func TestEnabledOnly(t *testing.T) {
	e := EnabledOnly([]ExteriorPart{PartDoor, "bogus"})
	assert.Equal(t, []ExteriorPart{PartDoor}, e.Parts())
	assert.Len(t, e, len(AllParts()))
}

func TestCloneIsIndependent(t *testing.T) {
	c := DefaultColors()
	cp := c.Clone()
	cp[PartWall] = "#000000"
	assert.NotEqual(t, c[PartWall], cp[PartWall])

	e := DefaultEnabled()
	ecp := e.Clone()
	ecp[PartDoor] = true
	assert.False(t, e[PartDoor])
}

func TestFindSwatch(t *testing.T) {
	s, ok := FindSwatch(" terracotta ")
	require.True(t, ok)
	assert.Equal(t, "#E2725B", s.Hex)
	_, ok = FindSwatch("Neon Unicorn")
	assert.False(t, ok)
	assert.Len(t, Palette(), 18)
}

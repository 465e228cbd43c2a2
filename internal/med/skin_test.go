package med

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSkin(t *testing.T) {
	for _, in := range []string{"Tipo II", "tipo ii", "II", "2", "type 2", "Skin type II", " TIPO 2 "} {
		s, err := LookupSkin(in)
		require.NoError(t, err, in)
		assert.Equal(t, "Tipo II", s.Label, in)
		assert.Equal(t, 250.0, s.Threshold, in)
	}
	s, err := LookupSkin("vi")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, s.Threshold)

	_, err = LookupSkin("Tipo VII")
	var unknown *UnknownSkinTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, err.Error(), "Tipo I, Tipo II")
}

func TestLookupSkins(t *testing.T) {
	got, err := LookupSkins([]string{"I", "", "tipo i", "3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Tipo I", got[0].Label)
	assert.Equal(t, "Tipo III", got[1].Label)

	_, err = LookupSkins([]string{"I", "X"})
	assert.Error(t, err)
}

func TestSkinTableOrder(t *testing.T) {
	require.Len(t, SkinTypes, 6)
	for i := 1; i < len(SkinTypes); i++ {
		assert.Greater(t, SkinTypes[i].Threshold, SkinTypes[i-1].Threshold)
	}
}

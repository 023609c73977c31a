package template

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetKnownTemplate(t *testing.T) {
	c := NewCatalog()
	tpl, err := c.Get("hormozi")
	require.NoError(t, err)
	require.Equal(t, "hormozi", tpl.Name)
	require.Equal(t, "karaoke_highlight", tpl.AnimationRecipe)
}

func TestGetUnknownTemplate(t *testing.T) {
	c := NewCatalog()
	_, err := c.Get("does-not-exist")
	require.Error(t, err)
}

func TestAllReturnsEveryDefaultTemplate(t *testing.T) {
	c := NewCatalog()
	all := c.All()
	require.Len(t, all, 5)
}

func TestCatalogsAreIndependentCopies(t *testing.T) {
	c1 := NewCatalog()
	c2 := NewCatalog()

	tpl, err := c1.Get("minimal")
	require.NoError(t, err)
	tpl.FontSize = 999
	c1.templates["minimal"] = tpl

	other, err := c2.Get("minimal")
	require.NoError(t, err)
	require.NotEqual(t, 999, other.FontSize)
}

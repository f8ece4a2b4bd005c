package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/config"
)

func TestLoadManifest(t *testing.T) {
	m, err := config.LoadManifest("testdata/bindings.yaml")
	require.NoError(t, err)

	assert.Equal(t, []config.Binding{
		{Abstraction: "coffee.WaterService", Implementation: "coffee.BottledWaterService"},
		{Abstraction: "coffee.BeanService[]", Implementation: "coffee.ArabicaBeanService[]"},
	}, m.Bindings)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := config.LoadManifest("testdata/nope.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "open manifest")
}

func TestParseManifest_EmptyDocument(t *testing.T) {
	m, err := config.ParseManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Bindings)
}

func TestParseManifest_TrimsNames(t *testing.T) {
	m, err := config.ParseManifest(strings.NewReader(`
bindings:
  - abstraction: "  coffee.WaterService "
    implementation: coffee.TapWaterService
`))
	require.NoError(t, err)
	assert.Equal(t, "coffee.WaterService", m.Bindings[0].Abstraction)
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "bindings:\n  - abstraction: a\n    implementation: b\n    lifetime: singleton\n"},
		{"missing implementation", "bindings:\n  - abstraction: coffee.WaterService\n"},
		{"missing abstraction", "bindings:\n  - implementation: coffee.TapWaterService\n"},
		{"not a list", "bindings: coffee.WaterService\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseManifest(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, config.ErrInvalidManifest)
		})
	}
}

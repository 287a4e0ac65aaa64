package gen

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFeatureEnabled(t *testing.T) {
	t.Run("returns true for enabled feature", func(t *testing.T) {
		c := &Config{Features: []Feature{FeatureReactive}}

		enabled, err := c.FeatureEnabled("reactive")

		assert.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("returns false for disabled feature", func(t *testing.T) {
		c := &Config{Features: []Feature{FeatureReactive}}

		enabled, err := c.FeatureEnabled("manifest")

		assert.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("returns error for unknown feature", func(t *testing.T) {
		c := &Config{}

		_, err := c.FeatureEnabled("nonexistent")

		assert.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestConfigFeatureEnabled_AllFeatures(t *testing.T) {
	for _, f := range AllFeatures {
		t.Run(f.Name, func(t *testing.T) {
			c := &Config{Features: []Feature{f}}

			enabled, err := c.FeatureEnabled(f.Name)

			assert.NoError(t, err)
			assert.True(t, enabled)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, LangSwift, c.Language)
	assert.Equal(t, "App", c.AppModule)
	assert.Equal(t, "ForgeRuntime", c.RuntimeModule)
	assert.Equal(t, runtime.GOMAXPROCS(0), c.Workers)
	assert.Empty(t, c.Features)
	assert.False(t, c.Flags().Reactive)
}

func TestConfigFlags(t *testing.T) {
	c := MustNewConfig(WithFeatures(FeatureReactive))

	assert.True(t, c.Flags().Reactive)
	assert.Equal(t, "ReactiveCoreManaging", c.Flags().SupportTypes().Manager.Name)
	assert.Equal(t, []string{ModuleReactive}, c.Flags().SupportTypes().Imports)
}

func TestConfigPackageName(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{"explicit package", Config{Package: "models", Target: "./out/app"}, "models"},
		{"target base", Config{Target: "./out/app"}, "app"},
		{"target with trailing slash", Config{Target: "./out/app/"}, "app"},
		{"no target", Config{}, "forge"},
		{"current directory", Config{Target: "."}, "forge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.PackageName())
		})
	}
}

func TestConfigModuleTable(t *testing.T) {
	t.Run("swift maps every logical module", func(t *testing.T) {
		c := MustNewConfig(WithAppModule("Garage"))

		assert.Equal(t, map[string]string{
			ModuleApp:      "Garage",
			ModuleRuntime:  "ForgeRuntime",
			ModuleReactive: "ReactiveForgeRuntime",
			ModuleCombine:  "Combine",
		}, c.ModuleTable())
	})

	t.Run("go references same-package types by default", func(t *testing.T) {
		c := MustNewConfig(WithLanguage(LangGo))

		assert.Empty(t, c.ModuleTable())
	})

	t.Run("go runtime import path", func(t *testing.T) {
		c := MustNewConfig(WithLanguage(LangGo), WithRuntimeModule("example.com/garage/runtime"))

		assert.Equal(t, map[string]string{ModuleRuntime: "example.com/garage/runtime"}, c.ModuleTable())
	})

	t.Run("explicit modules override", func(t *testing.T) {
		c := MustNewConfig(WithModules(map[string]string{ModuleCombine: ""}))

		m := c.ModuleTable()
		assert.Equal(t, "", m[ModuleCombine])
		assert.Equal(t, "App", m[ModuleApp])
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"swift", Config{Language: LangSwift}, false},
		{"go", Config{Language: LangGo, Workers: 4}, false},
		{"unknown language", Config{Language: "kotlin"}, true},
		{"empty language", Config{}, true},
		{"negative workers", Config{Language: LangGo, Workers: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFeatureByName(t *testing.T) {
	f, ok := FeatureByName("manifest")
	require.True(t, ok)
	assert.Equal(t, Beta, f.Stage)
	assert.Equal(t, "beta", f.Stage.String())

	_, ok = FeatureByName("privacy")
	assert.False(t, ok)
}

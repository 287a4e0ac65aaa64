package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/forge/compiler/gen"
	"github.com/syssam/forge/schema"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := RootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// clearEnv isolates a test from FORGE_* variables of the environment.
func clearEnv(t *testing.T) {
	for _, name := range []string{
		"FORGE_TARGET", "FORGE_LANGUAGE", "FORGE_PACKAGE", "FORGE_APP_MODULE",
		"FORGE_RUNTIME_MODULE", "FORGE_FEATURES", "FORGE_WORKERS", "FORGE_HEADER", "FORGE_VERBOSE",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func starterFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "descriptions.yaml")
	_, err := execute(t, "init", path)
	require.NoError(t, err)
	return path
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "descriptions.yaml")

	out, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Description file created at "+path)
	assert.Contains(t, out, "forge validate "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", path, "--force")
	require.NoError(t, err)
}

func TestValidateCmd(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		out, err := execute(t, "validate", starterFile(t))
		require.NoError(t, err)
		assert.Equal(t, "✓ 2 entities, 1 endpoints, 2 payload test cases\n", out)
	})

	t.Run("unknown entity", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "d.yaml")
		require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  - name: cars\n    tests:\n      - name: all\n        endpoints: cars\n        entities: [Boat]\n"), 0o644))

		_, err := execute(t, "validate", path)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrNotFound)
		assert.Contains(t, err.Error(), "payload_suite(cars)")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := execute(t, "validate")
		assert.Error(t, err)
	})
}

func TestTargetsCmd(t *testing.T) {
	path := starterFile(t)

	out, err := execute(t, "targets", path)
	require.NoError(t, err)
	assert.Contains(t, out, "manager_providers")
	assert.Contains(t, out, "payload_suite(cars)")
	assert.Contains(t, out, "CarsEndpointPayloadTests.swift")
	assert.Contains(t, out, "SupportUtilities.swift")

	out, err = execute(t, "targets", path, "--lang", "go")
	require.NoError(t, err)
	assert.Contains(t, out, "cars_payload_test.go")

	_, err = execute(t, "targets", path, "--lang", "kotlin")
	assert.True(t, gen.IsConfigError(err))
}

func TestGenerateCmd(t *testing.T) {
	t.Run("requires a target", func(t *testing.T) {
		clearEnv(t)
		_, err := execute(t, "generate", starterFile(t))
		assert.ErrorIs(t, err, ErrNoTarget)
	})

	t.Run("writes files", func(t *testing.T) {
		clearEnv(t)
		target := filepath.Join(t.TempDir(), "Generated")

		out, err := execute(t, "generate", starterFile(t), "--target", target)
		require.NoError(t, err)
		assert.Equal(t, "✓ generated 4 files in "+target+"\n", out)
		for _, name := range []string{"ManagerProviders.swift", "CarsEndpointPayloadTests.swift", "Factories.swift", "SupportUtilities.swift"} {
			assert.FileExists(t, filepath.Join(target, name))
		}
	})

	t.Run("manifest skips unchanged files", func(t *testing.T) {
		clearEnv(t)
		path := starterFile(t)
		target := t.TempDir()

		_, err := execute(t, "generate", path, "-t", target, "--feature", "manifest")
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(target, gen.ManifestFile))

		out, err := execute(t, "generate", path, "-t", target, "--feature", "manifest")
		require.NoError(t, err)
		assert.Equal(t, "✓ generated 0 files in "+target+" (4 unchanged)\n", out)
	})

	t.Run("environment defaults", func(t *testing.T) {
		clearEnv(t)
		target := filepath.Join(t.TempDir(), "garage")
		t.Setenv("FORGE_TARGET", target)
		t.Setenv("FORGE_LANGUAGE", "go")

		_, err := execute(t, "generate", starterFile(t))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(target, "manager_providers.go"))
		require.NoError(t, err)
		assert.Contains(t, string(b), "package garage")
	})

	t.Run("flags override the environment", func(t *testing.T) {
		clearEnv(t)
		target := t.TempDir()
		t.Setenv("FORGE_LANGUAGE", "go")

		_, err := execute(t, "generate", starterFile(t), "-t", target, "--lang", "swift", "--module", "app=Garage")
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(target, "CarsEndpointPayloadTests.swift"))
		require.NoError(t, err)
		assert.Contains(t, string(b), "@testable import Garage")
	})

	t.Run("dry run", func(t *testing.T) {
		clearEnv(t)
		out, err := execute(t, "generate", starterFile(t), "--dry-run")
		require.NoError(t, err)
		assert.Equal(t, "  CarsEndpointPayloadTests.swift\n  Factories.swift\n  ManagerProviders.swift\n  SupportUtilities.swift\n✓ would generate 4 files\n", out)
	})

	t.Run("invalid language", func(t *testing.T) {
		clearEnv(t)
		_, err := execute(t, "generate", starterFile(t), "-t", t.TempDir(), "--lang", "kotlin")
		assert.True(t, gen.IsConfigError(err))
	})

	t.Run("failed generation", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "d.yaml")
		require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  - name: cars\n    tests:\n      - name: all\n        endpoints: cars\n        entities: [Boat]\n"), 0o644))

		out, err := execute(t, "generate", path, "-t", t.TempDir())
		require.Error(t, err)
		assert.Equal(t, "✗ generation failed with 1 error(s)\n", out)
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e, err := LoadEnv(map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, Env{Language: "swift", AppModule: "App", RuntimeModule: "ForgeRuntime"}, e)
	})

	t.Run("values", func(t *testing.T) {
		e, err := LoadEnv(map[string]string{
			"FORGE_TARGET":   "out",
			"FORGE_LANGUAGE": "go",
			"FORGE_FEATURES": "reactive,manifest",
			"FORGE_WORKERS":  "3",
			"FORGE_HEADER":   "custom",
		})
		require.NoError(t, err)

		cfg, err := gen.NewConfig(e.Options()...)
		require.NoError(t, err)
		assert.Equal(t, "out", cfg.Target)
		assert.Equal(t, gen.LangGo, cfg.Language)
		assert.True(t, cfg.HasFeature("reactive"))
		assert.True(t, cfg.HasFeature("manifest"))
		assert.Equal(t, 3, cfg.Workers)
		assert.Equal(t, "custom", cfg.Header)
	})

	t.Run("invalid workers", func(t *testing.T) {
		_, err := LoadEnv(map[string]string{"FORGE_WORKERS": "many"})
		assert.Error(t, err)
	})

	t.Run("unknown feature", func(t *testing.T) {
		e, err := LoadEnv(map[string]string{"FORGE_FEATURES": "sql"})
		require.NoError(t, err)
		_, err = gen.NewConfig(e.Options()...)
		assert.True(t, gen.IsConfigError(err))
	})
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities: []\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, newLogger(io.Discard, false), func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("entities: []\n"), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "none", "d.yaml"), newLogger(io.Discard, false), func(context.Context) error { return nil })
	assert.Error(t, err)
}

package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/forge/schema"
)

func TestLoad(t *testing.T) {
	d, err := Load("testdata/garage.yaml")
	require.NoError(t, err)

	expected := []schema.Entity{
		{
			Name:    "Car",
			Remote:  true,
			Persist: true,
			Attributes: []schema.Attribute{
				{Name: "id", Type: "String"},
				{Name: "plate", Type: "String", Optional: true},
			},
			Relationships: []schema.Relationship{{Name: "driver", Entity: "Driver"}},
		},
		{Name: "Truck", Remote: true, Persist: true, HasVoidIdentifier: true},
		{Name: "Driver", Relationships: []schema.Relationship{{Name: "cars", Entity: "Car", Many: true}}},
	}
	if diff := cmp.Diff(expected, d.Entities()); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}

	vehicles, err := d.Endpoint("vehicles")
	require.NoError(t, err)
	require.Len(t, vehicles.Tests, 2)

	all := vehicles.Tests[0]
	assert.Equal(t, "fetch_all", all.Name)
	assert.Equal(t, []string{"cars", "trucks"}, all.Endpoints)
	require.Len(t, all.Entities, 2)
	assert.Equal(t, 2, *all.Entities[0].Count)
	assert.Equal(t, "Truck", all.Entities[1].Entity)
	assert.False(t, all.Entities[1].HasCount())

	one := vehicles.Tests[1]
	assert.Equal(t, []string{"cars"}, one.Endpoints)
	require.True(t, one.Entities[0].HasCount())
	assert.Equal(t, 0, *one.Entities[0].Count)

	drivers, err := d.Endpoint("drivers")
	require.NoError(t, err)
	assert.Empty(t, drivers.Tests)
}

func TestLoadJSON(t *testing.T) {
	d, err := Load("testdata/garage.json")
	require.NoError(t, err)

	assert.Len(t, d.Entities(), 2)
	ep, err := d.Endpoint("vehicles")
	require.NoError(t, err)
	assert.Equal(t, 4, ep.Tests[0].Combinations())
	assert.Equal(t, "Truck", ep.Tests[0].Entities[1].Entity)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		check   func(*testing.T, error)
		message string
	}{
		{
			name:    "missing file",
			path:    "testdata/missing.yaml",
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, os.ErrNotExist) },
			message: "read descriptions",
		},
		{
			name:    "invalid descriptions",
			path:    "testdata/invalid.yaml",
			check:   func(t *testing.T, err error) { assert.True(t, schema.IsValidationError(err)) },
			message: "duplicate entity name",
		},
		{
			name:    "unknown key",
			path:    "testdata/unknown_key.yaml",
			check:   func(t *testing.T, err error) { assert.False(t, schema.IsValidationError(err)) },
			message: "colour",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			tt.check(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		d, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, d.Entities())
		assert.Empty(t, d.Endpoints())
	})

	t.Run("assertion of the wrong kind", func(t *testing.T) {
		_, err := Parse([]byte("endpoints:\n  - name: cars\n    tests:\n      - name: all\n        endpoints: cars\n        entities:\n          - [Car]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected entity name or mapping")
	})

	t.Run("aliases of the wrong kind", func(t *testing.T) {
		_, err := Parse([]byte("endpoints:\n  - name: cars\n    tests:\n      - name: all\n        endpoints: {a: b}\n        entities: [Car]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected string or list")
	})
}

func TestSave(t *testing.T) {
	d, err := Load("testdata/garage.yaml")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "descriptions.yaml")
	require.NoError(t, Save(path, d))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "endpoints: cars\n")
	assert.Contains(t, string(data), "- Truck\n")
	assert.Contains(t, string(data), "count: 0")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(d.Entities(), again.Entities()); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(d.Endpoints(), again.Endpoints()); diff != "" {
		t.Errorf("endpoints mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities: [stale]\n"), 0o600))

	d := schema.MustNew([]schema.Entity{{Name: "Car"}}, nil)
	require.NoError(t, Save(path, d))

	again, err := Load(path)
	require.NoError(t, err)
	require.Len(t, again.Entities(), 1)
	assert.Equal(t, "Car", again.Entities()[0].Name)
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

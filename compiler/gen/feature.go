package gen

import (
	"os"
	"path/filepath"
)

var (
	// FeatureReactive provides a feature-flag for the reactive manager types.
	FeatureReactive = Feature{
		Name:        "reactive",
		Stage:       Stable,
		Default:     false,
		Description: "Reactive references the reactive manager types instead of the Combine based ones",
	}

	// FeatureManifest keeps a manifest of the generated files and skips
	// rewriting files whose content did not change.
	FeatureManifest = Feature{
		Name:        "manifest",
		Stage:       Beta,
		Default:     false,
		Description: "Manifest records content hashes of generated files and skips rewriting unchanged files",
		cleanup: func(c *Config) error {
			return remove(c.Target, ManifestFile)
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureReactive,
		FeatureManifest,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development, and actively being tested.
	Experimental

	// Alpha features are features whose initial development was finished,
	// but we expect breaking-changes to their APIs.
	Alpha

	// Beta features are Alpha features for which no breaking-changes are
	// expected.
	Beta

	// Stable features are Beta features that were running for a while.
	Stable
)

// String returns the stage name.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	}
	return "unknown"
}

// A Feature of the forge codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup used to cleanup all changes when a feature-flag is removed.
	// e.g. delete files from previous codegen runs.
	cleanup func(*Config) error
}

// FeatureByName returns the feature registered as name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}

package gen

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/forge/compiler/syntax"
	"github.com/syssam/forge/schema"
)

func cars(t *testing.T) *schema.Descriptions {
	t.Helper()
	return schema.MustNew(
		[]schema.Entity{{Name: "Car", Remote: true, Persist: true}},
		[]schema.Endpoint{{
			Name: "cars",
			Tests: []schema.EndpointPayloadTest{{
				Name:      "fetch_all",
				Endpoints: []string{"cars"},
				Entities:  []schema.EntityAssertion{{Entity: "Car", Count: schema.Count(2)}},
			}},
		}},
	)
}

func generate(t *testing.T, d *schema.Descriptions, opts ...Option) *MemorySink {
	t.Helper()
	sink := NewMemorySink()
	g, err := NewGenerator(d, MustNewConfig(opts...), WithSink(sink))
	require.NoError(t, err)
	require.NoError(t, g.Generate(context.Background()))
	return sink
}

func file(t *testing.T, sink *MemorySink, name string) string {
	t.Helper()
	b, ok := sink.File(name)
	require.True(t, ok, "missing file %s in %v", name, sink.Files())
	return string(b)
}

func TestNewGenerator(t *testing.T) {
	t.Run("nil descriptions", func(t *testing.T) {
		_, err := NewGenerator(nil, nil)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		g, err := NewGenerator(cars(t), nil)
		require.NoError(t, err)
		assert.IsType(t, &MemorySink{}, g.Sink())
		assert.Equal(t, "CarsEndpointPayloadTests.swift", g.FileName(Target{Kind: PayloadSuiteTarget, Endpoint: "cars"}))
	})

	t.Run("target selects a directory sink", func(t *testing.T) {
		dir := t.TempDir()
		g, err := NewGenerator(cars(t), MustNewConfig(WithTarget(dir)))
		require.NoError(t, err)
		s, ok := g.Sink().(*DirSink)
		require.True(t, ok)
		assert.Equal(t, dir, s.Dir())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewGenerator(cars(t), &Config{Language: "kotlin"})
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestGenerateSwift(t *testing.T) {
	sink := generate(t, cars(t))

	assert.Equal(t, []string{
		"CarsEndpointPayloadTests.swift",
		"Factories.swift",
		"ManagerProviders.swift",
		"SupportUtilities.swift",
	}, sink.Files())

	t.Run("manager providers", func(t *testing.T) {
		out := file(t, sink, "ManagerProviders.swift")
		assert.True(t, strings.HasPrefix(out, "//\n//  ManagerProviders.swift\n//\n//  Code generated by forge. DO NOT EDIT.\n//\n\n"))
		assert.Contains(t, out, "import Combine\nimport ForgeRuntime\n")
		assert.Contains(t, out, "extension ManagerProvider where Entity == Car {")
		assert.Contains(t, out, "var carManager: CoreManaging<Car, AppAnyEntity> {")
		assert.Contains(t, out, "return self.managing(Car.self)")
	})

	t.Run("payload suite", func(t *testing.T) {
		out := file(t, sink, "CarsEndpointPayloadTests.swift")
		assert.Contains(t, out, "@testable import App\nimport Foundation\nimport XCTest\n")
		assert.Contains(t, out, "final class CarsEndpointPayloadTests: XCTestCase {")
		assert.Contains(t, out, "private lazy var carsFetchAllPayload: Data = {")
		assert.Contains(t, out, `guard let data = JSONFactory.loadJSON(named: "cars_fetch_all") else {`)
		assert.Contains(t, out, `XCTFail("Could not find resource cars_fetch_all.json")`)
		assert.Contains(t, out, "func test_fetch_all_cars_car() {")
		assert.Contains(t, out, "let result = try EndpointResultPayload(from: self.carsFetchAllPayload, endpoint: .cars)")
		assert.Contains(t, out, "XCTAssertEqual(result.cars.count, 2)")
		assert.Contains(t, out, `XCTFail("Unexpected error: \(error)")`)
		assert.Equal(t, 1, strings.Count(out, "func test_"))
	})

	t.Run("factories", func(t *testing.T) {
		out := file(t, sink, "Factories.swift")
		assert.Contains(t, out, "enum EntityFactory {")
		assert.Contains(t, out, "CarFactory.reset()")
		assert.Contains(t, out, "static func loadJSON(named name: String) -> Data? {")
		assert.Contains(t, out, "private final class BundleToken {}")
	})

	t.Run("support utilities", func(t *testing.T) {
		out := file(t, sink, "SupportUtilities.swift")
		assert.Contains(t, out, "enum LogType {\n    case debug\n    case info\n    case warning\n    case error\n}")
		assert.Contains(t, out, "protocol Logging {")
		assert.Contains(t, out, "static func log(_ level: LogType, _ message: String, file: String = #file, function: String = #function, line: Int = #line) {")
		assert.Contains(t, out, "Logger.shared?.log(level, message, file: file, function: function, line: line)")
		assert.Contains(t, out, "static let success: CleanupResult = CleanupResult(errors: [])")
		assert.Contains(t, out, "return CleanupResult(errors: self.errors + other.errors)")
		assert.Contains(t, out, "final class CoreManagerCleanup: LocalDataCleaning {")
		assert.Contains(t, out, "group.addTask { CleanupResult(errors: await self.managers.carManager.removeAllLocalData()) }")
		assert.Contains(t, out, "result = result.merged(with: outcome)")
	})
}

func TestGenerateReactive(t *testing.T) {
	sink := generate(t, cars(t), WithFeatures(FeatureReactive))

	out := file(t, sink, "ManagerProviders.swift")
	assert.Contains(t, out, "import ReactiveForgeRuntime\n")
	assert.NotContains(t, out, "import Combine")
	assert.Contains(t, out, "var carManager: ReactiveCoreManaging<Car, AppAnyEntity> {")
}

func TestGenerateGo(t *testing.T) {
	sink := generate(t, cars(t), WithLanguage(LangGo), WithPackage("garage"))

	assert.Equal(t, []string{
		"cars_payload_test.go",
		"factories.go",
		"manager_providers.go",
		"support_utilities.go",
	}, sink.Files())

	for _, name := range sink.Files() {
		out := file(t, sink, name)
		assert.True(t, strings.HasPrefix(out, "//\n// "+name+"\n"), name)
		assert.Contains(t, out, GeneratedMarker, name)
		assert.Contains(t, out, "package garage", name)
	}

	assert.Contains(t, file(t, sink, "manager_providers.go"), "func CarManager(mp ManagerProvider) CoreManaging[Car, AppAnyEntity] {")
	suite := file(t, sink, "cars_payload_test.go")
	assert.Contains(t, suite, "func TestCarsEndpointPayloadTests(t *testing.T) {")
	assert.Contains(t, suite, "assert.Equal(t, 2, len(result.Cars))")
	factories := file(t, sink, "factories.go")
	assert.Contains(t, factories, "func EntityFactoryReset() {")
	assert.Contains(t, factories, "CarFactoryReset()")
	assert.Contains(t, factories, "//go:embed testdata")
	support := file(t, sink, "support_utilities.go")
	assert.Contains(t, support, "var wg sync.WaitGroup")
	assert.Contains(t, support, "func NewCoreManagerCleanup(managers CoreManagerContainer) *CoreManagerCleanup {")
}

func TestGenerateIsIdempotent(t *testing.T) {
	for _, lang := range []string{LangSwift, LangGo} {
		t.Run(lang, func(t *testing.T) {
			first := generate(t, cars(t), WithLanguage(lang))
			second := generate(t, cars(t), WithLanguage(lang), WithWorkers(1))

			require.Equal(t, first.Files(), second.Files())
			for _, name := range first.Files() {
				a, _ := first.File(name)
				b, _ := second.File(name)
				assert.True(t, bytes.Equal(a, b), name)
			}
		})
	}
}

func TestGenerateHeader(t *testing.T) {
	sink := generate(t, cars(t), WithHeader("Generated for the garage app."))

	out := file(t, sink, "Factories.swift")
	assert.Contains(t, out, "//  Generated for the garage app.\n")
	assert.NotContains(t, out, GeneratedMarker)
}

func TestGenerateFailures(t *testing.T) {
	broken := schema.MustNew(
		[]schema.Entity{{Name: "Car", Remote: true, Persist: true}},
		[]schema.Endpoint{
			{
				Name: "boats",
				Tests: []schema.EndpointPayloadTest{{
					Name:      "fetch_all",
					Endpoints: []string{"boats"},
					Entities:  []schema.EntityAssertion{{Entity: "Boat"}},
				}},
			},
			{
				Name: "cars",
				Tests: []schema.EndpointPayloadTest{{
					Name:      "fetch_all",
					Endpoints: []string{"cars"},
					Entities:  []schema.EntityAssertion{{Entity: "Car"}},
				}},
			},
		},
	)

	t.Run("failing target does not stop the others", func(t *testing.T) {
		sink := NewMemorySink()
		g, err := NewGenerator(broken, nil, WithSink(sink))
		require.NoError(t, err)

		err = g.Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrNotFound))
		assert.True(t, errors.Is(err, ErrGenerationFailed))

		var genErr *GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, "payload_suite(boats)", genErr.Target)
		assert.Equal(t, PhaseBuild, genErr.Phase)

		assert.Equal(t, []string{
			"CarsEndpointPayloadTests.swift",
			"Factories.swift",
			"ManagerProviders.swift",
			"SupportUtilities.swift",
		}, sink.Files())
	})

	t.Run("render returns no output for a failing target", func(t *testing.T) {
		g, err := NewGenerator(broken, nil)
		require.NoError(t, err)

		out, err := g.Render(Target{Kind: PayloadSuiteTarget, Endpoint: "boats"})
		require.Error(t, err)
		assert.Nil(t, out)
	})

	t.Run("write failures", func(t *testing.T) {
		sink := &failingSink{MemorySink: NewMemorySink(), fail: "Factories.swift"}
		g, err := NewGenerator(cars(t), nil, WithSink(sink))
		require.NoError(t, err)

		err = g.Generate(context.Background())
		require.Error(t, err)
		var genErr *GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, PhaseWrite, genErr.Phase)
		assert.Equal(t, "Factories.swift", genErr.File)
		assert.Len(t, sink.Files(), 3)
	})

	t.Run("render failures", func(t *testing.T) {
		g, err := NewGenerator(cars(t), nil, WithBackend(rejectingBackend{}))
		require.NoError(t, err)

		err = g.Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, syntax.ErrRender))
		var genErr *GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, PhaseRender, genErr.Phase)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sink := NewMemorySink()
		g, err := NewGenerator(cars(t), nil, WithSink(sink))
		require.NoError(t, err)

		err = g.Generate(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, sink.Files())
	})
}

func TestGenerateLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&syncWriter{w: &buf}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g, err := NewGenerator(cars(t), nil, WithSink(NewMemorySink()), WithLogger(log))
	require.NoError(t, err)
	require.NoError(t, g.Generate(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "generation finished")
	assert.Contains(t, out, "targets=4")
	assert.Contains(t, out, "failed=0")
	assert.Contains(t, out, "language=swift")
	assert.Equal(t, 4, strings.Count(out, "target generated"))
}

func TestGenerateToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Generated")

	t.Run("writes every file", func(t *testing.T) {
		g, err := NewGenerator(cars(t), MustNewConfig(WithTarget(dir)))
		require.NoError(t, err)
		require.NoError(t, g.Generate(context.Background()))

		for _, name := range []string{"ManagerProviders.swift", "CarsEndpointPayloadTests.swift", "Factories.swift", "SupportUtilities.swift"} {
			assert.FileExists(t, filepath.Join(dir, name))
		}
		assert.NoFileExists(t, filepath.Join(dir, ManifestFile))
		assert.Equal(t, 4, g.Sink().(*DirSink).Metrics().FilesWritten)
	})

	t.Run("manifest skips unchanged files", func(t *testing.T) {
		cfg := MustNewConfig(WithTarget(dir), WithFeatures(FeatureManifest))
		first, err := NewGenerator(cars(t), cfg)
		require.NoError(t, err)
		require.NoError(t, first.Generate(context.Background()))
		assert.FileExists(t, filepath.Join(dir, ManifestFile))

		second, err := NewGenerator(cars(t), cfg)
		require.NoError(t, err)
		require.NoError(t, second.Generate(context.Background()))
		m := second.Sink().(*DirSink).Metrics()
		assert.Equal(t, 0, m.FilesWritten)
		assert.Equal(t, 4, m.FilesSkipped)
	})

	t.Run("disabling the manifest removes it", func(t *testing.T) {
		g, err := NewGenerator(cars(t), MustNewConfig(WithTarget(dir)))
		require.NoError(t, err)
		require.NoError(t, g.Generate(context.Background()))

		_, err = os.Stat(filepath.Join(dir, ManifestFile))
		assert.True(t, os.IsNotExist(err))
		assert.FileExists(t, filepath.Join(dir, "Factories.swift"))
	})
}

func TestGenerateCleanupFailures(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory in place of the manifest cannot be removed.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ManifestFile, "stale"), 0o755))

	g, err := NewGenerator(cars(t), MustNewConfig(WithTarget(dir)))
	require.NoError(t, err)
	err = g.Generate(context.Background())
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 1)
	assert.Contains(t, merr.Errors[0].Error(), "cleanup feature manifest")
	assert.FileExists(t, filepath.Join(dir, "Factories.swift"))
}

type failingSink struct {
	*MemorySink
	fail string
}

func (s *failingSink) Write(ctx context.Context, name string, content []byte) error {
	if name == s.fail {
		return errors.New("disk full")
	}
	return s.MemorySink.Write(ctx, name, content)
}

type rejectingBackend struct{}

func (rejectingBackend) Name() string { return LangSwift }
func (rejectingBackend) Ext() string  { return ".swift" }
func (rejectingBackend) Render(f *syntax.File) ([]byte, error) {
	return nil, syntax.Errorf("file "+f.Name, "rejected")
}

// syncWriter serializes writes of concurrent log calls.
type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

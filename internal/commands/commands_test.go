package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/roost/internal/config"
	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
)

const projectA = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <Nullable>enable</Nullable>
    <LangVersion>latest</LangVersion>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Serilog" Version="3.0.0" />
    <PackageReference Include="Polly" Version="8.2.0" />
  </ItemGroup>
</Project>
`

const projectB = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <Nullable>enable</Nullable>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Serilog" Version="3.1.1" />
  </ItemGroup>
</Project>
`

const projectC = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net6.0</TargetFramework>
  </PropertyGroup>
</Project>
`

// solution lays out three projects and returns the root directory
func solution(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{
		"src/A/A.csproj":               projectA,
		"src/B/B.csproj":               projectB,
		"tests/C/C.Tests.csproj":       projectC,
		"src/A/bin/Debug/Stale.csproj": projectA,
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// run executes roost against dir with stdin set to in
func run(t *testing.T, dir, in string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(output.SetWriter(output.Writer()))

	var buf bytes.Buffer
	cmd := RootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(in))
	cmd.SetArgs(append(args, "--directory", dir))

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func interactive(t *testing.T, v bool) {
	t.Helper()
	prev := isInteractive
	isInteractive = func() bool { return v }
	t.Cleanup(func() { isInteractive = prev })
}

func TestBuild(t *testing.T) {
	root := solution(t)

	out, err := run(t, root, "", "build", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 project file(s)")

	buildProps := read(t, root, "Directory.Build.props")
	assert.Contains(t, buildProps, "<TargetFramework>net8.0</TargetFramework>")
	assert.Contains(t, buildProps, "<Nullable>enable</Nullable>")
	assert.Contains(t, buildProps, "<ImplicitUsings>enable</ImplicitUsings>")
	assert.NotContains(t, buildProps, "LangVersion")

	a := read(t, root, "src/A/A.csproj")
	assert.NotContains(t, a, "TargetFramework")
	assert.NotContains(t, a, "<Nullable>")
	assert.Contains(t, a, "<LangVersion>latest</LangVersion>")
	assert.Contains(t, a, `Version="3.0.0"`, "build leaves package versions alone")

	b := read(t, root, "src/B/B.csproj")
	assert.NotContains(t, b, "<PropertyGroup>", "emptied groups are removed")

	assert.Equal(t, projectC, read(t, root, "tests/C/C.Tests.csproj"))
	assert.Equal(t, projectA, read(t, root, "src/A/bin/Debug/Stale.csproj"))
}

func TestBuild_NoStrip(t *testing.T) {
	root := solution(t)

	_, err := run(t, root, "", "build", "--no-strip")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "Directory.Build.props"))
	assert.Equal(t, projectA, read(t, root, "src/A/A.csproj"))
}

func TestBuild_DryRun(t *testing.T) {
	root := solution(t)

	out, err := run(t, root, "", "build", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "[DRY RUN] Create")
	assert.NoFileExists(t, filepath.Join(root, "Directory.Build.props"))
	assert.Equal(t, projectA, read(t, root, "src/A/A.csproj"))
}

func TestBuild_ExistingTarget(t *testing.T) {
	root := solution(t)
	existing := filepath.Join(root, "Directory.Build.props")
	require.NoError(t, os.WriteFile(existing, []byte("<Project />\n"), 0644))

	t.Run("kept without a terminal", func(t *testing.T) {
		interactive(t, false)
		out, err := run(t, root, "", "build")
		require.NoError(t, err)
		assert.Contains(t, out, "Keeping existing Directory.Build.props")
		assert.Equal(t, "<Project />\n", read(t, root, "Directory.Build.props"))
	})

	t.Run("kept with --skip", func(t *testing.T) {
		out, err := run(t, root, "", "build", "--skip")
		require.NoError(t, err)
		assert.Contains(t, out, "Keeping existing Directory.Build.props")
		assert.Equal(t, "<Project />\n", read(t, root, "Directory.Build.props"))
		assert.Equal(t, projectA, read(t, root, "src/A/A.csproj"), "projects are not stripped when the target is kept")
	})

	t.Run("overwrite with backup", func(t *testing.T) {
		_, err := run(t, root, "", "build", "--overwrite", "--backup")
		require.NoError(t, err)
		assert.Contains(t, read(t, root, "Directory.Build.props"), "<Nullable>enable</Nullable>")

		backups, err := filepath.Glob(filepath.Join(root, ".roost", "backup", "*", "Directory.Build.props"))
		require.NoError(t, err)
		require.Len(t, backups, 1)
		data, err := os.ReadFile(backups[0])
		require.NoError(t, err)
		assert.Equal(t, "<Project />\n", string(data))
	})
}

func TestBuild_ConflictingFlags(t *testing.T) {
	_, err := run(t, solution(t), "", "build", "--overwrite", "--skip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestBuild_EmptyDirectory(t *testing.T) {
	root := t.TempDir()

	out, err := run(t, root, "", "build")
	require.NoError(t, err)
	assert.Contains(t, out, "No project files found")
	assert.NoFileExists(t, filepath.Join(root, "Directory.Build.props"))
}

func TestPackages(t *testing.T) {
	root := solution(t)

	out, err := run(t, root, "", "packages", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Multiple versions found. Resolved to: 3.1.1")

	packagesProps := read(t, root, "Directory.Packages.props")
	assert.Contains(t, packagesProps, "<ManagePackageVersionsCentrally>true</ManagePackageVersionsCentrally>")
	assert.Contains(t, packagesProps, `Include="Serilog" Version="3.1.1"`)
	assert.Contains(t, packagesProps, `Include="Polly" Version="8.2.0"`)
	assert.Less(t, strings.Index(packagesProps, "Polly"), strings.Index(packagesProps, "Serilog"))

	a := read(t, root, "src/A/A.csproj")
	assert.NotContains(t, a, `Version="`)
	assert.Contains(t, a, `<PackageReference Include="Serilog"`)
	assert.Contains(t, a, "<TargetFramework>net8.0</TargetFramework>")
}

func TestPackages_KeepsUnmanagedVersions(t *testing.T) {
	root := solution(t)
	d := filepath.Join(root, "src", "D", "D.csproj")
	require.NoError(t, os.MkdirAll(filepath.Dir(d), 0755))
	require.NoError(t, os.WriteFile(d, []byte(`<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="Polly" Version="8.2.0" />
    <PackageReference Update="Serilog" Version="4.0.0" />
  </ItemGroup>
</Project>
`), 0644))

	_, err := run(t, root, "", "packages", "--yes")
	require.NoError(t, err)

	updated := read(t, root, "src/D/D.csproj")
	assert.Contains(t, updated, `<PackageReference Include="Polly"/>`)
	assert.Contains(t, updated, `<PackageReference Update="Serilog" Version="4.0.0"/>`)
	assert.Contains(t, read(t, root, "Directory.Packages.props"), `Include="Serilog" Version="3.1.1"`)
}

func TestPackages_Strategy(t *testing.T) {
	root := solution(t)

	_, err := run(t, root, "", "packages", "--yes", "--strategy", "lowest")
	require.NoError(t, err)
	assert.Contains(t, read(t, root, "Directory.Packages.props"), `Include="Serilog" Version="3.0.0"`)
}

func TestPackages_StrategyFromConfig(t *testing.T) {
	root := solution(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("strategy: lowest\nassume_yes: true\n"), 0644))

	_, err := run(t, root, "", "packages")
	require.NoError(t, err)
	assert.Contains(t, read(t, root, "Directory.Packages.props"), `Include="Serilog" Version="3.0.0"`)
}

func TestPackages_DeclineConflicts(t *testing.T) {
	root := solution(t)

	out, err := run(t, root, "n\n", "packages")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.NoFileExists(t, filepath.Join(root, "Directory.Packages.props"))
	assert.Equal(t, projectA, read(t, root, "src/A/A.csproj"))
}

func TestPackages_DeclineStrip(t *testing.T) {
	root := solution(t)

	_, err := run(t, root, "y\nn\n", "packages")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "Directory.Packages.props"))
	assert.Equal(t, projectA, read(t, root, "src/A/A.csproj"))
}

func TestPackages_Manual(t *testing.T) {
	t.Run("without a terminal", func(t *testing.T) {
		interactive(t, false)
		root := solution(t)

		_, err := run(t, root, "", "packages", "--yes", "--strategy", "manual")
		var manual *analyzer.ManualResolutionError
		require.ErrorAs(t, err, &manual)
		assert.Equal(t, "Serilog", manual.Package)
		assert.Equal(t, []string{"3.0.0", "3.1.1"}, manual.Versions)
		assert.NoFileExists(t, filepath.Join(root, "Directory.Packages.props"))
	})

	t.Run("chosen at the prompt", func(t *testing.T) {
		interactive(t, true)
		root := solution(t)

		_, err := run(t, root, "3.0.0\n", "packages", "--yes", "--strategy", "manual")
		require.NoError(t, err)
		assert.Contains(t, read(t, root, "Directory.Packages.props"), `Include="Serilog" Version="3.0.0"`)
	})
}

func TestAll(t *testing.T) {
	root := solution(t)

	_, err := run(t, root, "", "all", "--yes")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "Directory.Build.props"))
	assert.FileExists(t, filepath.Join(root, "Directory.Packages.props"))

	a := read(t, root, "src/A/A.csproj")
	assert.NotContains(t, a, "TargetFramework")
	assert.NotContains(t, a, `Version="`)
	assert.Contains(t, a, "<LangVersion>latest</LangVersion>")
}

func TestAll_VerifyFailureRollsBack(t *testing.T) {
	root := solution(t)
	prev := restore
	restore = func(context.Context, string) error { return errors.New("restore failed") }
	t.Cleanup(func() { restore = prev })

	out, err := run(t, root, "", "all", "--yes", "--verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore failed")
	assert.Contains(t, out, "rolled back")

	assert.NoFileExists(t, filepath.Join(root, "Directory.Build.props"))
	assert.NoFileExists(t, filepath.Join(root, "Directory.Packages.props"))
	assert.Equal(t, projectA, read(t, root, "src/A/A.csproj"))
	assert.Equal(t, projectB, read(t, root, "src/B/B.csproj"))
}

func TestAll_MetricsFile(t *testing.T) {
	root := solution(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("metrics_file: out/roost.prom\n"), 0644))

	_, err := run(t, root, "", "all", "--yes")
	require.NoError(t, err)

	metrics := read(t, root, "out/roost.prom")
	assert.Contains(t, metrics, "roost_projects_scanned 3")
	assert.Contains(t, metrics, "roost_package_conflicts 1")
	assert.Contains(t, metrics, `roost_files_written_total{kind="create"} 2`)
}

func TestAnalyze(t *testing.T) {
	root := solution(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "Directory.Packages.props"),
		[]byte("<Project><PropertyGroup><ManagePackageVersionsCentrally>true</ManagePackageVersionsCentrally></PropertyGroup></Project>"), 0644))

	out, err := run(t, root, "", "analyze", "--strategy", "manual")
	require.NoError(t, err)

	assert.Contains(t, out, "central package management enabled")
	assert.Contains(t, out, "Common properties")
	assert.Contains(t, out, "Version conflicts")
	assert.Contains(t, out, "1 package(s) need a manual choice: Serilog")
	assert.Equal(t, projectA, read(t, root, "src/A/A.csproj"))
}

func TestInit(t *testing.T) {
	interactive(t, false)
	root := t.TempDir()

	_, err := run(t, root, "", "init")
	require.NoError(t, err)

	cfg, err := config.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Strategy, cfg.Strategy)

	_, err = run(t, root, "", "init")
	assert.Error(t, err)

	_, err = run(t, root, "", "init", "--overwrite")
	assert.NoError(t, err)
}

func TestInit_AsksForStrategy(t *testing.T) {
	interactive(t, true)
	root := t.TempDir()

	out, err := run(t, root, "most_common\n", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Conflict strategy")

	cfg, err := config.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, analyzer.MostCommon, cfg.StrategyValue())
	assert.Equal(t, "most-common", cfg.Strategy)

	_, err = run(t, t.TempDir(), "newest\n", "init")
	assert.ErrorContains(t, err, "unknown strategy")
}

func TestInvalidConfig(t *testing.T) {
	root := solution(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("strategy: newest\n"), 0644))

	_, err := run(t, root, "", "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "roost ")
}

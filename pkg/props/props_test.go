package props

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/roost/pkg/msbuild"
)

// propertyValues returns every property name and value in content.
func propertyValues(t *testing.T, content []byte) map[string]string {
	t.Helper()
	doc, err := msbuild.Parse(string(content))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, group := range msbuild.PropertyGroups(doc.Root()) {
		for _, el := range group.ChildElements() {
			out[el.Tag] = msbuild.Value(el)
		}
	}
	return out
}

func TestBuildProps(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]string
		opts  BuildOptions
		want  map[string]string
	}{
		{
			name:  "adds defaults",
			input: map[string]string{"LangVersion": "latest"},
			want:  map[string]string{"LangVersion": "latest", "ImplicitUsings": "enable", "Nullable": "enable"},
		},
		{
			name:  "keeps explicit values",
			input: map[string]string{"TargetFramework": "net8.0", "Nullable": "disable"},
			want:  map[string]string{"TargetFramework": "net8.0", "Nullable": "disable", "ImplicitUsings": "enable"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  map[string]string{"ImplicitUsings": "enable", "Nullable": "enable"},
		},
		{
			name:  "required only",
			input: map[string]string{"TargetFramework": "net9.0", "Authors": "Acme", "Nullable": "enable"},
			opts:  BuildOptions{RequiredOnly: true},
			want:  map[string]string{"TargetFramework": "net9.0", "ImplicitUsings": "enable", "Nullable": "enable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := BuildProps(tt.input, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, propertyValues(t, out))
		})
	}
}

func TestBuildProps_NeverDefaultsTargetFramework(t *testing.T) {
	out, err := BuildProps(map[string]string{"Authors": "Acme"}, BuildOptions{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), PropTargetFramework)
}

func TestBuildProps_SortedByName(t *testing.T) {
	out, err := BuildProps(map[string]string{"Zeta": "1", "Alpha": "2", "Mid": "3"}, BuildOptions{})
	require.NoError(t, err)

	s := string(out)
	assert.Less(t, strings.Index(s, "<Alpha>"), strings.Index(s, "<ImplicitUsings>"))
	assert.Less(t, strings.Index(s, "<ImplicitUsings>"), strings.Index(s, "<Mid>"))
	assert.Less(t, strings.Index(s, "<Nullable>"), strings.Index(s, "<Zeta>"))
}

func TestHoisted(t *testing.T) {
	in := map[string]string{"TargetFramework": "net8.0", "Authors": "Acme"}

	assert.Equal(t, in, Hoisted(in, BuildOptions{}))
	assert.Equal(t, map[string]string{"TargetFramework": "net8.0"}, Hoisted(in, BuildOptions{RequiredOnly: true}))
}

func TestPackagesProps(t *testing.T) {
	out, err := PackagesProps(map[string]string{
		"Serilog":         "3.1.1",
		"Newtonsoft.Json": "13.0.3",
		"Polly":           "[8.0.0,9.0.0)",
	})
	require.NoError(t, err)

	doc, err := msbuild.Parse(string(out))
	require.NoError(t, err)

	flag := msbuild.Descendants(doc.Root(), "ManagePackageVersionsCentrally")
	require.Len(t, flag, 1)
	assert.Equal(t, "true", msbuild.Value(flag[0]))

	var got [][2]string
	for _, pv := range msbuild.Descendants(doc.Root(), msbuild.TagPackageVersion) {
		got = append(got, [2]string{pv.SelectAttrValue("Include", ""), pv.SelectAttrValue("Version", "")})
	}
	assert.Equal(t, [][2]string{
		{"Newtonsoft.Json", "13.0.3"},
		{"Polly", "[8.0.0,9.0.0)"},
		{"Serilog", "3.1.1"},
	}, got)
}

func TestPackagesProps_Empty(t *testing.T) {
	out, err := PackagesProps(nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<ManagePackageVersionsCentrally>true</ManagePackageVersionsCentrally>")
	assert.NotContains(t, string(out), "<PackageVersion ")
}

const project = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <Nullable>enable</Nullable>
  </PropertyGroup>
  <PropertyGroup>
    <OutputType>Exe</OutputType>
    <LangVersion>11</LangVersion>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Serilog" Version="3.1.1" />
    <PackageReference Include="Polly">
      <Version>8.2.0</Version>
      <PrivateAssets>all</PrivateAssets>
    </PackageReference>
  </ItemGroup>
</Project>`

func TestStripProperties(t *testing.T) {
	out, changed, err := StripProperties(project, map[string]string{
		"TargetFramework": "net8.0",
		"Nullable":        "enable",
		"LangVersion":     "latest",
	})
	require.NoError(t, err)
	assert.True(t, changed)

	assert.NotContains(t, out, "<TargetFramework>")
	assert.NotContains(t, out, "<Nullable>")
	assert.Contains(t, out, "<LangVersion>11</LangVersion>", "value mismatch is kept")
	assert.Contains(t, out, "<OutputType>Exe</OutputType>")
	assert.Equal(t, 1, strings.Count(out, "<PropertyGroup>"), "emptied group removed")
	assert.Contains(t, out, `<PackageReference Include="Serilog" Version="3.1.1"/>`)
}

func TestStripProperties_NoMatch(t *testing.T) {
	out, changed, err := StripProperties(project, map[string]string{"Authors": "Acme"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, project, out)
}

var projectVersions = map[string]string{"Serilog": "3.1.1", "Polly": "8.2.0"}

func TestStripPackageVersions(t *testing.T) {
	out, changed, err := StripPackageVersions(project, projectVersions)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Contains(t, out, `<PackageReference Include="Serilog"/>`)
	assert.NotContains(t, out, "8.2.0")
	assert.Contains(t, out, "<PrivateAssets>all</PrivateAssets>")
	assert.Contains(t, out, "<TargetFramework>net8.0</TargetFramework>")

	again, changed, err := StripPackageVersions(out, projectVersions)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, out, again)
}

func TestStripPackageVersions_OnlyCentralPackages(t *testing.T) {
	content := `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="Polly" Version="8.2.0" />
    <PackageReference Update="Serilog" Version="4.0.0" />
    <PackageReference Include=" " Version="1.0.0" />
    <PackageReference Include="Dapper" Version="2.1.0" />
  </ItemGroup>
</Project>`

	out, changed, err := StripPackageVersions(content, map[string]string{"Polly": "8.2.0"})
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Contains(t, out, `<PackageReference Include="Polly"/>`)
	assert.Contains(t, out, `<PackageReference Update="Serilog" Version="4.0.0"/>`)
	assert.Contains(t, out, `<PackageReference Include=" " Version="1.0.0"/>`)
	assert.Contains(t, out, `<PackageReference Include="Dapper" Version="2.1.0"/>`, "packages without a central version keep theirs")

	same, changed, err := StripPackageVersions(content, map[string]string{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, content, same)
}

func TestStrip_Malformed(t *testing.T) {
	_, changed, err := StripProperties("not xml", map[string]string{"A": "1"})
	assert.Error(t, err)
	assert.False(t, changed)

	out, changed, err := StripPackageVersions("<Project>", projectVersions)
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, "<Project>", out)
}

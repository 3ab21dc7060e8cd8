package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", Highest, false},
		{"Highest", Highest, false},
		{"lowest", Lowest, false},
		{"most-common", MostCommon, false},
		{"MostCommon", MostCommon, false},
		{"most_common", MostCommon, false},
		{"manual", Manual, false},
		{"newest", Highest, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategy_FlagValue(t *testing.T) {
	var s Strategy
	require.NoError(t, s.Set("lowest"))
	assert.Equal(t, Lowest, s)
	assert.Equal(t, "lowest", s.String())
	assert.Equal(t, "strategy", s.Type())
	assert.Error(t, s.Set("bogus"))
	assert.Equal(t, Lowest, s)
}

func TestResolveVersions(t *testing.T) {
	tests := []struct {
		name     string
		observed []string
		strategy Strategy
		want     string
	}{
		{"highest stable", []string{"1.0.0", "2.0.0"}, Highest, "2.0.0"},
		{"highest beta over alpha", []string{"1.0.0-alpha.1", "1.0.0-beta.1"}, Highest, "1.0.0-beta.1"},
		{"highest stable over preview", []string{"1.0.0-preview", "1.0.0"}, Highest, "1.0.0"},
		{"highest range by lower bound", []string{"[2.0.0,3.0.0)", "1.5.0"}, Highest, "[2.0.0,3.0.0)"},
		{"highest ranked over opaque", []string{"$(SerilogVersion)", "0.1.0"}, Highest, "0.1.0"},
		{"highest equal precedence keeps first", []string{"1.0.0+a", "1.0.0+b"}, Highest, "1.0.0+a"},
		{"highest opaque only", []string{"1.0.*", "2.0.*"}, Highest, "2.0.*"},
		{"lowest", []string{"3.0.0", "1.2.0", "2.0.0"}, Lowest, "1.2.0"},
		{"lowest ignores unranked", []string{"$(V)", "2.0.0", "3.0.0"}, Lowest, "2.0.0"},
		{"lowest unranked only", []string{"b-ver", "a-ver"}, Lowest, "a-ver"},
		{"lowest prerelease below release", []string{"1.0.0", "1.0.0-rc.1"}, Lowest, "1.0.0-rc.1"},
		{"most common", []string{"1.0.0", "2.0.0", "1.0.0"}, MostCommon, "1.0.0"},
		{"most common tie ordinal", []string{"2.0.0", "1.0.0"}, MostCommon, "1.0.0"},
		{"most common ordinal not semantic", []string{"10.0.0", "9.0.0"}, MostCommon, "10.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveVersions("Pkg", tt.observed, tt.strategy)
			require.Equal(t, Resolved, res.Kind, res.Reason)
			assert.Equal(t, tt.want, res.Version)
			assert.NoError(t, res.Err())
		})
	}
}

func TestResolveVersions_Manual(t *testing.T) {
	res := ResolveVersions("Newtonsoft.Json", []string{"12.0.1", "13.0.3", "12.0.1"}, Manual)

	assert.Equal(t, NeedsManualResolution, res.Kind)
	assert.Equal(t, []string{"12.0.1", "13.0.3"}, res.Candidates)

	var manual *ManualResolutionError
	require.True(t, errors.As(res.Err(), &manual))
	assert.Equal(t, "Newtonsoft.Json", manual.Package)
	assert.Equal(t, []string{"12.0.1", "13.0.3"}, manual.Versions)

	var failed *ResolutionError
	assert.False(t, errors.As(res.Err(), &failed))
}

func TestResolveVersions_Failures(t *testing.T) {
	res := ResolveVersions("Pkg", nil, Highest)
	assert.Equal(t, Failed, res.Kind)

	res = ResolveVersions("Pkg", []string{"1.0.0"}, Strategy(99))
	assert.Equal(t, Failed, res.Kind)

	var failed *ResolutionError
	require.True(t, errors.As(res.Err(), &failed))
	assert.Equal(t, "Pkg", failed.Package)
}

func TestFallbackVersion(t *testing.T) {
	assert.Equal(t, "9.0.0", FallbackVersion([]string{"10.0.0", "9.0.0"}))
	assert.Equal(t, "", FallbackVersion(nil))
}

// Package compat gives advisory registry feedback on resolved package
// versions using the NuGet v3 flat container API.
//
// Results are advice only. Network or registry failures are reported as
// issues on the result, never as a reason to stop.
package compat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simonhull/firebird-suite/roost/pkg/versions"
)

// DefaultBaseURL is nuget.org's flat container endpoint.
const DefaultBaseURL = "https://api.nuget.org/v3-flatcontainer"

// DefaultTimeout bounds each registry request.
const DefaultTimeout = 10 * time.Second

// ErrPackageNotFound is returned when the registry does not know a package.
var ErrPackageNotFound = errors.New("package not found")

// Result is the advice for one package.
type Result struct {
	Package          string
	Version          string
	Compatible       bool
	Issues           []string
	SuggestedVersion string
}

// Checker queries a NuGet registry
type Checker struct {
	baseURL string
	client  *http.Client
}

// NewChecker creates a Checker. An empty baseURL uses DefaultBaseURL.
func NewChecker(baseURL string, timeout time.Duration) *Checker {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Check compares version against what the registry publishes for pkg.
func (c *Checker) Check(ctx context.Context, pkg, version string) Result {
	res := Result{Package: pkg, Version: version, Compatible: true}

	parsed := versions.Parse(version)
	if !parsed.HasRank() {
		res.Compatible = false
		res.Issues = append(res.Issues, "Invalid version format")
		return res
	}

	published, err := c.Versions(ctx, pkg)
	if err != nil {
		res.Compatible = false
		if errors.Is(err, ErrPackageNotFound) {
			res.Issues = append(res.Issues, "Package not found in registry")
		} else {
			res.Issues = append(res.Issues, "Registry check failed: "+err.Error())
		}
		return res
	}

	latest, ok := latestStable(published)
	if !ok {
		return res
	}
	res.SuggestedVersion = latest.Original

	if parsed.IsPrerelease() {
		res.Issues = append(res.Issues, "Using pre-release version")
	}

	current, _ := parsed.Major()
	newest, _ := latest.Major()
	if current+1 < newest {
		res.Issues = append(res.Issues, fmt.Sprintf("Version is significantly outdated (latest: %s)", latest.Original))
	}
	return res
}

// CheckAll checks every package in resolved. It stops early only when ctx is
// done.
func (c *Checker) CheckAll(ctx context.Context, resolved map[string]string) []Result {
	results := make([]Result, 0, len(resolved))
	for pkg, version := range resolved {
		if ctx.Err() != nil {
			break
		}
		results = append(results, c.Check(ctx, pkg, version))
	}
	return results
}

// Versions lists every version the registry publishes for pkg.
func (c *Checker) Versions(ctx context.Context, pkg string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/%s/index.json", c.baseURL, url.PathEscape(strings.ToLower(pkg)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPackageNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("registry returned %s", resp.Status)
	}

	var index struct {
		Versions []string `json:"versions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("decode version index: %w", err)
	}
	return index.Versions, nil
}

func latestStable(published []string) (versions.Parsed, bool) {
	var best versions.Parsed
	found := false
	for _, v := range published {
		p := versions.Parse(v)
		if p.Kind != versions.Stable {
			continue
		}
		if !found || versions.Compare(p, best) > 0 {
			best, found = p, true
		}
	}
	return best, found
}

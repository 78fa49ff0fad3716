// Package update checks GitHub for a newer nanogen release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Result holds the outcome of an update check.
type Result struct {
	Latest    string // latest version tag without the "v" prefix
	Current   string
	UpdateURL string
}

// NeedsUpdate returns true if the latest version is newer than current.
func (r *Result) NeedsUpdate() bool {
	return r != nil && compareVersions(r.Latest, r.Current) > 0
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker queries the releases API.
type Checker struct {
	BaseURL string
	Client  *http.Client
}

// NewChecker returns a checker for api.github.com with a short timeout.
func NewChecker() *Checker {
	return &Checker{
		BaseURL: "https://api.github.com",
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

// Latest fetches the latest release of owner/repo and compares it with
// currentVersion.
func (c *Checker) Latest(ctx context.Context, owner, repo, currentVersion string) (*Result, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(c.BaseURL, "/"), owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release lookup returned %s", resp.Status)
	}

	var rel ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}
	return &Result{
		Latest:    strings.TrimPrefix(rel.TagName, "v"),
		Current:   strings.TrimPrefix(currentVersion, "v"),
		UpdateURL: rel.HTMLURL,
	}, nil
}

// Check is Latest against api.github.com that returns nil on any error, so
// callers can ignore failed checks.
func Check(ctx context.Context, owner, repo, currentVersion string) *Result {
	res, err := NewChecker().Latest(ctx, owner, repo, currentVersion)
	if err != nil {
		return nil
	}
	return res
}

// compareVersions compares two major.minor.patch strings.
// Returns >0 if a > b, <0 if a < b, 0 if equal.
func compareVersions(a, b string) int {
	ap := parseVersion(a)
	bp := parseVersion(b)
	for i := range ap {
		if ap[i] != bp[i] {
			return ap[i] - bp[i]
		}
	}
	return 0
}

// parseVersion splits "1.2.3" into [1, 2, 3]. Missing or non-numeric parts
// are 0; pre-release suffixes are ignored.
func parseVersion(v string) [3]int {
	var parts [3]int
	for i, s := range strings.SplitN(v, ".", 3) {
		s, _, _ = strings.Cut(s, "-")
		n, _ := strconv.Atoi(s)
		parts[i] = n
	}
	return parts
}

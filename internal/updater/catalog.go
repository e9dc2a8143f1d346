package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Release represents one entry of the release feed.
type Release struct {
	TagName    string  `json:"tag_name"`
	Prerelease bool    `json:"prerelease"`
	Draft      bool    `json:"draft"`
	Assets     []Asset `json:"assets"`
}

// Asset represents a release asset.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	UpdatedAt          string `json:"updated_at"`
}

// Artifact is one downloadable build, flattened from its release.
type Artifact struct {
	Name        string
	DownloadURL string
	// Version is parsed from the file name, falling back to the release tag.
	Version *Version
	// NameVersion is parsed from the file name only.
	NameVersion *Version
	ReleaseTag  string
	Prerelease  bool
	Draft       bool
	UpdatedAt   string
}

// CatalogClient fetches the release feed.
type CatalogClient struct {
	httpClient *http.Client
	feedURL    string
}

// NewCatalogClient creates a client for feedURL with the given request timeout.
func NewCatalogClient(feedURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		feedURL: feedURL,
	}
}

// FetchCatalog returns every artifact advertised by the feed, in feed order.
// Drafts are included; the selector is responsible for skipping them.
func (c *CatalogClient) FetchCatalog(ctx context.Context) ([]Artifact, error) {
	releases, err := c.FetchReleases(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(releases), nil
}

// FetchReleases performs the single feed GET and decodes it.
func (c *CatalogClient) FetchReleases(ctx context.Context) ([]Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrNetwork, err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrNetwork, resp.StatusCode, string(body))
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("%w: decode releases: %v", ErrParse, err)
	}

	return releases, nil
}

// Flatten turns releases into artifacts, resolving each artifact's version.
func Flatten(releases []Release) []Artifact {
	var out []Artifact
	for _, rel := range releases {
		var tagVersion *Version
		if v, ok := ParseVersion(rel.TagName); ok {
			tagVersion = &v
		}
		for _, a := range rel.Assets {
			art := Artifact{
				Name:        a.Name,
				DownloadURL: a.BrowserDownloadURL,
				ReleaseTag:  rel.TagName,
				Prerelease:  rel.Prerelease,
				Draft:       rel.Draft,
				UpdatedAt:   a.UpdatedAt,
				Version:     tagVersion,
			}
			if v, ok := ParseVersion(a.Name); ok {
				art.NameVersion = &v
				art.Version = &v
			}
			out = append(out, art)
		}
	}
	return out
}

// RemoteIdentifier is the identity recorded in the installed state once this
// artifact is installed: the dotted version when known, else the release tag.
func (a Artifact) RemoteIdentifier() string {
	if a.Version != nil {
		return a.Version.String()
	}
	return a.ReleaseTag
}

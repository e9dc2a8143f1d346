package updater

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogClient_FetchCatalog(t *testing.T) {
	releases := []Release{
		{
			TagName: "v1.2.0",
			Assets: []Asset{
				{Name: "AdminDashboard-1.2.0.exe", BrowserDownloadURL: "https://example.com/a.exe", UpdatedAt: "2026-01-02T00:00:00Z"},
				{Name: "AdminDashboard.exe", BrowserDownloadURL: "https://example.com/b.exe", UpdatedAt: "2026-01-02T00:00:01Z"},
			},
		},
		{
			TagName:    "nightly",
			Prerelease: true,
			Assets: []Asset{
				{Name: "AdminDashboard.exe", BrowserDownloadURL: "https://example.com/c.exe"},
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		json.NewEncoder(w).Encode(releases)
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL, 5*time.Second)
	catalog, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 3)

	// Version from the file name.
	assert.Equal(t, "AdminDashboard-1.2.0.exe", catalog[0].Name)
	require.NotNil(t, catalog[0].NameVersion)
	assert.Equal(t, "1.2.0.0", catalog[0].Version.String())
	assert.Equal(t, "1.2.0.0", catalog[0].RemoteIdentifier())

	// Version from the tag only.
	assert.Nil(t, catalog[1].NameVersion)
	require.NotNil(t, catalog[1].Version)
	assert.Equal(t, "1.2.0.0", catalog[1].Version.String())
	assert.Equal(t, "v1.2.0", catalog[1].ReleaseTag)

	// No version anywhere.
	assert.Nil(t, catalog[2].Version)
	assert.True(t, catalog[2].Prerelease)
	assert.Equal(t, "nightly", catalog[2].RemoteIdentifier())
}

func TestCatalogClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL, 5*time.Second)
	_, err := client.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Contains(t, err.Error(), "403")
}

func TestCatalogClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"`))
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL, 5*time.Second)
	_, err := client.FetchCatalog(context.Background())
	assert.Equal(t, KindParse, KindOf(err))
}

func TestCatalogClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL, 20*time.Millisecond)
	_, err := client.FetchCatalog(context.Background())
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestCatalogClient_Unreachable(t *testing.T) {
	client := NewCatalogClient("http://127.0.0.1:1/releases", time.Second)
	_, err := client.FetchCatalog(context.Background())
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten([]Release{{TagName: "v1.0.0"}}))
}

func TestArtifact_RemoteIdentifierEmpty(t *testing.T) {
	assert.Equal(t, "", Artifact{}.RemoteIdentifier())
}

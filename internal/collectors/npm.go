package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"builderpulse/internal/models"
)

// npmSearchKeywords are the ecosystem corners searched each run.
var npmSearchKeywords = []string{
	"ai",
	"llm",
	"agent",
	"react",
	"cli",
	"framework",
	"database",
	"typescript",
	"serverless",
}

// NpmCollector searches the npm registry for builder-adjacent packages and
// tracks weekly download totals.
type NpmCollector struct {
	store       *Store
	httpClient  *http.Client
	registryURL string
	apiURL      string
}

// NewNpmCollector creates a new npm collector
func NewNpmCollector(store *Store) *NpmCollector {
	return &NpmCollector{
		store:       store,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		registryURL: "https://registry.npmjs.org",
		apiURL:      "https://api.npmjs.org",
	}
}

// Platform returns the platform this collector feeds
func (c *NpmCollector) Platform() models.Platform {
	return models.PlatformNpm
}

type npmPackage struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Links       struct {
		Npm        string `json:"npm"`
		Repository string `json:"repository"`
	} `json:"links"`
	Publisher struct {
		Username string `json:"username"`
	} `json:"publisher"`
}

type npmSearchResponse struct {
	Objects []struct {
		Package npmPackage `json:"package"`
	} `json:"objects"`
}

type npmDownloads struct {
	Downloads int    `json:"downloads"`
	Package   string `json:"package"`
}

func (c *NpmCollector) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "BuilderPulse/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *NpmCollector) searchPackages(ctx context.Context) ([]npmPackage, error) {
	seen := make(map[string]bool)
	packages := []npmPackage{}

	for _, keyword := range npmSearchKeywords {
		searchURL := fmt.Sprintf("%s/-/v1/search?text=%s&size=5&popularity=1.0",
			c.registryURL, url.QueryEscape(keyword))

		var parsed npmSearchResponse
		if err := c.getJSON(ctx, searchURL, &parsed); err != nil {
			return packages, err
		}
		for _, obj := range parsed.Objects {
			if obj.Package.Name == "" || seen[obj.Package.Name] {
				continue
			}
			seen[obj.Package.Name] = true
			packages = append(packages, obj.Package)
		}
	}
	return packages, nil
}

// fetchWeeklyDownloads resolves last-week download counts per package.
// Scoped packages are not supported by the bulk endpoint and are fetched
// individually.
func (c *NpmCollector) fetchWeeklyDownloads(ctx context.Context, names []string) map[string]int {
	downloads := make(map[string]int)

	bulk := []string{}
	for _, name := range names {
		if strings.HasPrefix(name, "@") {
			var single npmDownloads
			singleURL := fmt.Sprintf("%s/downloads/point/last-week/%s", c.apiURL, name)
			if err := c.getJSON(ctx, singleURL, &single); err == nil {
				downloads[name] = single.Downloads
			}
			continue
		}
		bulk = append(bulk, name)
	}
	if len(bulk) == 0 {
		return downloads
	}

	bulkURL := fmt.Sprintf("%s/downloads/point/last-week/%s", c.apiURL, strings.Join(bulk, ","))
	if len(bulk) == 1 {
		var single npmDownloads
		if err := c.getJSON(ctx, bulkURL, &single); err == nil {
			downloads[single.Package] = single.Downloads
		}
		return downloads
	}

	var parsed map[string]*npmDownloads
	if err := c.getJSON(ctx, bulkURL, &parsed); err != nil {
		return downloads
	}
	for name, entry := range parsed {
		if entry != nil {
			downloads[name] = entry.Downloads
		}
	}
	return downloads
}

// Collect searches for packages and records each with its weekly download
// count. Download growth compares against the previous recorded snapshot.
func (c *NpmCollector) Collect(ctx context.Context) (*Result, error) {
	result := &Result{}

	packages, err := c.searchPackages(ctx)
	if err != nil && len(packages) == 0 {
		return result, err
	}
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	names := make([]string, 0, len(packages))
	for _, pkg := range packages {
		names = append(names, pkg.Name)
	}
	downloads := c.fetchWeeklyDownloads(ctx, names)

	for _, pkg := range packages {
		weekly := downloads[pkg.Name]
		externalID := fmt.Sprintf("npm:%s", pkg.Name)

		growth := 0.0
		previous, err := c.store.LatestSnapshot(externalID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("package %s: %v", pkg.Name, err))
		} else if previous != nil && previous.DownloadsWeekly > 0 {
			growth = float64(weekly-previous.DownloadsWeekly) / float64(previous.DownloadsWeekly)
		}

		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, pkg.Date); err == nil {
			publishedAt = &t
		}

		pkgURL := pkg.Links.Npm
		if pkgURL == "" {
			pkgURL = fmt.Sprintf("https://www.npmjs.com/package/%s", pkg.Name)
		}

		post := models.Post{
			Platform:    models.PlatformNpm,
			Title:       pkg.Name,
			URL:         pkgURL,
			Author:      pkg.Publisher.Username,
			Description: pkg.Description,
			PublishedAt: publishedAt,
			Type:        models.PostTypePackage,
			ExternalID:  externalID,
		}
		snapshot := models.MetricSnapshot{
			DownloadsWeekly: weekly,
			DownloadGrowth:  growth,
		}

		if err := c.store.SavePost(&post, snapshot); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("package %s: %v", pkg.Name, err))
			continue
		}
		result.Collected++
	}

	return result, nil
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nodegraph/modelresolver/internal/cache"
	"github.com/nodegraph/modelresolver/internal/keyword"
	"github.com/nodegraph/modelresolver/internal/registry"
)

// CivitaiConfig configures the Civitai-like adapter.
type CivitaiConfig struct {
	BaseURL string
	APIKey  string
}

type civitaiFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"sizeBytes"`
}

type civitaiModelVersion struct {
	ID    int64         `json:"id"`
	Files []civitaiFile `json:"files"`
}

type civitaiModel struct {
	Name     string                `json:"name"`
	Creator  string                `json:"creator"`
	Versions []civitaiModelVersion `json:"modelVersions"`
}

type civitaiSearchResponse struct {
	Items []civitaiModel `json:"items"`
}

// CivitaiAdapter queries a Civitai-like catalog keyed by free text. Each
// model version returns a download URL of the form
// https://<host>/api/download/models/<version_id>.
type CivitaiAdapter struct {
	cfg    CivitaiConfig
	client *http.Client
	cache  *cache.Cache
	now    func() int64
}

// NewCivitaiAdapter constructs the adapter. A nil cache disables search
// result caching.
func NewCivitaiAdapter(cfg CivitaiConfig, client *http.Client, c *cache.Cache) *CivitaiAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &CivitaiAdapter{cfg: cfg, client: client, cache: c, now: func() int64 { return time.Now().Unix() }}
}

func (a *CivitaiAdapter) ID() string { return "catalog_C" }

func (a *CivitaiAdapter) Search(ctx context.Context, filename string, kind registry.Kind, queries []string) Outcome {
	for _, q := range queries {
		select {
		case <-ctx.Done():
			return Cancelled()
		default:
		}

		hits, outcome, stop := a.searchOne(ctx, filename, kind, q)
		if stop {
			return outcome
		}
		if len(hits) > 0 {
			return Hits(hits)
		}
	}
	return NotFound()
}

func (a *CivitaiAdapter) searchOne(ctx context.Context, filename string, kind registry.Kind, q string) ([]SearchHit, Outcome, bool) {
	cacheKey := a.ID() + ":" + strings.ToLower(q)
	if a.cache != nil {
		if raw, ok, err := a.cache.Get(cache.NamespaceSearch, cacheKey, a.now()); err == nil && ok {
			var hits []SearchHit
			if json.Unmarshal(raw, &hits) == nil {
				return hits, Outcome{}, false
			}
		}
	}

	models, adapterErr := a.queryModels(ctx, kind, q)
	if adapterErr.Kind == OutcomePermanent || adapterErr.Kind == OutcomeTransient ||
		adapterErr.Kind == OutcomeAuthRequired || adapterErr.Kind == OutcomeCancelled {
		return nil, adapterErr, true
	}

	wantKeywords := keyword.Extract(filename)
	var hits []SearchHit
	for _, m := range models {
		for _, v := range m.Versions {
			best, bestScore, ok := bestFileVariant(v.Files, filename, wantKeywords)
			if !ok {
				continue
			}
			confidence := ConfidenceKeywordMatch
			if strings.EqualFold(best.Name, filename) {
				confidence = ConfidenceExact
			} else if bestScore >= 0.8 {
				confidence = ConfidenceFilenameMatch
			}
			hits = append(hits, SearchHit{
				SourceCatalog:      a.ID(),
				RepositoryOrAuthor: m.Creator,
				DisplayName:        best.Name,
				DirectURL:          a.downloadURL(v.ID),
				SizeBytes:          best.SizeBytes,
				Confidence:         confidence,
				KeywordMatchScore:  bestScore,
			})
		}
	}

	if a.cache != nil {
		if raw, err := json.Marshal(hits); err == nil {
			_ = a.cache.Set(cache.NamespaceSearch, cacheKey, raw, 3600, a.now())
		}
	}

	return hits, Outcome{}, false
}

// bestFileVariant picks the file within a model version whose filename has
// the highest Jaccard similarity to the requested filename, ties broken by
// smaller size (spec §9 open question: Civitai may list multiple file
// variants per version).
func bestFileVariant(files []civitaiFile, filename string, wantKeywords []string) (civitaiFile, float64, bool) {
	var best civitaiFile
	bestScore := -1.0
	found := false
	for _, f := range files {
		score := keyword.Similarity(wantKeywords, keyword.Extract(f.Name))
		if strings.EqualFold(f.Name, filename) {
			score = 1.0
		}
		if !found || score > bestScore || (score == bestScore && f.SizeBytes < best.SizeBytes) {
			best, bestScore, found = f, score, true
		}
	}
	if !found || bestScore < 0.3 {
		return civitaiFile{}, 0, false
	}
	return best, bestScore, true
}

func (a *CivitaiAdapter) downloadURL(versionID int64) string {
	host := strings.TrimSuffix(a.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/api/download/models/%d", host, versionID)
}

func (a *CivitaiAdapter) queryModels(ctx context.Context, kind registry.Kind, q string) ([]civitaiModel, Outcome) {
	endpoint := strings.TrimSuffix(a.cfg.BaseURL, "/") + "/api/v1/models?query=" + url.QueryEscape(q)
	if kind == registry.KindLora {
		endpoint += "&types=LORA"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, Permanent(err)
	}
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Cancelled()
		}
		return nil, Transient(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, AuthRequired()
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout:
		return nil, Transient(fmt.Errorf("catalog_C: status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, Transient(fmt.Errorf("catalog_C: status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, Outcome{}
	case resp.StatusCode >= 400:
		return nil, Permanent(fmt.Errorf("catalog_C: status %d", resp.StatusCode))
	}

	var body civitaiSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, Permanent(fmt.Errorf("catalog_C: decode response: %w", err))
	}
	return body.Items, Outcome{}
}

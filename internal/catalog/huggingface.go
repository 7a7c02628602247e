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

// HuggingFaceConfig configures the HuggingFace-like adapter.
type HuggingFaceConfig struct {
	BaseURL string
	Token   string
}

// huggingFaceModel is the subset of the models-index response the adapter
// needs: the repository id and its file listing.
type huggingFaceModel struct {
	ID    string   `json:"id"`
	Files []string `json:"siblings_filenames"`
}

// HuggingFaceAdapter queries a HuggingFace-like models index. Direct-URL
// pattern: https://<host>/<repo>/resolve/<ref>/<file>.
type HuggingFaceAdapter struct {
	cfg    HuggingFaceConfig
	client *http.Client
	cache  *cache.Cache
	now    func() int64
}

// NewHuggingFaceAdapter constructs the adapter. A nil cache disables search
// result caching.
func NewHuggingFaceAdapter(cfg HuggingFaceConfig, client *http.Client, c *cache.Cache) *HuggingFaceAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HuggingFaceAdapter{cfg: cfg, client: client, cache: c, now: func() int64 { return time.Now().Unix() }}
}

func (a *HuggingFaceAdapter) ID() string { return "catalog_H" }

func (a *HuggingFaceAdapter) Search(ctx context.Context, filename string, kind registry.Kind, queries []string) Outcome {
	for _, q := range queries {
		select {
		case <-ctx.Done():
			return Cancelled()
		default:
		}

		hits, outcome, stop := a.searchOne(ctx, filename, q)
		if stop {
			return outcome
		}
		if len(hits) > 0 {
			return Hits(hits)
		}
	}
	return NotFound()
}

// searchOne runs a single query. The bool return is true when the caller
// should stop trying further queries (a definitive non-NotFound outcome).
func (a *HuggingFaceAdapter) searchOne(ctx context.Context, filename, q string) ([]SearchHit, Outcome, bool) {
	cacheKey := a.ID() + ":" + strings.ToLower(q)
	if a.cache != nil {
		if raw, ok, err := a.cache.Get(cache.NamespaceSearch, cacheKey, a.now()); err == nil && ok {
			var hits []SearchHit
			if json.Unmarshal(raw, &hits) == nil {
				return hits, Outcome{}, false
			}
		}
	}

	models, adapterErr := a.queryModels(ctx, q)
	if adapterErr.Kind == OutcomePermanent || adapterErr.Kind == OutcomeTransient ||
		adapterErr.Kind == OutcomeAuthRequired || adapterErr.Kind == OutcomeCancelled {
		return nil, adapterErr, true
	}

	var hits []SearchHit
	wantKeywords := keyword.Extract(filename)
	for _, m := range models {
		for _, f := range m.Files {
			base := f
			if idx := strings.LastIndex(f, "/"); idx >= 0 {
				base = f[idx+1:]
			}
			if strings.EqualFold(base, filename) {
				hits = append(hits, SearchHit{
					SourceCatalog:      a.ID(),
					RepositoryOrAuthor: m.ID,
					DisplayName:        base,
					DirectURL:          a.resolveURL(m.ID, f),
					Confidence:         ConfidenceExact,
				})
				continue
			}
			score := keyword.Similarity(wantKeywords, keyword.Extract(base))
			if score >= 0.5 {
				hits = append(hits, SearchHit{
					SourceCatalog:      a.ID(),
					RepositoryOrAuthor: m.ID,
					DisplayName:        base,
					DirectURL:          a.resolveURL(m.ID, f),
					Confidence:         ConfidenceKeywordMatch,
					KeywordMatchScore:  score,
				})
			}
		}
	}

	if a.cache != nil {
		if raw, err := json.Marshal(hits); err == nil {
			_ = a.cache.Set(cache.NamespaceSearch, cacheKey, raw, 3600, a.now())
		}
	}

	return hits, Outcome{}, false
}

func (a *HuggingFaceAdapter) resolveURL(repo, file string) string {
	host := strings.TrimSuffix(a.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%s/resolve/main/%s", host, repo, file)
}

// queryModels issues the request for a single query string. The returned
// Outcome is the zero value (Kind == "") on success; any populated Kind
// signals a definitive adapter-level error the caller should stop on.
func (a *HuggingFaceAdapter) queryModels(ctx context.Context, q string) ([]huggingFaceModel, Outcome) {
	endpoint := strings.TrimSuffix(a.cfg.BaseURL, "/") + "/api/models?search=" + url.QueryEscape(q) + "&full=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, Permanent(err)
	}
	if a.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.Token)
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
		return nil, Transient(fmt.Errorf("catalog_H: status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, Transient(fmt.Errorf("catalog_H: status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, Outcome{}
	case resp.StatusCode >= 400:
		return nil, Permanent(fmt.Errorf("catalog_H: status %d", resp.StatusCode))
	}

	var models []huggingFaceModel
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, Permanent(fmt.Errorf("catalog_H: decode response: %w", err))
	}
	return models, Outcome{}
}

// Package elasticsearch is the Search Adapter (§4.5): ensures the articles
// index exists and writes documents keyed by article id, idempotently.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/drithh/news-management/internal/domain/article"
	"github.com/drithh/news-management/pkg"
)

const indexName = "articles"

// indexMapping is fixed: id (keyword), title (text + raw keyword +
// search_as_you_type autocomplete), content (text + raw keyword), source
// (keyword), author (keyword), link (keyword), created_at/updated_at (date)
// (§4.5).
const indexMapping = `{
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"title": {
				"type": "text",
				"fields": {
					"raw": {"type": "keyword"},
					"autocomplete": {"type": "search_as_you_type"}
				}
			},
			"content": {
				"type": "text",
				"fields": {
					"raw": {"type": "keyword"}
				}
			},
			"source": {"type": "keyword"},
			"author": {"type": "keyword"},
			"link": {"type": "keyword"},
			"created_at": {"type": "date"},
			"updated_at": {"type": "date"}
		}
	}
}`

// Adapter is the search engine port H depends on (§4.5).
//
//go:generate mockgen --destination=adapter_mock.go --package=elasticsearch . Adapter
type Adapter interface {
	EnsureIndexExists(ctx context.Context) error
	IndexArticle(ctx context.Context, a article.Article) error
}

// document is the ISO-8601-timestamped wire shape written to the index.
type document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	Author    string `json:"author"`
	Link      string `json:"link"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ElasticsearchAdapter is the elastic/go-elasticsearch-backed Adapter.
type ElasticsearchAdapter struct {
	client *elasticsearch.Client

	// ensureMu guards ensured: only a confirmed success is cached, so a
	// transient failure (e.g. ES unreachable on the first message) is
	// retried on the next IndexArticle call instead of poisoning every
	// subsequent call for the life of the process.
	ensureMu sync.Mutex
	ensured  bool
}

// NewElasticsearchAdapter returns a new instance of ElasticsearchAdapter
// using the given connection URL.
func NewElasticsearchAdapter(url string) (*ElasticsearchAdapter, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, pkg.StorageError{Op: "connect", Err: err}
	}

	return &ElasticsearchAdapter{client: client}, nil
}

// EnsureIndexExists creates the index if absent. Create-if-missing only —
// it is never destructive, resolving the contradictory "delete if exists"
// behavior noted as an open question (§9).
func (a *ElasticsearchAdapter) EnsureIndexExists(ctx context.Context) error {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "elasticsearch.ensure_index_exists")
	defer span.End()

	existsResp, err := esapi.IndicesExistsRequest{Index: []string{indexName}}.Do(ctx, a.client)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to check index existence", err)

		return pkg.StorageError{Op: "ensure_index_exists", Err: err}
	}
	defer existsResp.Body.Close()

	if existsResp.StatusCode == 200 {
		return nil
	}

	createResp, err := esapi.IndicesCreateRequest{
		Index: indexName,
		Body:  bytes.NewReader([]byte(indexMapping)),
	}.Do(ctx, a.client)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to create index", err)

		return pkg.StorageError{Op: "ensure_index_exists", Err: err}
	}
	defer createResp.Body.Close()

	if createResp.IsError() {
		err := fmt.Errorf("elasticsearch returned status %s creating index %s", createResp.Status(), indexName)
		libOpentelemetry.HandleSpanError(&span, "Failed to create index", err)

		return pkg.StorageError{Op: "ensure_index_exists", Err: err}
	}

	return nil
}

// ensureIndexOnce calls EnsureIndexExists at most once per successful
// outcome. A failure is never cached, so the next delivery retries it.
func (a *ElasticsearchAdapter) ensureIndexOnce(ctx context.Context) error {
	a.ensureMu.Lock()
	defer a.ensureMu.Unlock()

	if a.ensured {
		return nil
	}

	if err := a.EnsureIndexExists(ctx); err != nil {
		return err
	}

	a.ensured = true

	return nil
}

// IndexArticle writes a document keyed by the article id. Writes are
// idempotent by document id: rewriting the same document is safe (§4.5).
// Must be called after EnsureIndexExists; called lazily here on first use.
func (a *ElasticsearchAdapter) IndexArticle(ctx context.Context, art article.Article) error {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "elasticsearch.index_article")
	defer span.End()

	if err := a.ensureIndexOnce(ctx); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to ensure index exists", err)

		return err
	}

	doc := document{
		ID:        art.ID.String(),
		Title:     art.Title,
		Content:   art.Content,
		Source:    art.Source,
		Author:    art.Author,
		Link:      art.Link,
		CreatedAt: art.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: art.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to marshal article document", err)

		return pkg.StorageError{Op: "index_article", Err: err}
	}

	resp, err := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, a.client)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to index article", err)

		return pkg.StorageError{Op: "index_article", Err: err}
	}
	defer resp.Body.Close()

	if resp.IsError() {
		err := fmt.Errorf("elasticsearch returned status %s indexing article %s", resp.Status(), doc.ID)
		libOpentelemetry.HandleSpanError(&span, "Failed to index article", err)

		return pkg.StorageError{Op: "index_article", Err: err}
	}

	return nil
}

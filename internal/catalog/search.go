package catalog

import (
	"fmt"
	"log/slog"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// toolDoc is the indexed representation of a tool.
type toolDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Resolver selects the candidate tool subset for a query using an in-memory
// full-text index over tool names and descriptions. Resolution is best-effort:
// a failed or empty search degrades to the full catalog so planning can
// always proceed.
type Resolver struct {
	catalog *Catalog
	index   bleve.Index
	logger  *slog.Logger
}

// NewResolver builds the in-memory index from the catalog. The catalog is
// immutable, so the index is built once and never updated.
func NewResolver(c *Catalog, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	index, err := bleve.NewMemOnly(buildToolMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create tool index: %w", err)
	}

	batch := index.NewBatch()
	for _, t := range c.All() {
		doc := toolDoc{
			Name:        t.Name,
			Description: t.Description,
			Category:    Category(t.Name),
		}
		if err := batch.Index(t.Name, doc); err != nil {
			return nil, fmt.Errorf("failed to index tool %s: %w", t.Name, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to commit tool index batch: %w", err)
	}

	return &Resolver{catalog: c, index: index, logger: logger}, nil
}

// buildToolMapping creates the index mapping for tool documents.
func buildToolMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", nameField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("description", descField)

	categoryField := bleve.NewTextFieldMapping()
	categoryField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("category", categoryField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Resolve returns up to limit tools relevant to the query. Order follows
// search score. If the search fails or matches nothing, the full catalog is
// returned instead.
func (r *Resolver) Resolve(query string, limit int) []Tool {
	if limit <= 0 {
		limit = r.catalog.Len()
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	res, err := r.index.Search(req)
	if err != nil {
		r.logger.Warn("tool search failed, using full catalog",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return r.catalog.All()
	}
	if len(res.Hits) == 0 {
		return r.catalog.All()
	}

	tools := make([]Tool, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if t, ok := r.catalog.Get(hit.ID); ok {
			tools = append(tools, t)
		}
	}
	if len(tools) == 0 {
		return r.catalog.All()
	}
	return tools
}

// Close releases the underlying index.
func (r *Resolver) Close() error {
	return r.index.Close()
}

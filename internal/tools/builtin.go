package tools

import (
	"context"
	"errors"

	"github.com/mehdi-bk/stevedore/internal/catalog"
	"github.com/mehdi-bk/stevedore/internal/docstore"
)

// NewDocumentRegistry builds the builtin tool set over the document store:
// generic document CRUD plus the typed listing tools for shipments and
// facilities.
func NewDocumentRegistry(docs *docstore.Store) *Registry {
	r := NewRegistry()

	r.Register(catalog.Tool{
		Name:        "documents_create",
		Description: "Create a document such as a bill of lading, customs form, or delivery receipt",
		InputSchema: catalog.InputSchema{
			Properties: map[string]map[string]any{
				"doc_type": {"type": "string", "description": "Document type, e.g. shipment, facility, manifest"},
				"title":    {"type": "string", "description": "Human-readable title"},
				"attrs":    {"type": "object", "description": "Type-specific fields"},
			},
			Required: []string{"doc_type", "title"},
		},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		return docs.Create(ctx, stringParam(params, "doc_type"), stringParam(params, "title"), mapParam(params, "attrs"))
	})

	r.Register(catalog.Tool{
		Name:        "documents_get",
		Description: "Fetch a single document by its id",
		InputSchema: catalog.InputSchema{
			Properties: map[string]map[string]any{
				"id": {"type": "string", "description": "Document id"},
			},
			Required: []string{"id"},
		},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		return docs.Get(ctx, stringParam(params, "id"))
	})

	r.Register(catalog.Tool{
		Name:        "documents_update",
		Description: "Replace a document's title and attributes",
		InputSchema: catalog.InputSchema{
			Properties: map[string]map[string]any{
				"id":    {"type": "string", "description": "Document id"},
				"title": {"type": "string", "description": "New title"},
				"attrs": {"type": "object", "description": "New type-specific fields"},
			},
			Required: []string{"id", "title"},
		},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		return docs.Update(ctx, stringParam(params, "id"), stringParam(params, "title"), mapParam(params, "attrs"))
	})

	r.Register(catalog.Tool{
		Name:        "documents_delete",
		Description: "Soft-delete a document so it no longer appears in listings",
		InputSchema: catalog.InputSchema{
			Properties: map[string]map[string]any{
				"id": {"type": "string", "description": "Document id"},
			},
			Required: []string{"id"},
		},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		if err := docs.SoftDelete(ctx, stringParam(params, "id")); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": true}, nil
	})

	r.Register(catalog.Tool{
		Name:        "documents_list",
		Description: "List documents, optionally filtered by type",
		InputSchema: catalog.InputSchema{
			Properties: map[string]map[string]any{
				"doc_type": {"type": "string", "description": "Restrict to this document type"},
			},
		},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		return docs.ListByType(ctx, stringParam(params, "doc_type"))
	})

	r.Register(catalog.Tool{
		Name:        "shipments_list",
		Description: "List shipment records, optionally filtered by status such as in_transit or delivered",
		InputSchema: catalog.InputSchema{
			Properties: map[string]map[string]any{
				"status": {"type": "string", "description": "Only shipments in this status"},
			},
		},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		return listWithStatus(ctx, docs, "shipment", stringParam(params, "status"))
	})

	r.Register(catalog.Tool{
		Name:        "facilities_list",
		Description: "List warehouse and terminal facility records",
		InputSchema: catalog.InputSchema{},
	}, func(ctx context.Context, params map[string]any) (any, error) {
		return docs.ListByType(ctx, "facility")
	})

	return r
}

// listWithStatus lists documents of a type and filters on the status attr.
// The status filter lives here, not in SQL: attrs is an opaque JSON blob to
// the store.
func listWithStatus(ctx context.Context, docs *docstore.Store, docType, status string) ([]*docstore.Document, error) {
	if docs == nil {
		return nil, errors.New("document store not configured")
	}
	all, err := docs.ListByType(ctx, docType)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	filtered := make([]*docstore.Document, 0, len(all))
	for _, d := range all {
		if s, _ := d.Attrs["status"].(string); s == status {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

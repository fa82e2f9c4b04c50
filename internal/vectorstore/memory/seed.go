package memory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stockfinder/internal/domain"
)

// Document is a stock description to index, usually one per ticker.
type Document struct {
	ID       string            `yaml:"id"`
	Text     string            `yaml:"text"`
	Metadata map[string]string `yaml:"metadata"`
}

// LoadDocuments reads a YAML list of documents.
func LoadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var docs []Document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return docs, nil
}

// Index embeds every document and upserts it into namespace. The document text is
// also stored under the "text" metadata key, as the hosted indexes do.
func (s *Storage) Index(ctx context.Context, namespace string, embedder domain.Embedder, docs []Document) error {
	items := make([]Item, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Text) == "" {
			return fmt.Errorf("document needs both id and text: %q", d.ID)
		}
		vec, err := embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("embed %s: %w", d.ID, err)
		}
		meta := make(map[string]string, len(d.Metadata)+1)
		for k, v := range d.Metadata {
			meta[k] = v
		}
		meta["text"] = d.Text
		items = append(items, Item{ID: d.ID, Vector: vec, Text: d.Text, Metadata: meta})
	}
	return s.Upsert(namespace, items...)
}

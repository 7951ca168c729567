package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// frontMatter is the serialized metadata header. Field order here is the
// field order in the written document.
type frontMatter struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	PubDate      string   `yaml:"pubDate"`
	Categories   []string `yaml:"categories"`
	Keywords     []string `yaml:"keywords"`
	Slug         string   `yaml:"slug"`
	Draft        bool     `yaml:"draft"`
	Tags         []string `yaml:"tags"`
	Image        string   `yaml:"image"`
	CanonicalURL string   `yaml:"canonical_url"`
}

// DocumentWriter serializes post documents as front-matter + markdown files
// named by slug.
type DocumentWriter struct {
	outputDir string
}

// NewDocumentWriter creates a writer targeting outputDir.
func NewDocumentWriter(outputDir string) *DocumentWriter {
	return &DocumentWriter{outputDir: outputDir}
}

// Write persists doc under its slug, creating parent directories as needed.
// An existing file with the same slug is overwritten.
func (w *DocumentWriter) Write(doc *PostDocument) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	meta, err := yaml.Marshal(frontMatter{
		Title:        doc.Title,
		Description:  doc.Description,
		PubDate:      doc.PubDate.Format("2006-01-02"),
		Categories:   emptyIfNil(doc.Categories),
		Keywords:     emptyIfNil(doc.Keywords),
		Slug:         doc.Slug,
		Draft:        doc.Draft,
		Tags:         emptyIfNil(doc.Tags),
		Image:        doc.Image,
		CanonicalURL: doc.CanonicalURL,
	})
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	outputPath := filepath.Join(w.outputDir, doc.Slug+".md")
	content := "---\n" + string(meta) + "---\n\n" + doc.Body + "\n"
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing document: %w", err)
	}
	return outputPath, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

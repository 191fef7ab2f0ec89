// Package vault assembles diary notes and persists them, plus their audio
// artifacts, into an Obsidian-style vault.
package vault

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a parsed markdown note: YAML frontmatter plus body.
type Document struct {
	Meta map[string]any
	Body string
}

// ParseDocument splits a markdown file into frontmatter and body. Files
// without a frontmatter block parse as pure body.
func ParseDocument(data []byte) (Document, error) {
	doc := Document{Meta: make(map[string]any)}

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Body = string(data)
		return doc, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("---"), 2)
	if len(parts) == 1 {
		return Document{}, errors.New("frontmatter started but no closing delimiter found")
	}

	if err := yaml.Unmarshal(parts[0], &doc.Meta); err != nil {
		return Document{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	doc.Body = strings.TrimPrefix(string(parts[1]), "\n")
	doc.Body = strings.TrimPrefix(doc.Body, "\r\n")
	return doc, nil
}

// SerializeDocument renders frontmatter plus body back to bytes.
func SerializeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if len(doc.Meta) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc.Meta); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Body)
	return buf.Bytes(), nil
}

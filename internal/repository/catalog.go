package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pcsense/buylinks/internal/domain"

	log "github.com/sirupsen/logrus"
)

type CatalogRepository interface {
	Load(ctx context.Context) (*domain.Catalog, error)
	Save(ctx context.Context, catalog *domain.Catalog) error
}

type fileCatalogRepository struct {
	path string
}

// NewFileCatalogRepository stores the catalog as a single JSON document.
func NewFileCatalogRepository(path string) CatalogRepository {
	return &fileCatalogRepository{
		path: path,
	}
}

func (r *fileCatalogRepository) Load(_ context.Context) (*domain.Catalog, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", r.path, err)
	}

	log.Debugf("Loaded catalog %s with %d categories", r.path, catalog.Len())
	return &catalog, nil
}

// Save replaces the catalog file. The new content goes to a temporary file
// next to it first, so the old catalog survives a failed write.
func (r *fileCatalogRepository) Save(_ context.Context, catalog *domain.Catalog) error {
	data, err := Encode(catalog)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(r.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary catalog file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set catalog permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close catalog file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace catalog %s: %w", r.path, err)
	}

	log.Debugf("Saved catalog %s (%d bytes)", r.path, len(data))
	return nil
}

// Encode renders the catalog with two-space indentation and without escaping
// HTML or non-ASCII characters.
func Encode(catalog *domain.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		return nil, err
	}
	return unescapeStrings(bytes.TrimRight(buf.Bytes(), "\n"))
}

// unescapeStrings rewrites string literals that carry \uXXXX escapes so
// the characters appear literally. Numbers keep the text they were read with.
func unescapeStrings(data []byte) ([]byte, error) {
	if !bytes.Contains(data, []byte(`\u`)) {
		return data, nil
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] != '"' {
			out = append(out, data[i])
			i++
			continue
		}

		end := i + 1
		for end < len(data) && data[end] != '"' {
			if data[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(data) {
			return nil, fmt.Errorf("unterminated string at offset %d", i)
		}

		literal := data[i : end+1]
		if !bytes.Contains(literal, []byte(`\u`)) {
			out = append(out, literal...)
			i = end + 1
			continue
		}

		var text string
		if err := json.Unmarshal(literal, &text); err != nil {
			return nil, fmt.Errorf("failed to decode string at offset %d: %w", i, err)
		}
		var enc bytes.Buffer
		encoder := json.NewEncoder(&enc)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(text); err != nil {
			return nil, err
		}
		out = append(out, bytes.TrimRight(enc.Bytes(), "\n")...)
		i = end + 1
	}
	return out, nil
}

package jsonskema

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/reoring/jsonskema/codec"
)

// LoadJSON decodes a JSON schema document and builds its graph.
func LoadJSON(ctx context.Context, data []byte, base string, support Support, opts ...Option) (*RootSchema, error) {
	return load(ctx, codec.JSON(codec.WithDuplicateKeys()), data, base, support, opts)
}

// LoadYAML decodes a YAML schema document and builds its graph.
func LoadYAML(ctx context.Context, data []byte, base string, support Support, opts ...Option) (*RootSchema, error) {
	return load(ctx, codec.YAML(), data, base, support, opts)
}

// LoadFS reads the document name from fsys, choosing the decoder by
// extension. The initial base URI is file:///name.
func LoadFS(ctx context.Context, fsys fs.FS, name string, support Support, opts ...Option) (*RootSchema, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("jsonskema: read %s: %w", name, err)
	}
	return load(ctx, DocumentCodec(name), data, FileURI(name), support, opts)
}

// DocumentCodec returns the YAML codec for .yaml and .yml files and the
// JSON codec otherwise.
func DocumentCodec(name string) codec.Encoder {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return codec.YAML()
	}
	return codec.JSON(codec.WithDuplicateKeys())
}

// FileURI is the base URI of a document at name within a file system.
func FileURI(name string) string {
	return "file:///" + strings.TrimPrefix(path.Clean(name), "/")
}

func load(ctx context.Context, dec codec.Encoder, data []byte, base string, support Support, opts []Option) (*RootSchema, error) {
	doc, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("jsonskema: decode %s document: %w", dec.Name(), err)
	}
	return New(ctx, doc, base, support, opts...)
}

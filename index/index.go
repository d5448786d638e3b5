// Package index loads schemas that a graph references but does not contain.
// An index maps absolute schema URIs to the documents that declare them;
// Support resolves external references through it and Watcher keeps it
// current while the artifact on disk changes.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	jsonskema "github.com/reoring/jsonskema"
	"github.com/reoring/jsonskema/uri"
)

// ErrDuplicateURI reports a URI declared by two documents.
var ErrDuplicateURI = errors.New("index: URI declared in two files")

// Index maps schema URIs to document paths within a file system.
type Index map[string]string

// URIs returns the indexed URIs in sorted order.
func (idx Index) URIs() []string {
	out := make([]string, 0, len(idx))
	for u := range idx {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// BuildOptions configure Build.
type BuildOptions struct {
	// All indexes every URI of a document, including fragment URIs. By
	// default only absolute URIs are indexed.
	All bool
	// Absolute records paths rooted at the file system root ("/a/b.json")
	// rather than as supplied.
	Absolute bool
}

// Build declares the schema graph of every file and indexes the URIs it
// finds. Documents are not compiled, so their references need not resolve.
func Build(ctx context.Context, fsys fs.FS, files []string, opts BuildOptions) (Index, error) {
	idx := Index{}
	support := jsonskema.NewSupport()
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root, err := jsonskema.LoadFS(ctx, fsys, name, support, jsonskema.WithoutDefine())
		if err != nil {
			return nil, fmt.Errorf("index: %s: %w", name, err)
		}
		recorded := path.Clean(name)
		if opts.Absolute {
			recorded = "/" + strings.TrimPrefix(recorded, "/")
		}
		for _, u := range root.URIs() {
			if !opts.All && !uri.IsAbsolute(u) {
				continue
			}
			if prev, dup := idx[u]; dup && prev != recorded {
				return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateURI, u, recorded, prev)
			}
			idx[u] = recorded
		}
	}
	return idx, nil
}

const artifactSchema = `{
	"type": "object",
	"propertyNames": {"format": "uri"},
	"additionalProperties": {"type": "string", "minLength": 1}
}`

// Load reads the index artifact name, a JSON or YAML object of URI to path.
// Relative paths are taken from the directory of the artifact and rooted
// paths from the root of fsys; the returned Index holds paths within fsys.
func Load(ctx context.Context, fsys fs.FS, name string) (Index, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("index: read %s: %w", name, err)
	}
	doc, err := jsonskema.DocumentCodec(name).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("index: decode %s: %w", name, err)
	}
	schema, err := jsonskema.LoadJSON(ctx, []byte(artifactSchema), "file:///index.schema.json", jsonskema.NewSupport())
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("index: %s: %w", name, err)
	}
	m := doc.(map[string]any)
	dir := path.Dir(name)
	idx := make(Index, len(m))
	for u, p := range m {
		file := p.(string)
		if path.IsAbs(file) {
			file = strings.TrimPrefix(path.Clean(file), "/")
		} else {
			file = path.Join(dir, file)
		}
		idx[u] = file
	}
	return idx, nil
}

// Marshal encodes idx as an artifact named name, choosing JSON or YAML by
// extension.
func Marshal(idx Index, name string) ([]byte, error) {
	m := make(map[string]any, len(idx))
	for u, p := range idx {
		m[u] = p
	}
	return jsonskema.DocumentCodec(name).Encode(m)
}

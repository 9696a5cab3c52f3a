// Package attachment turns user-selected photos into model.ImageAttachment
// values. A Source only has to hand over its bytes once; where they come
// from (disk, an uploaded form part, object storage) is up to the caller.
package attachment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dharsanguruparan/reporte/internal/model"
)

// Source yields the content of one selected image.
type Source interface {
	// Filename is the original name shown to the user.
	Filename() string
	// DeclaredType is the media type reported by the origin, or "".
	DeclaredType() string
	// ReadAll returns the whole content. It is called at most once.
	ReadAll(ctx context.Context) ([]byte, error)
}

// Load drains every source in order and tags the result with category.
// Zero-byte images are kept; rejecting them is a form rule, not a read error.
func Load(ctx context.Context, category model.Category, sources ...Source) ([]model.ImageAttachment, error) {
	out := make([]model.ImageAttachment, 0, len(sources))
	for _, src := range sources {
		data, err := src.ReadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Filename(), err)
		}
		out = append(out, model.ImageAttachment{
			Category: category,
			Filename: src.Filename(),
			MimeType: src.DeclaredType(),
			Bytes:    data,
		})
	}
	return out, nil
}

// Bytes is an in-memory source, e.g. a part already read from a request.
type Bytes struct {
	Name string
	Type string
	Data []byte
}

// Filename returns Name.
func (b Bytes) Filename() string { return b.Name }

// DeclaredType returns Type.
func (b Bytes) DeclaredType() string { return b.Type }

// ReadAll returns Data as is.
func (b Bytes) ReadAll(context.Context) ([]byte, error) {
	return b.Data, nil
}

// File reads an image from the local filesystem.
type File struct {
	Path string
}

// Filename is the base name of Path.
func (f File) Filename() string { return filepath.Base(f.Path) }

// DeclaredType is always empty; the type is guessed from name and content.
func (f File) DeclaredType() string { return "" }

// ReadAll reads the whole file unless ctx is already done.
func (f File) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Path)
}

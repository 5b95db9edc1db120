package hazard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// ArtifactSource provides trained model artifacts by hazard.
type ArtifactSource interface {
	Load(ctx context.Context, h domain.HazardType) (*ModelArtifact, error)
}

// DirSource reads artifacts named <hazard>_model.msgpack from a directory.
type DirSource struct {
	Dir string
}

// Path returns the artifact path for h.
func (d DirSource) Path(h domain.HazardType) string {
	return filepath.Join(d.Dir, string(h)+"_model.msgpack")
}

// Load opens, decodes and validates the artifact for h.
func (d DirSource) Load(ctx context.Context, h domain.HazardType) (*ModelArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := d.Path(h)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	a, err := DecodeArtifact(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if a.Hazard != h {
		return nil, fmt.Errorf("%w: %s holds a %s model", ErrArtifactInvalid, path, a.Hazard)
	}
	return a, nil
}

// DecodeArtifact reads a MessagePack-encoded artifact and validates it.
func DecodeArtifact(r io.Reader) (*ModelArtifact, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")

	var a ModelArtifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrArtifactInvalid, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// EncodeArtifact writes a as MessagePack using the json field names.
func EncodeArtifact(w io.Writer, a *ModelArtifact) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}

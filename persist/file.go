package persist

import (
	"context"
	"encoding/gob"
	"io"
	"os"
	"path"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/go/errors"

	"github.com/krisalay/boundcache/types"
)

/*
FileGateway writes snapshots as a single gob-encoded file on a billy
filesystem. Production code roots it on disk with NewDirGateway; tests
hand it an in-memory filesystem.

Saves go to a temporary file that is renamed over the snapshot, so a
reader never sees a half-written snapshot.
*/
type FileGateway[V any] struct {
	fs   billy.Filesystem
	name string

	// mu serializes saves so two renames cannot interleave.
	mu sync.Mutex
}

var _ Gateway[string] = (*FileGateway[string])(nil)

// NewFileGateway stores the snapshot under name on fs.
func NewFileGateway[V any](fs billy.Filesystem, name string) (*FileGateway[V], error) {
	if name == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "snapshot name must not be empty")
	}

	if dir := path.Dir(name); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, CodePersistence, "creating snapshot directory %s", dir)
		}
	}

	return &FileGateway[V]{fs: fs, name: name}, nil
}

// NewDirGateway stores the snapshot as dir/name on the local disk.
func NewDirGateway[V any](dir, name string) (*FileGateway[V], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, CodePersistence, "creating snapshot directory %s", dir)
	}
	return NewFileGateway[V](osfs.New(dir), name)
}

// Name returns the snapshot path relative to the gateway filesystem.
func (g *FileGateway[V]) Name() string {
	return g.name
}

// SaveSnapshot encodes entries and atomically replaces the snapshot file.
func (g *FileGateway[V]) SaveSnapshot(ctx context.Context, entries []types.Entry[V]) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, CodePersistence, "save cancelled")
	}

	if entries == nil {
		entries = []types.Entry[V]{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	tmp := g.name + ".tmp"
	f, err := g.fs.Create(tmp)
	if err != nil {
		return errors.Wrap(err, CodePersistence, "creating temp snapshot")
	}

	if err := gob.NewEncoder(f).Encode(entries); err != nil {
		f.Close()
		g.fs.Remove(tmp)
		return errors.Wrap(err, CodePersistence, "encoding snapshot")
	}

	if err := f.Close(); err != nil {
		g.fs.Remove(tmp)
		return errors.Wrap(err, CodePersistence, "closing temp snapshot")
	}

	if err := g.fs.Rename(tmp, g.name); err != nil {
		// Some filesystems refuse to rename over an existing file.
		if rmErr := g.fs.Remove(g.name); rmErr != nil && !os.IsNotExist(rmErr) {
			g.fs.Remove(tmp)
			return errors.Wrap(err, CodePersistence, "replacing snapshot")
		}
		if err := g.fs.Rename(tmp, g.name); err != nil {
			g.fs.Remove(tmp)
			return errors.Wrap(err, CodePersistence, "replacing snapshot")
		}
	}

	return nil
}

// LoadSnapshot decodes the snapshot file. A missing file is an empty snapshot.
func (g *FileGateway[V]) LoadSnapshot(ctx context.Context) ([]types.Entry[V], error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, CodePersistence, "load cancelled")
	}

	f, err := g.fs.Open(g.name)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Entry[V]{}, nil
		}
		return nil, errors.Wrap(err, CodePersistence, "opening snapshot")
	}
	defer f.Close()

	var entries []types.Entry[V]
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		if err == io.EOF {
			return []types.Entry[V]{}, nil
		}
		return nil, errors.Wrap(err, CodePersistence, "decoding snapshot")
	}
	if entries == nil {
		entries = []types.Entry[V]{}
	}
	return entries, nil
}

package pipeline

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/matzehuels/deeptime/pkg/dataset"
)

// loaded is a prepared dataset with its content hash.
type loaded struct {
	data *dataset.Prepared
	hash string
}

// datasets memoizes prepared datasets by path for the lifetime of a Runner.
type datasets struct {
	mu    sync.Mutex
	byKey map[string]loaded
}

func (d *datasets) load(ctx context.Context, path string, refresh bool) (loaded, bool, error) {
	key := path
	if key != "" {
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.byKey == nil {
		d.byKey = make(map[string]loaded)
	}
	if l, ok := d.byKey[key]; ok && !refresh {
		return l, true, nil
	}
	if err := ctx.Err(); err != nil {
		return loaded{}, false, err
	}
	data, err := dataset.LoadPrepared(path)
	if err != nil {
		return loaded{}, false, err
	}
	l := loaded{data: data, hash: dataset.Hash(data)}
	d.byKey[key] = l
	return l, false, nil
}

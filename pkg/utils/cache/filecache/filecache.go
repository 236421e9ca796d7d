package filecache

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/utils/cache"
)

// read-through cache backed by flat files in a single directory.
// Entries never expire; rerunning with a warm cache avoids network calls.

type (
	Option func(*config)
	// LoaderFunc is invoked on a miss. Its result is written to the
	// cache file before being returned.
	LoaderFunc func(ctx context.Context, key string) ([]byte, error)
	config     struct {
		dir    string
		loader LoaderFunc
		l      *log.Logger
	}
	FileCache struct {
		mutex  sync.Mutex
		config *config
	}
)

var _ cache.Cache[string, []byte] = (*FileCache)(nil)

func WithDir(dir string) Option {
	return func(c *config) {
		c.dir = dir
	}
}

// WithLoader sets the default loader used by Get.
func WithLoader(lf LoaderFunc) Option {
	return func(c *config) {
		c.loader = lf
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *config) {
		c.l = arg
	}
}

func New(opts ...Option) *FileCache {
	c := &config{
		dir: "cache",
		l:   log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &FileCache{config: c}
}

func (c *FileCache) Get(ctx context.Context, key string) (*[]byte, error) {
	return c.GetOrLoad(ctx, key, c.config.loader)
}

// GetOrLoad returns the cached entry for key, calling load on a miss.
func (c *FileCache) GetOrLoad(
	ctx context.Context, key string, load LoaderFunc,
) (*[]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	path := filepath.Join(c.config.dir, key)
	if data, err := os.ReadFile(path); err == nil {
		c.config.l.Debug("cache hit", log.String("key", key))
		return &data, nil
	}
	if load == nil {
		return nil, cache.ErrCacheMiss
	}
	data, err := load(ctx, key)
	c.config.l.Debug("fileCache.load", log.String("key", key))
	if err != nil {
		c.config.l.Error("error loading entry", log.ErrorField(err))
		return nil, err
	}
	if err := os.MkdirAll(c.config.dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *FileCache) Invalidate(ctx context.Context, key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.config.l.Debug("Invalidate", log.String("key", key))
	_ = os.Remove(filepath.Join(c.config.dir, key))
}

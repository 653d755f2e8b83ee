package cache

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treeseq/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Backends lists every backend name, in the order shown in help text.
var Backends = []string{BackendFile, BackendBadger, BackendRedis, BackendMongo, BackendMemory, BackendNone}

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Dir           string // file and badger
	RedisAddr     string
	MongoURI      string
	MongoDatabase string
	Logger        *log.Logger
}

// Open constructs the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case BackendFile, "":
		c, err = NewFileCache(opts.Dir)
	case BackendBadger:
		cfg := DefaultBadgerConfig(filepath.Join(opts.Dir, "badger"))
		cfg.Logger = opts.Logger
		c, err = OpenBadger(cfg)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "redis backend requires an address")
		}
		c, err = NewRedisCache(ctx, opts.RedisAddr)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo backend requires a URI")
		}
		db := opts.MongoDatabase
		if db == "" {
			db = "treeseq"
		}
		c, err = NewMongoCache(ctx, opts.MongoURI, db)
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "open %s cache", opts.Backend)
	}
	return c, nil
}

// Package blob is the single entry point to object storage. Callers outside
// this package depend on the aliases below and never import the backend
// packages under internal/infra/blob directly.
package blob

import (
	"context"
	"fmt"
	"strings"

	"pedigreecore/internal/blob/core"
	fsstore "pedigreecore/internal/infra/blob/fs"
	memstore "pedigreecore/internal/infra/blob/memory"
	s3store "pedigreecore/internal/infra/blob/s3"
)

type (
	Driver           = core.Driver
	Store            = core.Store
	Info             = core.Info
	PutOptions       = core.PutOptions
	SignedURLOptions = core.SignedURLOptions
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrUnsupported = core.ErrUnsupported
	ErrNotFound    = core.ErrNotFound
	ErrExists      = core.ErrExists
)

// S3Config mirrors the S3 backend settings.
type S3Config = s3store.Config

// Config selects and configures a backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// NewMemory returns an empty in-process store.
func NewMemory() Store { return memstore.New() }

// NewFilesystem returns a store rooted at root.
func NewFilesystem(root string) (Store, error) { return fsstore.New(root) }

// NewS3 returns a store for the configured bucket.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return s3store.New(ctx, cfg) }

// Open constructs the backend named by cfg.Driver. An empty driver selects
// the filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch Driver(strings.ToLower(string(cfg.Driver))) {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("blob: unsupported driver %q", cfg.Driver)
	}
}

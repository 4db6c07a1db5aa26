package platform

import (
	"log/slog"

	"github.com/aretw0/cellar/pkg/core"
)

// options holds the internal configuration assembled by New and Init.
type options struct {
	repository  core.Repository
	logger      *slog.Logger
	adapter     string
	config      map[string]interface{}
	serializers map[string]any
}

// Option defines a functional option for configuring the toolbox.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		repository:  nil,
		logger:      nil,
		adapter:     "fs",
		config:      make(map[string]interface{}),
		serializers: make(map[string]any),
	}
}

// WithSerializer registers a custom serializer for a specific extension.
// The serializer 's' must implement the adapter's Serializer interface
// (e.g. fs.Serializer). Using 'any' keeps the public API clean, but
// validation happens at runtime during Init.
func WithSerializer(ext string, s any) Option {
	return func(o *options) {
		o.serializers[ext] = s
	}
}

// WithVersion sets the nbformat version assumed for formats that do not
// carry one themselves (e.g. percent scripts without a header).
func WithVersion(version string) Option {
	return func(o *options) {
		o.config["version"] = version
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the workspace directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. mock, s3).
// If provided, the default filesystem adapter will be skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter allows specifying the storage adapter to use by name (e.g. "fs").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".cellar").
// Defaults to ".cellar" if not set (handled by adapter).
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithEventBuffer allows specifying the capacity of the watch event channel.
// Zero means default.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Write operations (Save, Delete) return ErrReadOnly.
// 2. The dev sandbox (go run temp dir) is BYPASSED (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the "Sandbox" safety mechanism when running via
// `go run`. By default (true), the workspace is forced into a temporary
// directory to prevent accidental data loss. Setting this to false allows
// operating on the real filesystem even during `go run`.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

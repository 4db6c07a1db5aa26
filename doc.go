// Package cellar is the Composition Root for the Cellar toolbox.
//
// It connects the core notebook model (Domain Layer) with the format and
// storage adapters (Persistence Layer) using the Hexagonal Architecture
// pattern.
//
// Philosophy:
//
// Cellar treats a directory of Jupyter notebooks as a queryable document
// workspace. Notebooks are parsed into a small structural model (cells,
// sources, execution counts) that survives conversion between formats.
// While the default implementation reads .ipynb containers and py-percent
// scripts from the file system, Cellar's core is agnostic, allowing for
// future adapters (e.g., S3, SQLite).
//
// Features:
//
//   - **Hexagonal Architecture**: Core domain is isolated from format and storage details.
//   - **Round-Trip Fidelity**: .ipynb containers serialize back byte-stable.
//   - **Polyglot Formats**: Container JSON and py-percent scripts share one model.
//   - **Workspace Index**: Listings are cached on disk and invalidated by mtime.
//   - **Live Watching**: Filesystem events, debounced per notebook id.
//   - **Extensible**: Designed to support other backends via `core.Repository`.
//
// Usage:
//
//	// Initialize service with functional options
//	svc, err := cellar.New("./notebooks",
//		cellar.WithLogger(logger),
//	)
//
//	// Save a notebook
//	err = svc.SaveNotebook(ctx, "analysis.ipynb", nb)
package cellar

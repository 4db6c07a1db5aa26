package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/cellar/pkg/core"
	"github.com/aretw0/cellar/pkg/percent"
)

// Serializer defines how to read and write a specific notebook file format.
type Serializer interface {
	// Parse reads from r and returns a Notebook.
	Parse(r io.Reader) (core.Notebook, error)
	// Serialize converts the Notebook to bytes.
	Serialize(nb core.Notebook) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers: the ipynb
// container and the py-percent script. version is assumed for scripts that
// carry no metadata header.
func DefaultSerializers(version string) map[string]Serializer {
	return map[string]Serializer{
		".ipynb": NewIpynbSerializer(),
		".py":    NewPercentSerializer(version),
	}
}

// --- Ipynb Serializer ---

// IpynbSerializer handles the JSON notebook container format. All container
// decoding lives here; the core only ever sees the generic key-value
// representation.
type IpynbSerializer struct {
	// Logger reports cells dropped during structural loading.
	Logger *slog.Logger
}

// NewIpynbSerializer creates a serializer for .ipynb containers.
func NewIpynbSerializer() *IpynbSerializer {
	return &IpynbSerializer{}
}

func (s *IpynbSerializer) Parse(r io.Reader) (core.Notebook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Notebook{}, err
	}

	var raw core.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.Notebook{}, fmt.Errorf("invalid ipynb json: %w", err)
	}

	return core.Loader{Logger: s.Logger}.Load(raw)
}

// Serialize renders the container JSON the way Jupyter writes it: keys
// sorted, single-space indent, no HTML escaping, trailing newline. A
// notebook written here re-reads and re-writes byte-identical.
func (s *IpynbSerializer) Serialize(nb core.Notebook) ([]byte, error) {
	raw, err := core.ToRaw(nb)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(raw); err != nil {
		return nil, fmt.Errorf("failed to encode ipynb json: %w", err)
	}
	return buf.Bytes(), nil
}

// --- Percent Serializer ---

// PercentSerializer adapts the py-percent codec to the Serializer interface.
type PercentSerializer struct {
	// Version is assumed when parsing scripts without a metadata header.
	Version string
	// Header controls whether serialization emits the commented YAML
	// metadata block. Without it the version cannot survive a round trip
	// through the script form.
	Header bool
}

// NewPercentSerializer creates a serializer for .py percent scripts.
func NewPercentSerializer(version string) *PercentSerializer {
	return &PercentSerializer{Version: version}
}

func (s *PercentSerializer) Parse(r io.Reader) (core.Notebook, error) {
	return percent.NewParser(s.Version).Parse(r)
}

func (s *PercentSerializer) Serialize(nb core.Notebook) ([]byte, error) {
	var opts []percent.Option
	if s.Header {
		opts = append(opts, percent.WithHeader())
	}
	return percent.Serialize(nb, opts...)
}

package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/deeptime/pkg/cache"
	"github.com/matzehuels/deeptime/pkg/errors"
)

// Format is a dataset encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

//go:embed builtin.toml
var builtinTOML []byte

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unrecognized dataset extension %q (want .toml, .yaml or .json)", filepath.Ext(path))
}

// Load reads and decodes a dataset file. The encoding follows the file
// extension.
func Load(path string) (Raw, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Raw{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Raw{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return Raw{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open dataset %s", path)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode reads a dataset in the given encoding.
func Decode(r io.Reader, format Format) (Raw, error) {
	var raw Raw
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&raw)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&raw)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&raw)
	default:
		return Raw{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	if err != nil && err != io.EOF {
		return Raw{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode %s dataset", format)
	}
	return raw, nil
}

// Builtin returns the embedded reference dataset: the ICS eons, eras and
// periods, the major groups of life and the key events of Earth history.
func Builtin() Raw {
	raw, err := Decode(bytes.NewReader(builtinTOML), FormatTOML)
	if err != nil {
		panic("dataset: embedded dataset is invalid: " + err.Error())
	}
	return raw
}

// LoadPrepared loads path, or the builtin dataset when path is empty, and
// prepares it.
func LoadPrepared(path string) (*Prepared, error) {
	raw := Builtin()
	if path != "" {
		var err error
		if raw, err = Load(path); err != nil {
			return nil, err
		}
	}
	return Prepare(raw)
}

// Hash returns a content hash of the prepared dataset, used in cache keys.
func Hash(p *Prepared) string {
	data, _ := json.Marshal(p)
	return cache.Hash(data)
}

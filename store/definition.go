package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

//go:embed data/knowledge_base.json
var builtinKB []byte

// DecodeDefinition reads a JSON graph definition. Unknown fields are
// rejected so authoring typos surface at load time instead of silently
// dropping data.
func DecodeDefinition(r io.Reader) (Definition, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return def, nil
}

// BuiltinDefinition returns the embedded default knowledge base as a raw
// definition, for tooling that re-encodes it into another format.
func BuiltinDefinition() (Definition, error) {
	def, err := DecodeDefinition(bytes.NewReader(builtinKB))
	if err != nil {
		return Definition{}, fmt.Errorf("decoding builtin knowledge base: %w", err)
	}
	return def, nil
}

// Builtin returns a store built from the embedded default knowledge base.
func Builtin() (*Store, error) {
	def, err := DecodeDefinition(bytes.NewReader(builtinKB))
	if err != nil {
		return nil, fmt.Errorf("decoding builtin knowledge base: %w", err)
	}
	return New(def)
}

// Load builds a store from a graph definition file, dispatching on the file
// extension: .json, .xlsx, or a SQLite database (.db/.sqlite/.sqlite3).
func Load(path string) (*Store, error) {
	var (
		def Definition
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, fmt.Errorf("opening graph definition: %w", ferr)
		}
		def, err = DecodeDefinition(f)
		f.Close()
	case ".xlsx":
		def, err = LoadXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		def, err = LoadSQLite(path)
	default:
		return nil, fmt.Errorf("%w: unsupported graph definition format %q", ErrInvalidDefinition, ext)
	}
	if err != nil {
		return nil, err
	}
	return New(def)
}

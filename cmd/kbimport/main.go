// Command kbimport converts a knowledge-graph definition between formats
// and validates it. Typical use is packing a curated JSON or spreadsheet
// definition into the sqlite database the server loads at startup.
//
//	kbimport -in graph.xlsx -out graph.db
//	kbimport -in graph.json -check
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/procheck/medintel/store"
)

func main() {
	in := flag.String("in", "", "Input definition (.json, .xlsx, .db/.sqlite); empty uses the built-in graph")
	out := flag.String("out", "", "Output sqlite database path")
	check := flag.Bool("check", false, "Validate only, write nothing")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *out == "" && !*check {
		fmt.Fprintln(os.Stderr, "usage: kbimport -in <definition> (-out <db path> | -check)")
		os.Exit(2)
	}

	def, err := readDefinition(*in)
	if err != nil {
		slog.Error("reading definition", "path", *in, "error", err)
		os.Exit(1)
	}

	// Building the store runs full structural validation.
	s, err := store.New(def)
	if err != nil {
		slog.Error("invalid definition", "path", *in, "error", err)
		os.Exit(1)
	}
	slog.Info("definition valid",
		"concepts", s.Len(),
		"relationships", len(def.Relationships),
		"terms", len(s.Terms()),
	)
	if *check {
		return
	}

	if err := store.SaveSQLite(*out, def); err != nil {
		slog.Error("writing database", "path", *out, "error", err)
		os.Exit(1)
	}
	slog.Info("database written", "path", *out)
}

func readDefinition(path string) (store.Definition, error) {
	if path == "" {
		return store.BuiltinDefinition()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return store.Definition{}, err
		}
		defer f.Close()
		return store.DecodeDefinition(f)
	case ".xlsx":
		return store.LoadXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		return store.LoadSQLite(path)
	}
	return store.Definition{}, fmt.Errorf("unsupported definition format %q", filepath.Ext(path))
}

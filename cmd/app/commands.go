package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/partitura/internal/index"
	"github.com/starford/partitura/internal/midi"
	"github.com/starford/partitura/internal/models"
	"github.com/starford/partitura/internal/musicxml"
)

var errNoFile = errors.New("missing <file> argument")

type importReport struct {
	models.ScoreSummary
	Diagnostics []models.Diagnostic `json:"diagnostics"`
}

func importFile(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errNoFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return writeReport(cmd.Root().Writer, path, data)
}

// writeReport prints the summary as indented JSON. A fatal import still
// prints its report and then returns the import error.
func writeReport(w io.Writer, path string, data []byte) error {
	s, diags, importErr := musicxml.New().ImportBytes(filepath.Base(path), data)
	row, rows := index.Summarize(filepath.ToSlash(path), data, s, diags, importErr)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(importReport{ScoreSummary: row, Diagnostics: rows}); err != nil {
		return err
	}
	if importErr != nil {
		return fmt.Errorf("import %s: %w", path, importErr)
	}
	return nil
}

func renderMIDI(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errNoFile
	}
	out := cmd.String("output")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".mid"
	}
	opts := midi.DefaultOptions()
	if t := cmd.Int("ticks"); t > 0 && t <= 32767 {
		opts.TicksPerQuarter = uint16(t)
	}
	opts.Tempo = cmd.Float("tempo")
	return renderFile(path, out, opts)
}

func renderFile(in, out string, opts midi.Options) error {
	s, _, err := musicxml.Import(in)
	if err != nil {
		return fmt.Errorf("import %s: %w", in, err)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := midi.Write(f, s, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

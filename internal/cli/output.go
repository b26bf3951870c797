package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/deeptime/pkg/pipeline"
)

// defaultOutputBase is the file stem used when no output is given.
const defaultOutputBase = appName

// knownExts lists extensions stripped from -o when several formats are written.
var knownExts = map[string]bool{
	pipeline.FormatSVG:  true,
	pipeline.FormatPNG:  true,
	pipeline.FormatPDF:  true,
	pipeline.FormatJSON: true,
	pipeline.FormatDOT:  true,
}

// basePath derives the output stem from -o. A known format extension is
// stripped so "out.svg" with svg and png yields out.svg and out.png.
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	ext := filepath.Ext(output)
	if knownExts[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its file. A single format written to an
// explicit -o keeps that path verbatim; "-" selects stdout.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeArtifacts writes each rendered format and prints its path.
func writeArtifacts(p printer, artifacts map[string][]byte, formats []string, output string) error {
	paths := outputPaths(output, formats)
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := paths[f]
		if err := writeOutput(path, data); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
		if path != "-" {
			p.file(path)
		}
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or stdout for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

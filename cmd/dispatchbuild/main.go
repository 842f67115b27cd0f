// Command dispatchbuild compiles a scheme file into the dispatch table and
// its companion artifacts: scheme.csv (the table), scheme.b64 (the table as a
// base64 embed payload), and version.json (build time and row count).
//
// Usage:
//
//	go run ./cmd/dispatchbuild -scheme data/scheme.txt -out-dir .
//
// Exit status is 1 when the scheme file is missing and 2 when it compiles to
// no rows.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
)

const (
	exitMissingScheme = 1
	exitNoRows        = 2
)

func main() {
	schemePath := flag.String("scheme", filepath.Join("data", "scheme.txt"), "path to the scheme text file")
	outDir := flag.String("out-dir", ".", "directory for scheme.csv, scheme.b64 and version.json")
	flag.Parse()

	os.Exit(run(*schemePath, *outDir))
}

func run(schemePath, outDir string) int {
	text, err := os.ReadFile(schemePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("%s not found. Add a scheme file and rebuild.", schemePath)
		} else {
			log.Printf("read scheme: %v", err)
		}
		return exitMissingScheme
	}

	scheme, err := domain.CompileScheme(filepath.Base(schemePath), string(text))
	if err != nil {
		log.Printf("no rows parsed, check input format: %v", err)
		return exitNoRows
	}

	if err := writeArtifacts(outDir, scheme); err != nil {
		log.Printf("write artifacts: %v", err)
		return 1
	}

	log.Printf("compiled %d rows from %s", scheme.Manifest.Rows, schemePath)
	log.Printf("version.json written: built=%s rows=%d", scheme.Manifest.Built.Format("2006-01-02T15:04:05.000Z"), scheme.Manifest.Rows)
	return 0
}

func writeArtifacts(outDir string, scheme domain.CompiledScheme) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	table, err := domain.EncodeTable(scheme.Records)
	if err != nil {
		return err
	}
	payload, err := domain.EncodeTablePayload(scheme.Records)
	if err != nil {
		return err
	}
	manifest, err := domain.MarshalManifest(scheme.Manifest)
	if err != nil {
		return err
	}

	files := []struct {
		name string
		data []byte
	}{
		{"scheme.csv", table},
		{"scheme.b64", []byte(payload)},
		{"version.json", manifest},
	}
	for _, f := range files {
		path := filepath.Join(outDir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

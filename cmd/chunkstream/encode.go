package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/eolian-audio/chunkstream/chunk"
	"github.com/eolian-audio/chunkstream/wavsrc"
)

// runEncode drives a chunk.Transcoder over the PCM data at inputPath,
// writing chunk 0000.opus, 0001.opus, ... into outDir. It returns the
// number of chunks written.
func runEncode(cfg envConfig, inputPath, outDir string, logger zerolog.Logger) (int, error) {
	settings := cfg.settings()

	f, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("chunkstream: opening input: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("chunkstream: creating output directory: %w", err)
	}

	src := wavsrc.New(f, settings.Channels)
	tr, err := chunk.New(settings, src.Read, 0, logger)
	if err != nil {
		return 0, fmt.Errorf("chunkstream: constructing transcoder: %w", err)
	}

	count := 0
	for tr.HasNext() {
		path := filepath.Join(outDir, fmt.Sprintf("%04d.opus", count))
		out, err := os.Create(path)
		if err != nil {
			return count, fmt.Errorf("chunkstream: creating %s: %w", path, err)
		}

		ok, err := tr.Transcode(out)
		closeErr := out.Close()
		if err != nil {
			return count, fmt.Errorf("chunkstream: transcoding chunk %d: %w", count, err)
		}
		if closeErr != nil {
			return count, fmt.Errorf("chunkstream: closing %s: %w", path, closeErr)
		}
		if !ok {
			os.Remove(path)
			break
		}
		count++
	}

	return count, nil
}

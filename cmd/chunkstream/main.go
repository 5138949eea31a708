// Command chunkstream is an illustrative outer driver: it reads a raw
// interleaved float32 PCM file, feeds it through a chunk.Transcoder, and
// writes each produced chunk as a numbered .opus file. It demonstrates the
// pull-callback/sink contract the core packages expect; naming and writing
// output files is explicitly out of scope for the core itself.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chunkstream",
	Short: "Chunked gap-compensated Opus/Ogg transcoder",
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Transcode a raw float32 PCM file into a sequence of chunked .opus files",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		outDir, _ := cmd.Flags().GetString("out")
		if input == "" {
			return fmt.Errorf("--input is required")
		}
		if outDir == "" {
			return fmt.Errorf("--out is required")
		}

		envCfg, err := loadEnvConfig()
		if err != nil {
			return fmt.Errorf("chunkstream: loading config: %w", err)
		}

		logger := newLogger(envCfg.LogLevel)
		logger.Info().
			Str("input", input).
			Str("out", outDir).
			Int("rate", envCfg.Rate).
			Int("channels", envCfg.Channels).
			Msg("starting transcode")

		n, err := runEncode(envCfg, input, outDir, logger)
		if err != nil {
			logger.Error().Err(err).Msg("transcode failed")
			return err
		}

		logger.Info().Int("chunks", n).Msg("transcode complete")
		return nil
	},
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

func init() {
	encodeCmd.Flags().String("input", "", "path to a raw interleaved float32 PCM file")
	encodeCmd.Flags().String("out", "", "output directory for numbered .opus chunk files")
	rootCmd.AddCommand(encodeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

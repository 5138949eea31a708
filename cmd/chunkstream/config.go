package main

import (
	"context"

	"github.com/sethvargo/go-envconfig"

	"github.com/eolian-audio/chunkstream/chunk"
)

// envConfig carries the outer-driver settings go-envconfig loads from the
// environment: overrides for chunk.Settings plus the log level (I/O paths
// come from the encode command's flags). The core
// chunk/gapless/oggmux/lpc packages never read the environment themselves.
type envConfig struct {
	Rate     int     `env:"CHUNKSTREAM_RATE, default=48000"`
	Channels int     `env:"CHUNKSTREAM_CHANNELS, default=2"`
	Bitrate  int     `env:"CHUNKSTREAM_BITRATE, default=256000"`
	LengthS  float64 `env:"CHUNKSTREAM_LENGTH_S, default=5.0"`
	OverlapS float64 `env:"CHUNKSTREAM_OVERLAP_S, default=0.001"`

	LogLevel string `env:"CHUNKSTREAM_LOG_LEVEL, default=info"`
}

func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return envConfig{}, err
	}
	return cfg, nil
}

func (c envConfig) settings() chunk.Settings {
	return chunk.Settings{
		Rate:     c.Rate,
		Channels: c.Channels,
		Bitrate:  c.Bitrate,
		LengthS:  c.LengthS,
		OverlapS: c.OverlapS,
	}
}

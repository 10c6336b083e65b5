package config

const (
	defaultLogDir         = "~/.local/share/takeslice/logs"
	defaultSessionsSubdir = "sessions"
	defaultVideoSubdir    = "video"
	defaultOutputSubdir   = "takes"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultThreadsPerJob  = 1
	defaultVideoCodec     = "libx264"
	defaultSyncStrategy   = "interactive"
	defaultCacheFile      = ".takeslice-offsets.json"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	// StrategyInteractive asks the operator for each uncached offset.
	StrategyInteractive = "interactive"
	// StrategyCorrelation selects audio cross-correlation, which is not implemented.
	StrategyCorrelation = "correlation"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			ThreadsPerJob: defaultThreadsPerJob,
			VideoCodec:    defaultVideoCodec,
		},
		Sync: Sync{
			Strategy:  defaultSyncStrategy,
			CacheFile: defaultCacheFile,
			Probe:     true,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

const (
	defaultDataDir             = "~/.local/share/slidecast"
	defaultLogDir              = "~/.local/share/slidecast/logs"
	defaultBBDownBinary        = "BBDown"
	defaultYtDlpBinary         = "yt-dlp"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultSimilarityThreshold = 0.95
	defaultMinIntervalSeconds  = 2.0
	defaultSkipFirstSeconds    = 0.0
	defaultScanFPS             = 1.0
	defaultImageFormat         = "jpg"
	defaultImageQuality        = 95
	defaultFillMode            = true
	defaultWorkers             = 2
	defaultKeepDownloads       = true
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Tools: Tools{
			BBDown:  defaultBBDownBinary,
			YtDlp:   defaultYtDlpBinary,
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Extraction: Extraction{
			SimilarityThreshold: defaultSimilarityThreshold,
			MinIntervalSeconds:  defaultMinIntervalSeconds,
			SkipFirstSeconds:    defaultSkipFirstSeconds,
			ScanFPS:             defaultScanFPS,
			ImageFormat:         defaultImageFormat,
			ImageQuality:        defaultImageQuality,
			FillMode:            defaultFillMode,
		},
		Workflow: Workflow{
			Workers:       defaultWorkers,
			KeepDownloads: defaultKeepDownloads,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

package config

const (
	defaultInboxDir       = "~/.local/share/slidecast/inbox"
	defaultOutputDir      = "~/.local/share/slidecast/outputs"
	defaultWorkDir        = "~/.local/share/slidecast/work"
	defaultLogDir         = "~/.local/share/slidecast/logs"
	defaultLibreOffice    = "libreoffice"
	defaultPDFToPPM       = "pdftoppm"
	defaultMagick         = "magick"
	defaultFFmpeg         = "ffmpeg"
	defaultFFprobe        = "ffprobe"
	defaultConvertTimeout = 180
	defaultRenderTimeout  = 300
	defaultConcatTimeout  = 600
	defaultProbeTimeout   = 30
	defaultVideoWidth     = 1920
	defaultVideoHeight    = 1080
	defaultVideoDPI       = 200
	defaultAudioBitrate   = "192k"
	defaultStatusTimeout  = 10
	defaultNtfyTimeout    = 10
	defaultPollInterval   = 5
	defaultSettleSeconds  = 2
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:  defaultInboxDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Tools: Tools{
			LibreOffice:    defaultLibreOffice,
			PDFToPPM:       defaultPDFToPPM,
			Magick:         defaultMagick,
			FFmpeg:         defaultFFmpeg,
			FFprobe:        defaultFFprobe,
			ConvertTimeout: defaultConvertTimeout,
			RenderTimeout:  defaultRenderTimeout,
			ConcatTimeout:  defaultConcatTimeout,
			ProbeTimeout:   defaultProbeTimeout,
		},
		Video: Video{
			Width:        defaultVideoWidth,
			Height:       defaultVideoHeight,
			DPI:          defaultVideoDPI,
			AudioBitrate: defaultAudioBitrate,
		},
		Status: Status{
			RequestTimeout: defaultStatusTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultPollInterval,
			SettleSeconds:     defaultSettleSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

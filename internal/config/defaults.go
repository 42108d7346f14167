package config

const (
	defaultArchiveRoot      = "~/archive"
	defaultStagingDir       = "~/.local/share/sitevault/staging"
	defaultDataDir          = "~/.local/share/sitevault"
	defaultLogDir           = "~/.local/share/sitevault/logs"
	defaultExtractorBinary  = "exiftool"
	defaultExtractorTimeout = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// maxDefaultWorkers caps the worker pool when sizing from CPU count.
const maxDefaultWorkers = 8

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveRoot: defaultArchiveRoot,
			StagingDir:  defaultStagingDir,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
		},
		Ingest: Ingest{
			Workers:            0, // sized from CPU count during normalize
			Hardlink:           true,
			ImageExtensions:    []string{"jpg", "jpeg", "png", "tif", "tiff", "heic", "dng", "cr2", "nef", "arw"},
			VideoExtensions:    []string{"mp4", "mov", "avi", "mkv", "mts"},
			DocumentExtensions: []string{"pdf", "txt", "doc", "docx", "csv"},
		},
		Extractor: Extractor{
			Binary:         defaultExtractorBinary,
			TimeoutSeconds: defaultExtractorTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

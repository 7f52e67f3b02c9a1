package config

import "time"

const (
	defaultLogFile                = "library-tracker.log"
	defaultLogLevel               = "info"
	defaultLogFileMaxSize         = 20
	defaultLogFileMaxBackups      = 3
	defaultLogFileMaxAge          = 28
	defaultLogCompress            = false
	defaultPort                   = 8080
	defaultHost                   = "0.0.0.0"
	defaultData                   = "/var/opt/library-tracker"
	defaultDSNFile                = "library.db"
	defaultUploadDir              = "uploads/covers"
	defaultThumbDir               = "thumbs/256"
	defaultMaxUploadSize          = 15
	defaultThumbnailMaxSide       = 256
	defaultSessionDuration        = 7 * 24 * time.Hour
	defaultAllowedImageExtensions = "jpg,jpeg,png,webp"
)

// Options uses mapstructure tags because viper decodes through mapstructure.
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size in megabytes of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database file
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory holding the database and the cover files
	Data string `mapstructure:"data"`
	// UploadDir holds the original covers. Relative paths are resolved against Data.
	UploadDir string `mapstructure:"upload_dir"`
	// ThumbDir holds the cover thumbnails. Relative paths are resolved against Data.
	ThumbDir string `mapstructure:"thumb_dir"`
	// MaxUploadSize is the maximum size of a request body, in MiB
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	// AllowedImageExtensions lists the cover formats accepted on upload
	AllowedImageExtensions []string `mapstructure:"allowed_image_extensions"`
	// ThumbnailMaxSide bounds the longest side of generated thumbnails, in pixels
	ThumbnailMaxSide int `mapstructure:"thumbnail_max_side"`
	// SessionSecret signs session cookies. Generated and persisted when empty.
	SessionSecret string `mapstructure:"session_secret"`
	// SessionDuration is how long a login stays valid
	SessionDuration time.Duration `mapstructure:"session_duration"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:                defaultLogFile,
		LogLevel:               defaultLogLevel,
		LogFileMaxSize:         defaultLogFileMaxSize,
		LogFileMaxBackups:      defaultLogFileMaxBackups,
		LogFileMaxAge:          defaultLogFileMaxAge,
		LogCompress:            defaultLogCompress,
		Port:                   defaultPort,
		Host:                   defaultHost,
		Data:                   defaultData,
		UploadDir:              defaultUploadDir,
		ThumbDir:               defaultThumbDir,
		MaxUploadSize:          defaultMaxUploadSize,
		AllowedImageExtensions: splitList(defaultAllowedImageExtensions),
		ThumbnailMaxSide:       defaultThumbnailMaxSide,
		SessionDuration:        defaultSessionDuration,
	}
	return Opts
}

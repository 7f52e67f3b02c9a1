package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "LIBRARY"

var Opts *Options

// ParseFile reads the given config file on top of the defaults. An empty file
// name only applies environment overrides.
func ParseFile(file string) (*Options, error) {
	GetDefaultOptions()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, errors.Wrapf(err, "unable to access config file %s", file)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", file)
		}
	}

	// Slices are decoded in place, so the default list goes through viper
	// and the field starts empty. Otherwise a shorter list keeps the tail of
	// the defaults.
	v.SetDefault("allowed_image_extensions", Opts.AllowedImageExtensions)
	Opts.AllowedImageExtensions = nil

	// Env values arrive as a single comma separated string.
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(Opts, hook); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	return Opts, nil
}

// bindEnv makes AutomaticEnv see keys that are absent from the config file.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"log_file", "log_level", "log_file_max_size", "log_file_max_backups",
		"log_file_max_age", "log_compress", "dsn_uri", "port", "host", "data",
		"upload_dir", "thumb_dir", "max_upload_size", "allowed_image_extensions",
		"thumbnail_max_side", "session_secret", "session_duration",
	} {
		_ = v.BindEnv(key)
	}
}

// Resolve makes the data directory absolute, derives the database and cover
// paths from it and creates the directories.
func (o *Options) Resolve() error {
	dataDir, err := checkDataDir(o.Data)
	if err != nil {
		return err
	}
	o.Data = dataDir

	if o.DSN == "" {
		o.DSN = filepath.Join(o.Data, defaultDSNFile)
	}
	if !filepath.IsAbs(o.UploadDir) {
		o.UploadDir = filepath.Join(o.Data, o.UploadDir)
	}
	if !filepath.IsAbs(o.ThumbDir) {
		o.ThumbDir = filepath.Join(o.Data, o.ThumbDir)
	}
	for _, dir := range []string{o.UploadDir, o.ThumbDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "unable to create directory %s", dir)
		}
	}
	return nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err == nil {
		return dataDir, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}

	err := os.MkdirAll(dataDir, 0755)
	if err == nil {
		return dataDir, nil
	}
	if !errors.Is(err, os.ErrPermission) || dataDir != defaultData {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}

	// Permission denied on the default location, fall back to the user's home.
	currentUser, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "unable to get current user")
	}
	if currentUser.HomeDir == "" {
		return "", errors.New("unable to get home directory")
	}
	homeData := filepath.Join(currentUser.HomeDir, ".library-tracker")
	fmt.Println("Permission denied, using data folder in home directory:", homeData)
	if err := os.MkdirAll(homeData, 0755); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", homeData)
	}
	return homeData, nil
}

// IsAllowedImageExtension reports whether ext (with or without the leading
// dot, any case) is in the configured cover formats. jpeg and jpg are the
// same format.
func (o *Options) IsAllowedImageExtension(ext string) bool {
	ext = normalizeImageExtension(ext)
	if ext == "" {
		return false
	}
	for _, allowed := range o.AllowedImageExtensions {
		if normalizeImageExtension(allowed) == ext {
			return true
		}
	}
	return false
}

func normalizeImageExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}

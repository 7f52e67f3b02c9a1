package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultConfig(t *testing.T) {
	opts := GetDefaultOptions()

	t.Logf(`Config
		Host: %s
		Port: %d
		LogLevel: %s
		Data: %s
		`, opts.Host, opts.Port, opts.LogLevel, opts.Data)

	if opts.Data != defaultData {
		t.Errorf("data not set")
	}
	if opts.MaxUploadSize != 15 {
		t.Errorf("max_upload_size incorrect: %d", opts.MaxUploadSize)
	}
	if opts.ThumbnailMaxSide != 256 {
		t.Errorf("thumbnail_max_side incorrect: %d", opts.ThumbnailMaxSide)
	}
	for _, ext := range []string{"jpg", "jpeg", "png", "webp"} {
		if !opts.IsAllowedImageExtension(ext) {
			t.Errorf("%s should be allowed by default", ext)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	opts, err := ParseFile("config_test.toml")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	t.Logf(`Config
		Host: %s
		Port: %d
		LogLevel: %s
		LogFile: %s
		`, opts.Host, opts.Port, opts.LogLevel, opts.LogFile)
	if opts.Host != "127.0.0.1" {
		t.Errorf("host incorrect")
	}
	if opts.LogFile != "test.log" {
		t.Errorf("log_file incorrect")
	}
	if opts.Port != 2333 {
		t.Errorf("port incorrect")
	}
	if opts.LogLevel != "debug" {
		t.Errorf("log_level incorrect")
	}
	if opts.MaxUploadSize != 5 {
		t.Errorf("max_upload_size incorrect")
	}
	if opts.SessionDuration != 2*time.Hour {
		t.Errorf("session_duration incorrect: %s", opts.SessionDuration)
	}
	if opts.IsAllowedImageExtension("webp") {
		t.Errorf("webp should not be allowed")
	}
	if !opts.IsAllowedImageExtension(".PNG") {
		t.Errorf("png should be allowed")
	}
	if len(opts.AllowedImageExtensions) != 2 {
		t.Errorf("allowed_image_extensions should replace the defaults: %v", opts.AllowedImageExtensions)
	}
}

func TestAllowedImageExtensionsFromEnv(t *testing.T) {
	t.Setenv("LIBRARY_ALLOWED_IMAGE_EXTENSIONS", "png, webp")

	opts, err := ParseFile("")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	if len(opts.AllowedImageExtensions) != 2 {
		t.Fatalf("allowed_image_extensions from env incorrect: %q", opts.AllowedImageExtensions)
	}
	for _, ext := range []string{"png", "webp"} {
		if !opts.IsAllowedImageExtension(ext) {
			t.Errorf("%s should be allowed", ext)
		}
	}
	for _, ext := range []string{"jpg", "jpeg"} {
		if opts.IsAllowedImageExtension(ext) {
			t.Errorf("%s should not be allowed", ext)
		}
	}
}

func TestAllowedImageExtensionsDefault(t *testing.T) {
	opts, err := ParseFile("")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	if len(opts.AllowedImageExtensions) != 4 || !opts.IsAllowedImageExtension("jpeg") {
		t.Errorf("default allowed_image_extensions incorrect: %v", opts.AllowedImageExtensions)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LIBRARY_PORT", "9090")
	t.Setenv("LIBRARY_SESSION_SECRET", "s3cret")

	opts, err := ParseFile("")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	if opts.Port != 9090 {
		t.Errorf("port from env incorrect: %d", opts.Port)
	}
	if opts.SessionSecret != "s3cret" {
		t.Errorf("session_secret from env incorrect")
	}
}

func TestResolveCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	opts := GetDefaultOptions()
	opts.Data = dir
	if err := opts.Resolve(); err != nil {
		t.Fatalf("Error resolving options: %v", err)
	}

	if opts.DSN != filepath.Join(dir, defaultDSNFile) {
		t.Errorf("dsn incorrect: %s", opts.DSN)
	}
	for _, d := range []string{opts.UploadDir, opts.ThumbDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("directory %s was not created", d)
		}
	}
}

// Package config loads the optional config.toml extension-classification
// and display-preference file. Grounded on original_source/src/config.rs's
// Config struct and its load/save order: a config.toml next to the running
// executable takes priority over the platform config directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/pkg/errors"

	"github.com/go-fselect/fselect/internal/errs"
)

const configFileName = "fselect/config.toml"

// Config is the user-editable extension-classification table plus a
// handful of display defaults. Grounded on config.rs's Config struct;
// fields keep the original's is_<category> naming since that is the
// config.toml key a user would already have written.
type Config struct {
	NoColor               *bool    `toml:"no_color"`
	Gitignore             *bool    `toml:"gitignore"`
	Hgignore              *bool    `toml:"hgignore"`
	Dockerignore          *bool    `toml:"dockerignore"`
	IsZipArchive          []string `toml:"is_zip_archive"`
	IsArchive             []string `toml:"is_archive"`
	IsAudio               []string `toml:"is_audio"`
	IsBook                []string `toml:"is_book"`
	IsDoc                 []string `toml:"is_doc"`
	IsImage               []string `toml:"is_image"`
	IsSource              []string `toml:"is_source"`
	IsVideo               []string `toml:"is_video"`
	DefaultFileSizeFormat string   `toml:"default_file_size_format"`
}

func boolPtr(b bool) *bool { return &b }

// Default returns the built-in classification table, used whenever no
// config file is found or the one found cannot be parsed. Grounded
// verbatim on config.rs's Config::default().
func Default() *Config {
	return &Config{
		NoColor:      boolPtr(false),
		Gitignore:    boolPtr(false),
		Hgignore:     boolPtr(false),
		Dockerignore: boolPtr(false),
		IsZipArchive: []string{".zip", ".jar", ".war", ".ear"},
		IsArchive:    []string{".7z", ".bz2", ".bzip2", ".gz", ".gzip", ".lz", ".rar", ".tar", ".xz", ".zip"},
		IsAudio:      []string{".aac", ".aiff", ".amr", ".flac", ".gsm", ".m4a", ".m4b", ".m4p", ".mp3", ".ogg", ".wav", ".wma"},
		IsBook:       []string{".azw3", ".chm", ".djvu", ".epub", ".fb2", ".mobi", ".pdf"},
		IsDoc: []string{
			".accdb", ".doc", ".docm", ".docx", ".dot", ".dotm", ".dotx", ".mdb",
			".odp", ".ods", ".odt", ".pdf", ".potm", ".potx", ".ppt", ".pptm",
			".pptx", ".rtf", ".xlm", ".xls", ".xlsm", ".xlsx", ".xlt", ".xltm",
			".xltx", ".xps",
		},
		IsImage: []string{
			".bmp", ".gif", ".heic", ".jpeg", ".jpg", ".jxl", ".png", ".psb",
			".psd", ".svg", ".tiff", ".webp",
		},
		IsSource: []string{
			".asm", ".bas", ".c", ".cc", ".ceylon", ".clj", ".coffee", ".cpp",
			".cs", ".d", ".dart", ".elm", ".erl", ".go", ".groovy", ".h", ".hh",
			".hpp", ".java", ".jl", ".js", ".jsp", ".kt", ".kts", ".lua", ".nim",
			".pas", ".php", ".pl", ".pm", ".py", ".rb", ".rs", ".scala",
			".swift", ".tcl", ".vala", ".vb",
		},
		IsVideo: []string{
			".3gp", ".avi", ".flv", ".m4p", ".m4v", ".mkv", ".mov", ".mp4",
			".mpeg", ".mpg", ".webm", ".wmv",
		},
		DefaultFileSizeFormat: "",
	}
}

// Load resolves a config file the way the original does: a config.toml
// next to the running executable takes priority; failing that, the
// platform's standard config directory (xdg.ConfigHome, the Go-idiomatic
// equivalent of the original's directories::ProjectDirs) is tried. Missing
// or malformed config is not fatal: an executable-adjacent file that cannot
// be read or decoded is skipped silently, a missing platform file yields
// the built-in defaults with a nil error, and a platform file that exists
// but cannot be read or decoded yields the defaults alongside a
// *errs.ConfigError to warn with.
func Load() (*Config, error) {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.toml")
		if cfg, err := loadFile(candidate); err == nil {
			return cfg, nil
		}
	}

	candidate := filepath.Join(xdg.ConfigHome, configFileName)
	if _, err := os.Stat(candidate); err != nil {
		return Default(), nil
	}

	cfg, err := loadFile(candidate)
	if err != nil {
		return Default(), errs.NewConfigError(candidate, err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config file")
	}
	return cfg, nil
}

package config

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/koustreak/pmysql/internal/errs"
	"go.yaml.in/yaml/v3"
)

// File is the optional YAML tool configuration. Every field mirrors a
// command-line flag; zero values mean "not set".
type File struct {
	Driver         string   `yaml:"driver"`
	User           string   `yaml:"user"`
	Password       string   `yaml:"password"`
	Port           int      `yaml:"port"`
	Socket         string   `yaml:"socket"`
	Database       string   `yaml:"database"`
	All            bool     `yaml:"all"`
	Threads        int      `yaml:"threads"`
	Escape         bool     `yaml:"escape"`
	Compress       bool     `yaml:"compress"`
	ConnectTimeout int      `yaml:"connect_timeout"`
	ReadTimeout    int      `yaml:"read_timeout"`
	MetaDatabase   string   `yaml:"meta_database"`
	Exclude        []string `yaml:"exclude"`
	StatusAddr     string   `yaml:"status_addr"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Filestore struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		UseSSL    bool   `yaml:"use_ssl"`
		Region    string `yaml:"region"`
	} `yaml:"filestore"`
}

// LoadFile reads the YAML configuration at path. A missing file yields an
// empty File unless required is set. Unknown keys are rejected.
func LoadFile(path string, required bool) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &File{}, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "config file not found", err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "could not open config file", err)
	}
	defer f.Close()

	var file File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "could not parse config file "+path, err)
	}
	return &file, nil
}

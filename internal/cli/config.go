package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/tychoish/flow/ers"
)

// Environment variables that provide defaults for command line flags.
const (
	EnvFormat    = "FLOW_FORMAT"
	EnvSeparator = "FLOW_SEPARATOR"
	EnvVerbose   = "FLOW_VERBOSE"
)

// DefaultEnvFile is read, when present, before the process
// environment.
const DefaultEnvFile = ".env"

// Config holds the defaults resolved from the environment. Empty
// fields were not set.
type Config struct {
	Format    string
	Separator string
	// SeparatorSet distinguishes an empty separator from an unset
	// one.
	SeparatorSet bool
	Verbose      bool
}

// LoadConfig resolves defaults from the dotenv file at path and the
// process environment, consulted through lookup. Process variables
// override the file. A missing file is not an error.
func LoadConfig(path string, lookup func(string) (string, bool)) (*Config, error) {
	values := map[string]string{}
	if path != "" {
		file, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, ers.Wrapf(err, "reading %s", path)
		default:
			values = file
		}
	}

	get := func(key string) (string, bool) {
		if lookup != nil {
			if val, ok := lookup(key); ok {
				return val, true
			}
		}
		val, ok := values[key]
		return val, ok
	}

	conf := &Config{}
	conf.Format, _ = get(EnvFormat)
	conf.Separator, conf.SeparatorSet = get(EnvSeparator)

	if raw, ok := get(EnvVerbose); ok && raw != "" {
		verbose, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s=%q: %w", EnvVerbose, raw, ers.ErrInvalidInput)
		}
		conf.Verbose = verbose
	}

	return conf, nil
}

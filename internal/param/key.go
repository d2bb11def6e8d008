package param

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmorgan81/emotegen/internal/log"
)

const (
	DefaultKeyFile = "Write API key in here.txt"
	KeyEnv         = "RD_API_KEY"
)

var ErrNoAPIKey = fmt.Errorf("No API key found. Put it in '%s' or set %s.", DefaultKeyFile, KeyEnv)

// KeySources lists where the API key may come from, in order of preference.
// Fetcher and Param are only consulted when both the file and the
// environment come up empty.
type KeySources struct {
	File    string
	Env     string
	Param   string
	Fetcher func() (Fetcher, error)
}

func LoadAPIKey(ctx context.Context, src KeySources) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("api key")

	if src.File != "" {
		data, err := os.ReadFile(src.File)
		switch {
		case err == nil:
			if key := strings.TrimSpace(string(data)); key != "" {
				log.Debug("using key file", "file", src.File)
				return key, nil
			}
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("reading key file %q: %w", src.File, err)
		}
	}

	if src.Env != "" {
		if key := strings.TrimSpace(os.Getenv(src.Env)); key != "" {
			log.Debug("using environment", "env", src.Env)
			return key, nil
		}
	}

	if src.Param != "" && src.Fetcher != nil {
		fetcher, err := src.Fetcher()
		if err != nil {
			return "", err
		}
		key, err := fetcher.Fetch(ctx, src.Param)
		if err != nil {
			return "", fmt.Errorf("fetching key parameter %q: %w", src.Param, err)
		}
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

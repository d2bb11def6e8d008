package param

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type staticFetcher struct {
	value string
	err   error
	calls int
}

func (f *staticFetcher) Fetch(context.Context, string) (string, error) {
	f.calls++
	return f.value, f.err
}

func writeKeyFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultKeyFile)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAPIKey(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name    string
		file    string
		env     string
		param   string
		fetched string
		want    string
		wantErr error
	}{
		{name: "file wins", file: writeKeyFile(t, "  from-file\n"), env: "from-env", want: "from-file"},
		{name: "empty file falls back to env", file: writeKeyFile(t, "\n\t "), env: "from-env", want: "from-env"},
		{name: "missing file falls back to env", file: missing, env: "from-env", want: "from-env"},
		{name: "parameter store last", file: missing, param: "/emotegen/key", fetched: "from-ssm", want: "from-ssm"},
		{name: "empty parameter", file: missing, param: "/emotegen/key", fetched: " ", wantErr: ErrNoAPIKey},
		{name: "nothing", file: missing, wantErr: ErrNoAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(KeyEnv, tt.env)
			fetcher := &staticFetcher{value: tt.fetched}

			got, err := LoadAPIKey(context.Background(), KeySources{
				File:    tt.file,
				Env:     KeyEnv,
				Param:   tt.param,
				Fetcher: func() (Fetcher, error) { return fetcher, nil },
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LoadAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadAPIKeySkipsFetcherWhenFound(t *testing.T) {
	t.Setenv(KeyEnv, "from-env")
	fetcher := &staticFetcher{value: "from-ssm"}

	_, err := LoadAPIKey(context.Background(), KeySources{
		Env:     KeyEnv,
		Param:   "/emotegen/key",
		Fetcher: func() (Fetcher, error) { return fetcher, nil },
	})
	if err != nil {
		t.Fatalf("LoadAPIKey failed: %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("expected no parameter store calls, got %d", fetcher.calls)
	}
}

func TestLoadAPIKeyFetchError(t *testing.T) {
	t.Setenv(KeyEnv, "")
	fetcher := &staticFetcher{err: errors.New("access denied")}

	_, err := LoadAPIKey(context.Background(), KeySources{
		Env:     KeyEnv,
		Param:   "/emotegen/key",
		Fetcher: func() (Fetcher, error) { return fetcher, nil },
	})
	if err == nil || errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

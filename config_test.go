package bazaar

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/always-cache/bazaar/registry"
	"github.com/always-cache/bazaar/store"
)

func TestLoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bazaar.yml")
	err := os.WriteFile(filename, []byte(`
port: 8080
database: memory
defaultCacheCapacity: 50
caches:
  shop: 20
  owner_ids_by_api_key: 500
`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.Database)
	assert.Equal(t, 20, cfg.Caches[registry.Shop])
	require.NoError(t, cfg.Validate())

	cfg = cfg.WithDefaults()
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, int64(DefaultBodyLimit), cfg.BodyLimit)
	assert.NotNil(t, cfg.Logger)

	rc := cfg.RegistryConfig()
	assert.Equal(t, 50, rc.DefaultCapacity)
	assert.NotNil(t, rc.ProblemMapper)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	filename := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(filename, []byte("port: [1"), 0644))
	_, err = LoadConfig(filename)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.WithDefaults().Validate())
	assert.Error(t, Config{Port: 70000}.Validate())
	assert.Error(t, Config{BodyLimit: -1}.Validate())
	assert.Error(t, Config{Caches: map[string]int{"shops": 10}}.Validate())
	assert.Error(t, Config{Caches: map[string]int{registry.Shop: 0}}.Validate())
}

func TestRegistryProblemMapperLogsUnhandledErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	toProblem := Config{Logger: &logger}.RegistryConfig().ProblemMapper

	p := toProblem(fmt.Errorf("get shop: %w", store.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Zero(t, buf.Len())

	p = toProblem(errors.New("disk I/O error"))
	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Contains(t, buf.String(), "disk I/O error")
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/offer-scraper/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "portal", cfg.Provider)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "https://www.otomoto.pl/", cfg.OtomotoBaseURL)
	assert.False(t, cfg.SaveDocuments)

	for _, p := range domain.Portals {
		assert.NotEmpty(t, cfg.BaseURL(p), p.Key())
	}
	assert.Equal(t, "https://www.autoscout24.pl/", cfg.BaseURL(domain.AutoScout24))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SAVE_DOCUMENTS", "true")
	t.Setenv("MAX_RETRIES", "3")
	t.Setenv("PROXIES", "http://a:1, ,http://b:2")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.SaveDocuments)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, []string{"http://a:1", "http://b:2"}, cfg.ProxyList())
	assert.Empty(t, cfg.UserAgentList())
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	data := "otomoto:\n  ford focus mk3: ford/focus/mk3-2010\nallegro:\n  passat b8: passat-b8-2014-250759\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cats, err := LoadCategories(path)
	require.NoError(t, err)

	slug, err := cats.Resolve(domain.Otomoto, "Ford Focus MK3")
	require.NoError(t, err)
	assert.Equal(t, "ford/focus/mk3-2010", slug)

	slug, err = cats.Resolve(domain.Allegro, "passat b8")
	require.NoError(t, err)
	assert.Equal(t, "passat-b8-2014-250759", slug)

	_, err = cats.Resolve(domain.Olx, "passat b8")
	assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
}

func TestLoadCategoriesMissingFile(t *testing.T) {
	_, err := LoadCategories(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

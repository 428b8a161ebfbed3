package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/user/offer-scraper/internal/domain"
)

// Categories maps a human-readable vehicle category to each portal's own slug.
type Categories map[domain.Portal]map[string]string

// LoadCategories reads a category mapping file, one top-level section per portal key.
func LoadCategories(path string) (Categories, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading categories file %s: %w", path, err)
	}

	cats := make(Categories)
	for _, p := range domain.Portals {
		if m := v.GetStringMapString(p.Key()); len(m) > 0 {
			cats[p] = m
		}
	}
	return cats, nil
}

// Resolve returns the portal-specific slug for a human-readable category.
func (c Categories) Resolve(p domain.Portal, category string) (string, error) {
	slug, ok := c[p][strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return "", fmt.Errorf("%w: %q for %s", domain.ErrUnknownCategory, category, p)
	}
	return slug, nil
}

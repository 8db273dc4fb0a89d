package profile

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/user/speedsale-scraper/internal/entity"
)

var validate = validator.New()

// Validate checks a profile's required fields and enum values.
func Validate(p *entity.RetailerProfile) error {
	if p == nil {
		return fmt.Errorf("retailer profile is nil")
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("retailer %q: invalid profile: %w", p.ID, err)
	}
	return nil
}

// LoadFile reads retailer profiles from a YAML, JSON or TOML file under the
// top-level "retailers" key.
func LoadFile(path string) ([]*entity.RetailerProfile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}

	var profiles []*entity.RetailerProfile
	if err := v.UnmarshalKey("retailers", &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles file %s: %w", path, err)
	}
	for _, p := range profiles {
		if err := Validate(p); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// LoadRegistry builds the default registry and overlays profiles from path
// when it is set. File profiles replace built-ins with the same id.
func LoadRegistry(path string) (*Registry, error) {
	reg := Default()
	if path == "" {
		return reg, nil
	}

	profiles, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	slog.Info("Loaded retailer profiles", "path", path, "count", len(profiles))
	return reg, nil
}

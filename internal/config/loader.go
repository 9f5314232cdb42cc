package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BOOKPOP_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BOOKPOP_CONFIG is set, or path when not empty
//  3. env (prefix BOOKPOP_)
func Load(_ context.Context, path ...string) (*Config, error) {
	// Start with defaults
	base := New()
	k := koanf.New(".")

	cfgPath := os.Getenv(EnvPrefix + "CONFIG")
	if len(path) > 0 && path[0] != "" {
		cfgPath = path[0]
	}
	if cfgPath != "" {
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, cfgPath, err)
		}
	}

	// Environment variables: BOOKPOP_ADDR, BOOKPOP_M_MIN, ...
	// Map env keys like BOOKPOP_M_MIN -> m_min (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	// The config path itself is not a Config field.
	k.Delete("config")

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field limits.
func (c *Config) Validate() error {
	// Basic validation
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

// describe renders one failed constraint using the koanf key of the field.
func describe(fe validator.FieldError) string {
	key := keyOf(fe.StructField())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, strings.ToLower(strings.Replace(fe.Param(), " ", "=", 1)))
	case "gtefield", "ltefield":
		return fmt.Sprintf("%s=%v violates %s %s", key, fe.Value(), fe.Tag(), keyOf(fe.Param()))
	default:
		return fmt.Sprintf("%s=%v fails %s=%s", key, fe.Value(), fe.Tag(), fe.Param())
	}
}

// keyOf maps a Config field name to its koanf key.
func keyOf(field string) string {
	if f, ok := configFields[field]; ok {
		return f
	}
	return field
}

var configFields = func() map[string]string {
	out := make(map[string]string)
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		out[f.Name] = f.Tag.Get("koanf")
	}
	return out
}()

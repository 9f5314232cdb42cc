package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/bookpop/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MMin, convey.ShouldEqual, 50)
				convey.So(cfg.Source, convey.ShouldEqual, "csv")
				convey.So(cfg.DefaultDisplayLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BOOKPOP_ADDR", ":8080")
			_ = os.Setenv("BOOKPOP_M_MIN", "10")
			_ = os.Setenv("BOOKPOP_TIE_BREAK", "item_id")
			_ = os.Setenv("BOOKPOP_CSV_DELIMITER", ";")
			_ = os.Setenv("BOOKPOP_DEFAULT_DISPLAY_LIMIT", "15")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MMin, convey.ShouldEqual, 10)
				convey.So(cfg.TieBreak, convey.ShouldEqual, "item_id")
				convey.So(cfg.Delimiter(), convey.ShouldEqual, ';')
				convey.So(cfg.DefaultDisplayLimit, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
source: sqlite
sqlite_path: /var/lib/bookpop/books.db
m_min: 25.5
max_display_limit: 40
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set the config file path
			_ = os.Setenv("BOOKPOP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Source, convey.ShouldEqual, "sqlite")
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/var/lib/bookpop/books.db")
				convey.So(cfg.MMin, convey.ShouldEqual, 25.5)
				convey.So(cfg.MaxDisplayLimit, convey.ShouldEqual, 40)
				convey.So(cfg.RatingsPath, convey.ShouldEqual, "data/Ratings.csv") // From defaults
			})
		})

		convey.Convey("When loading config with an explicit path argument", func() {
			tmpFile := createTempConfigFile(`m_min: 5`)
			defer func() { _ = os.Remove(tmpFile) }()
			clearConfigEnvVars()

			cfg, err := config.Load(ctx, tmpFile)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.MMin, convey.ShouldEqual, 5)
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
m_min: 30
tie_break: item_id
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BOOKPOP_CONFIG", tmpFile)
			_ = os.Setenv("BOOKPOP_ADDR", ":8080") // This should override the file
			_ = os.Setenv("BOOKPOP_M_MIN", "0")    // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")        // Overridden by env
				convey.So(cfg.MMin, convey.ShouldEqual, 0)              // Overridden by env
				convey.So(cfg.TieBreak, convey.ShouldEqual, "item_id") // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BOOKPOP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a missing file", func() {
			_ = os.Setenv("BOOKPOP_CONFIG", "/nonexistent/bookpop.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("BOOKPOP_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("BOOKPOP_M_MIN", "plenty")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative m_min", func() {
			_ = os.Setenv("BOOKPOP_M_MIN", "-3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"BOOKPOP_CONFIG",
		"BOOKPOP_ADDR",
		"BOOKPOP_M_MIN",
		"BOOKPOP_TIE_BREAK",
		"BOOKPOP_CSV_DELIMITER",
		"BOOKPOP_DEFAULT_DISPLAY_LIMIT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "bookpop-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

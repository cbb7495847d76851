package logger

import (
	"os"
	"path/filepath"
	"testing"

	"portfolio-stack/shared/config"

	log "github.com/sirupsen/logrus"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{})
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		if err := Init(config.LoggingConfig{Level: "loud"}); err == nil {
			t.Error("expected error for invalid level")
		}
	})

	t.Run("JSONToFile", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "logs", "portfolio.log")
		err := Init(config.LoggingConfig{Level: "debug", Format: "json", File: file, MaxSizeMB: 1, MaxBackups: 1})
		if err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if log.GetLevel() != log.DebugLevel {
			t.Errorf("level = %v, want debug", log.GetLevel())
		}
		if _, ok := log.StandardLogger().Formatter.(*log.JSONFormatter); !ok {
			t.Error("expected JSON formatter")
		}

		log.Info("hello")
		if _, err := os.Stat(file); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})
}

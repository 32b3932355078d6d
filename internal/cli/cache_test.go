package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/changetower/internal/config"
)

func TestCacheLocation(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		store config.StoreConfig
		want  string
	}{
		{"sqlite", config.StoreConfig{Backend: "sqlite", Dir: dir}, filepath.Join(dir, "cache.db")},
		{"file", config.StoreConfig{Backend: "file", Dir: dir}, filepath.Join(dir, "entries")},
		{"redis", config.StoreConfig{Backend: "redis", RedisAddr: "localhost:6379", RedisDB: 2}, "redis localhost:6379 db 2"},
		{"mongo", config.StoreConfig{Backend: "mongo", MongoURI: "mongodb://user:secret@db", MongoDatabase: "changelogs"}, "mongo database changelogs"},
		{"none", config.StoreConfig{Backend: "none"}, "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cacheLocation(&config.Config{Store: tt.store})
			if got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "secret") {
				t.Error("location must not leak credentials")
			}
		})
	}
}

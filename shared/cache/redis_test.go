package cache

import (
	"context"
	"strings"
	"testing"

	"portfolio-stack/shared/config"
)

func TestReelKey(t *testing.T) {
	url1 := "https://www.instagram.com/reel/ABC123/"
	url2 := "https://www.instagram.com/reel/XYZ789/"

	if ReelKey(url1) != ReelKey(url1) {
		t.Error("expected same key for same URL")
	}
	if ReelKey(url1) == ReelKey(url2) {
		t.Error("expected different keys for different URLs")
	}
	if !strings.HasPrefix(ReelKey(url1), "reel:") {
		t.Errorf("key %s missing reel: prefix", ReelKey(url1))
	}
	// 8 hash bytes, hex encoded
	if got := len(ReelKey(url1)); got != len("reel:")+16 {
		t.Errorf("key length = %d", got)
	}
}

func TestNewCacheDisabledWithoutAddr(t *testing.T) {
	c, err := NewCache(context.Background(), &config.RedisConfig{})
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if c != nil {
		t.Error("expected nil cache when no address is configured")
	}
}

func TestNewCacheUnreachable(t *testing.T) {
	// Port 1 is never a Redis server.
	_, err := NewCache(context.Background(), &config.RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Error("expected connection error")
	}
}

package main

import (
	"strings"
	"testing"
)

func TestRun_ConfigErrorIsReturned(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("SPOONACULAR_KEY", "test-key")

	err := run()
	if err == nil {
		t.Fatal("expected an error for missing TELEGRAM_TOKEN")
	}
	if !strings.Contains(err.Error(), "TELEGRAM_TOKEN is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRun_RequiresRedis(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("SPOONACULAR_KEY", "test-key")
	t.Setenv("REDIS_URL", "")

	err := run()
	if err == nil || !strings.Contains(err.Error(), "REDIS_URL is required") {
		t.Errorf("expected REDIS_URL error, got %v", err)
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "Abc123!xyz-long-enough-secret-00!"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SITECMS_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.HomeSlug != "home" {
		t.Errorf("HomeSlug = %q, want %q", cfg.HomeSlug, "home")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true by default")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without SITECMS_REDIS_URL")
	}
	if got := cfg.ServerAddr(); got != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", got, "localhost:8080")
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("SITECMS_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded with empty session secret")
	}
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("SITECMS_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded with short session secret")
	}
	if !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("error %q does not mention minimum length", err)
	}
}

func TestLoadWeakSecret(t *testing.T) {
	t.Setenv("SITECMS_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a known default secret")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   bool
	}{
		{"three classes", "abcDEF123", true},
		{"four classes", "abcDEF123!@#", true},
		{"lowercase only", "abcdefghijklmnop", false},
		{"two classes", "abcdef123456", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasMinimumEntropy(tt.secret); got != tt.want {
				t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
			}
		})
	}
}

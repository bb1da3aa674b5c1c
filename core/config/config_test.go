package config

import "testing"

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := &Config{}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "polling"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeWebhookRequiresEndpoint(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}
}

func TestIsAdmin(t *testing.T) {
	tg := TelegramConfig{AdminIDs: []int64{10, 20}}
	if !tg.IsAdmin(10) || !tg.IsAdmin(20) {
		t.Fatal("listed ids must be admins")
	}
	if tg.IsAdmin(30) {
		t.Fatal("unlisted id must not be admin")
	}
	if (TelegramConfig{}).IsAdmin(0) {
		t.Fatal("empty allow-list grants nobody")
	}
}

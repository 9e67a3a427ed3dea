package config

import (
	"os"
	"testing"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	t.Setenv(key, "8080")
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestLoadReadsScheduleOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "1234")
	t.Setenv("DINGTALK_WEBHOOK", "https://oapi.dingtalk.com/robot/send?access_token=x")
	t.Setenv("CLEAR_HOUR", "0")
	t.Setenv("PUSH_HOUR", "9")
	t.Setenv("PUSH_DAYS", "1, 3,5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.ClearHour == nil || *cfg.ClearHour != 0 {
		t.Fatalf("ClearHour = %v, want 0 (hour 0 is a valid override)", cfg.ClearHour)
	}
	if cfg.PushMinute != nil {
		t.Fatalf("PushMinute should stay unset, got %d", *cfg.PushMinute)
	}

	s := cfg.ResolveSchedule(nil)
	if s.ClearHour != 0 || s.PushHour != 9 || s.PushMinute != DefaultPushMinute {
		t.Fatalf("unexpected schedule: %+v", s)
	}
	if len(s.PushDays) != 3 || s.PushDays[0] != 1 || s.PushDays[2] != 5 {
		t.Fatalf("PushDays = %v, want [1 3 5]", s.PushDays)
	}
}

func TestLoadRejectsOutOfRangeHour(t *testing.T) {
	t.Setenv("PUSH_HOUR", "24")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for PUSH_HOUR=24")
	}
}

func TestResolveScheduleDocumentThenEnv(t *testing.T) {
	clear, push := 6, 20
	doc := &SourceDocument{ClearTime: &clear, PushTime: &push, PushDays: IntList{0, 6}}

	s := (&Config{}).ResolveSchedule(doc)
	if s.ClearHour != 6 || s.PushHour != 20 || len(s.PushDays) != 2 {
		t.Fatalf("document values not applied: %+v", s)
	}

	envPush := 7
	s = (&Config{PushHour: &envPush}).ResolveSchedule(doc)
	if s.PushHour != 7 {
		t.Fatalf("env override should win, got %d", s.PushHour)
	}

	s = (&Config{}).ResolveSchedule(nil)
	if s.ClearHour != DefaultClearHour || s.PushHour != DefaultPushHour || len(s.PushDays) != len(DefaultWeekdays) {
		t.Fatalf("defaults not applied: %+v", s)
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// 默认调度：每天 12 点清空队列；工作日 19:14 推送
const (
	DefaultClearHour   = 12
	DefaultPushHour    = 19
	DefaultPushMinute  = 14
	DefaultCrawlHour   = 8
	DefaultCrawlMinute = 50
)

// DefaultWeekdays 周一到周五（0 表示周日，与 cron 保持一致）
var DefaultWeekdays = []int{1, 2, 3, 4, 5}

type Config struct {
	AppPort string

	SourcesFile string

	DingTalkWebhook string
	DingTalkSecret  string

	// 推送归档，PostgresDSN 为空时不启用
	PostgresDSN string
	RedisAddr   string

	LogFile string

	// 全站 Basic Auth，两者都设置时启用（/health 免认证）
	BasicAuthUser string
	BasicAuthPass string

	// 全局调度覆盖项，nil 表示未设置（优先级高于源文件中的 clear_time / push_time / push_days）
	ClearHour  *int
	PushHour   *int
	PushMinute *int
	PushDays   []int
}

// Schedule 是合并默认值、源文件与环境变量之后的全局调度参数
type Schedule struct {
	ClearHour  int
	PushHour   int
	PushMinute int
	PushDays   []int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "9000"),
		SourcesFile:     getEnv("SOURCES_FILE", "sources.yaml"),
		DingTalkWebhook: getEnv("DINGTALK_WEBHOOK", ""),
		DingTalkSecret:  getEnv("DINGTALK_SECRET", ""),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6380"),
		LogFile:         getEnv("LOG_FILE", ""),
		BasicAuthUser:   getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:   getEnv("APP_BASIC_PASS", ""),
	}

	var err error
	if cfg.ClearHour, err = getEnvInt("CLEAR_HOUR", 0, 23); err != nil {
		return nil, err
	}
	if cfg.PushHour, err = getEnvInt("PUSH_HOUR", 0, 23); err != nil {
		return nil, err
	}
	if cfg.PushMinute, err = getEnvInt("PUSH_MINUTE", 0, 59); err != nil {
		return nil, err
	}
	if v := getEnv("PUSH_DAYS", ""); v != "" {
		days, err := parseIntList(v, 0, 6)
		if err != nil {
			return nil, fmt.Errorf("config: PUSH_DAYS: %w", err)
		}
		cfg.PushDays = days
	}

	log.Printf("config loaded: port=%s sources=%s archive=%t", cfg.AppPort, cfg.SourcesFile, cfg.PostgresDSN != "")
	return cfg, nil
}

// ResolveSchedule 依次应用默认值、源文件和环境变量
func (c *Config) ResolveSchedule(doc *SourceDocument) Schedule {
	s := Schedule{
		ClearHour:  DefaultClearHour,
		PushHour:   DefaultPushHour,
		PushMinute: DefaultPushMinute,
		PushDays:   DefaultWeekdays,
	}
	if doc != nil {
		if doc.ClearTime != nil {
			s.ClearHour = *doc.ClearTime
		}
		if doc.PushTime != nil {
			s.PushHour = *doc.PushTime
		}
		if len(doc.PushDays) > 0 {
			s.PushDays = doc.PushDays
		}
	}
	if c.ClearHour != nil {
		s.ClearHour = *c.ClearHour
	}
	if c.PushHour != nil {
		s.PushHour = *c.PushHour
	}
	if c.PushMinute != nil {
		s.PushMinute = *c.PushMinute
	}
	if len(c.PushDays) > 0 {
		s.PushDays = c.PushDays
	}
	return s
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, min, max int) (*int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", key, err)
	}
	if n < min || n > max {
		return nil, fmt.Errorf("config: %s=%d out of range [%d,%d]", key, n, min, max)
	}
	return &n, nil
}

// parseIntList 解析 "1,2, 3" 形式的列表
func parseIntList(s string, min, max int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if n < min || n > max {
			return nil, fmt.Errorf("%d out of range [%d,%d]", n, min, max)
		}
		out = append(out, n)
	}
	return out, nil
}

// Now returns current time, 方便后续做可测试封装
func Now() time.Time {
	return time.Now()
}

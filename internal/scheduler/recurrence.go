package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/LJTian/NewsPusher/internal/config"
)

// Recurrence 描述任务的触发时刻：小时、分钟、星期（0=周日）。
// Hours / DaysOfWeek 为空表示不限，Minutes 为空表示整点触发一次。
type Recurrence struct {
	Hours      []int
	Minutes    []int
	DaysOfWeek []int
}

// Spec 转成标准 5 段 cron 表达式
func (r Recurrence) Spec() (string, error) {
	minute, err := field(r.Minutes, 0, 59, "0")
	if err != nil {
		return "", fmt.Errorf("minute: %w", err)
	}
	hour, err := field(r.Hours, 0, 23, "*")
	if err != nil {
		return "", fmt.Errorf("hour: %w", err)
	}
	dow, err := field(r.DaysOfWeek, 0, 6, "*")
	if err != nil {
		return "", fmt.Errorf("dayOfWeek: %w", err)
	}
	return fmt.Sprintf("%s %s * * %s", minute, hour, dow), nil
}

func field(vals []int, min, max int, empty string) (string, error) {
	if len(vals) == 0 {
		return empty, nil
	}
	uniq := make(map[int]struct{}, len(vals))
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		if v < min || v > max {
			return "", fmt.Errorf("%d out of range [%d,%d]", v, min, max)
		}
		if _, ok := uniq[v]; ok {
			continue
		}
		uniq[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	parts := make([]string, len(out))
	for i, v := range out {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ","), nil
}

// CrawlRecurrence 采集任务默认工作日 08:50
func CrawlRecurrence(src config.Source) Recurrence {
	r := Recurrence{
		Hours:      []int{config.DefaultCrawlHour},
		Minutes:    []int{config.DefaultCrawlMinute},
		DaysOfWeek: config.DefaultWeekdays,
	}
	if len(src.Hour) > 0 {
		r.Hours = src.Hour
	}
	if len(src.Minute) > 0 {
		r.Minutes = src.Minute
	}
	if len(src.DayOfWeek) > 0 {
		r.DaysOfWeek = src.DayOfWeek
	}
	return r
}

// ClearRecurrence 每天 hour 点整清空队列
func ClearRecurrence(s config.Schedule) Recurrence {
	return Recurrence{Hours: []int{s.ClearHour}, Minutes: []int{0}}
}

func PublishRecurrence(s config.Schedule) Recurrence {
	return Recurrence{
		Hours:      []int{s.PushHour},
		Minutes:    []int{s.PushMinute},
		DaysOfWeek: s.PushDays,
	}
}

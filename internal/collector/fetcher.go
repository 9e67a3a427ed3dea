package collector

import (
	"context"
	"time"
)

// NoImage 表示条目没有配图，推送时用占位符代替
const NoImage = ""

// NewsItem 统一采集后的基础结构，URL 是去重的唯一标识
type NewsItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Image  string `json:"image,omitempty"`
	// 零值表示源站没有提供时间，排序时视为最旧
	PublishedAt time.Time `json:"publishedAt"`
	Published   bool      `json:"published"`
}

func (it NewsItem) HasImage() bool {
	return it.Image != NoImage
}

func (it NewsItem) HasTimestamp() bool {
	return !it.PublishedAt.IsZero()
}

// Fetcher 抽象抓取边界：给定 URL 返回原始响应体
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

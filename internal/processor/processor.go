package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/LJTian/NewsPusher/internal/collector"
)

// 推送消息中标题的最大长度（按 rune）
const maxTitleRunes = 200

// SimpleProcessor 在合并进队列前做基础清洗：去空白、丢弃缺标题/链接的条目、批内按链接去重
type SimpleProcessor struct{}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{}
}

func (p *SimpleProcessor) Process(items []collector.NewsItem) []collector.NewsItem {
	out := make([]collector.NewsItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, it := range items {
		it.URL = strings.TrimSpace(it.URL)
		it.Title = truncateRunes(strings.ToValidUTF8(strings.TrimSpace(it.Title), "\uFFFD"), maxTitleRunes)
		if it.Title == "" || it.URL == "" {
			continue
		}
		if _, ok := seen[it.URL]; ok {
			continue
		}
		seen[it.URL] = struct{}{}

		it.Published = false
		out = append(out, it)
	}

	return out
}

// ItemID 由链接生成稳定 ID，用作归档表主键
func ItemID(url string) string {
	return hashURL(url)
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// truncateRunes 按 rune 截断并追加省略号，避免把中文截成半个字符
func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}

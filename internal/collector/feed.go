package collector

import (
	"bytes"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/LJTian/NewsPusher/internal/config"
)

// FeedExtractor 解析 RSS / Atom，选择器配置对其无效
type FeedExtractor struct {
	parser *gofeed.Parser
}

func NewFeedExtractor() *FeedExtractor {
	return &FeedExtractor{parser: gofeed.NewParser()}
}

func (f *FeedExtractor) Extract(src config.Source, payload []byte) ([]NewsItem, error) {
	feed, err := f.parser.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, &ExtractionError{Source: src.Name, Reason: "parse feed", Err: err}
	}

	results := make([]NewsItem, 0, len(feed.Items))
	skipped := 0
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			skipped++
			continue
		}
		item := NewsItem{
			Title:  title,
			URL:    link,
			Source: src.Label(),
			Image:  feedImage(it),
		}
		switch {
		case it.PublishedParsed != nil:
			item.PublishedAt = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.PublishedAt = *it.UpdatedParsed
		}
		results = append(results, item)
	}
	if skipped > 0 {
		log.Printf("extract %s: skipped %d feed entries without title or link", src.Name, skipped)
	}
	return results, nil
}

func feedImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return NoImage
}

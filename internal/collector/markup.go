package collector

import (
	"bytes"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/LJTian/NewsPusher/internal/config"
)

var (
	bodyPattern = regexp.MustCompile(`(?is)<body[^>]*>(.+?)</body>`)
	// 一行内以非空白字符结尾的连续片段，即一条可见的标题
	titleSegmentPattern = regexp.MustCompile(`[^\n]*\S`)
)

// MarkupExtractor 解析静态站点 HTML。
//
// 一个 list 容器可能同时渲染多行条目：标题文本按行切分，第 i 行与容器内第 i 个链接、
// 第 i 张图片、第 i 个时间元素按位置配对。数量不一致时以链接数量为上限，多出的标题丢弃，
// 缺失的图片和时间使用默认值。
type MarkupExtractor struct{}

func (MarkupExtractor) Extract(src config.Source, payload []byte) ([]NewsItem, error) {
	m := bodyPattern.FindSubmatch(payload)
	if m == nil {
		return nil, extractionErrorf(src.Name, "no <body> in document")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(m[1]))
	if err != nil {
		return nil, &ExtractionError{Source: src.Name, Reason: "parse html", Err: err}
	}

	containers := doc.Find(src.List)
	if containers.Length() == 0 {
		return nil, extractionErrorf(src.Name, "list selector %q matched nothing", src.List)
	}

	base, _ := url.Parse(src.Path)
	results := make([]NewsItem, 0, containers.Length())

	containers.Each(func(k int, box *goquery.Selection) {
		titles := splitTitles(selectionText(box.Find(src.Title)))
		links := box.Find(src.MessageURL)
		if len(titles) != links.Length() {
			log.Printf("extract %s: list[%d] has %d titles and %d links, pairing by position", src.Name, k, len(titles), links.Length())
		}

		var images, times *goquery.Selection
		if src.PicURL != "" {
			images = box.Find(src.PicURL)
		}
		if src.Time != "" {
			times = box.Find(src.Time)
		}

		for i, title := range titles {
			if i >= links.Length() {
				break
			}
			href, _ := links.Eq(i).Attr("href")
			if strings.TrimSpace(href) == "" {
				continue
			}
			item := NewsItem{
				Title:  title,
				URL:    resolveURL(base, href),
				Source: src.Label(),
				Image:  NoImage,
			}
			if images != nil && i < images.Length() {
				if pic := imageSrc(images.Eq(i)); pic != "" {
					item.Image = resolveURL(base, pic)
				}
			}
			if times != nil && i < times.Length() {
				item.PublishedAt = parseTimeText(times.Eq(i).Text())
			}
			results = append(results, item)
		}
	})

	return results, nil
}

// selectionText 多个匹配元素各占一行，避免文本被直接拼接到一起
func selectionText(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, "\n")
}

func splitTitles(text string) []string {
	var out []string
	for _, seg := range titleSegmentPattern.FindAllString(text, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// imageSrc 兼容懒加载图片
func imageSrc(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-original"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

package collector

import (
	"net/url"
	"strings"

	"github.com/LJTian/NewsPusher/internal/config"
)

// Extractor 将一次抓取得到的原始响应按源配置解析为条目
type Extractor interface {
	Extract(src config.Source, payload []byte) ([]NewsItem, error)
}

// ExtractorFor 按源类型选择解析方式
func ExtractorFor(src config.Source) Extractor {
	switch src.Kind() {
	case config.KindMarkup:
		return MarkupExtractor{}
	case config.KindFeed:
		return NewFeedExtractor()
	default:
		return StructuredExtractor{}
	}
}

// Fetchers 按源类型挑选抓取方式：静态页面走 colly，其余走普通 HTTP
type Fetchers struct {
	Markup Fetcher
	HTTP   Fetcher
}

func DefaultFetchers() Fetchers {
	return Fetchers{Markup: NewCollyFetcher(), HTTP: NewHTTPFetcher()}
}

func (f Fetchers) For(src config.Source) Fetcher {
	if src.Kind() == config.KindMarkup && f.Markup != nil {
		return f.Markup
	}
	return f.HTTP
}

// resolveURL 将页面中的相对地址补全为绝对地址，解析失败时原样返回
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil || ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

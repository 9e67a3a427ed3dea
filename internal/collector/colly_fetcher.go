package collector

import (
	"context"
	"errors"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher 用于静态站点，交给 colly 处理编码探测与 UA；每次 Fetch 新建 collector，
// 避免 colly 默认的 "URL 已访问" 去重拦截下一次定时抓取
type CollyFetcher struct {
	UserAgent string
}

func NewCollyFetcher() *CollyFetcher {
	return &CollyFetcher{UserAgent: "Mozilla/5.0 (compatible; NewsPusherBot/1.0)"}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	c := colly.NewCollector(colly.UserAgent(f.UserAgent))
	c.SetRequestTimeout(FetchTimeout)
	c.MaxBodySize = maxResponseBytes
	c.DetectCharset = true

	var (
		body   []byte
		status int
	)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil {
		if status >= 300 {
			return nil, &FetchError{URL: url, StatusCode: status, Err: err}
		}
		return nil, &FetchError{URL: url, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if body == nil {
		return nil, &FetchError{URL: url, Err: errors.New("empty response")}
	}
	return body, nil
}

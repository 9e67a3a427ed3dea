package dispatcher

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/LJTian/NewsPusher/internal/collector"
)

const (
	MessageTitle = "今日新闻推送"
	// 条目没有配图时使用的占位地址
	ImagePlaceholder = "#"
)

// Dispatcher 把一批已标记为已发布的条目发送到外部通知端
type Dispatcher interface {
	Dispatch(ctx context.Context, items []collector.NewsItem) error
}

// DispatchError 发送失败：网络错误、非 2xx 响应或机器人返回非 0 errcode
type DispatchError struct {
	StatusCode int
	ErrCode    int
	Err        error
}

func (e *DispatchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("dispatch: unexpected status %d", e.StatusCode)
	case e.ErrCode != 0:
		return fmt.Sprintf("dispatch: errcode %d: %v", e.ErrCode, e.Err)
	default:
		return fmt.Sprintf("dispatch: %v", e.Err)
	}
}

func (e *DispatchError) Unwrap() error { return e.Err }

// FormatMarkdown 生成推送正文，每条依次展示来源、配图、标题链接
func FormatMarkdown(items []collector.NewsItem) string {
	var b strings.Builder
	b.WriteString("#### ")
	b.WriteString(MessageTitle)
	b.WriteString("\n")
	for _, it := range items {
		pic := it.Image
		if !it.HasImage() {
			pic = ImagePlaceholder
		}
		fmt.Fprintf(&b, "-------%s-------  \n![screenshot](%s)  \n[%s](%s)  \n", it.Source, pic, it.Title, it.URL)
	}
	return b.String()
}

// LogDispatcher 未配置 webhook 时使用，只把消息写到日志
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, items []collector.NewsItem) error {
	log.Printf("dispatch (log only): %d items\n%s", len(items), FormatMarkdown(items))
	return nil
}

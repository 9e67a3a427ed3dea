package dispatcher

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/LJTian/NewsPusher/internal/collector"
)

const (
	dingTalkTimeout          = 10 * time.Second
	dingTalkMaxResponseBytes = 64 * 1024
	// 钉钉自定义机器人限流：每分钟最多 20 条
	dingTalkPerMinute = 20
)

type dingTalkMessage struct {
	MsgType  string           `json:"msgtype"`
	Markdown dingTalkMarkdown `json:"markdown"`
}

type dingTalkMarkdown struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type dingTalkResp struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// DingTalk 通过钉钉自定义机器人 webhook 推送 markdown 消息
type DingTalk struct {
	Webhook string
	// 加签密钥，为空时不签名
	Secret string
	Client *http.Client

	limiter *rate.Limiter
	now     func() time.Time
}

func NewDingTalk(webhook, secret string) *DingTalk {
	return &DingTalk{
		Webhook: webhook,
		Secret:  secret,
		Client:  &http.Client{Timeout: dingTalkTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/dingTalkPerMinute), dingTalkPerMinute),
		now:     time.Now,
	}
}

func (d *DingTalk) Dispatch(ctx context.Context, items []collector.NewsItem) error {
	if len(items) == 0 {
		return nil
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return &DispatchError{Err: err}
		}
	}

	body, err := json.Marshal(dingTalkMessage{
		MsgType:  "markdown",
		Markdown: dingTalkMarkdown{Title: MessageTitle, Text: FormatMarkdown(items)},
	})
	if err != nil {
		return &DispatchError{Err: err}
	}

	endpoint, err := d.endpoint()
	if err != nil {
		return &DispatchError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DispatchError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: dingTalkTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return &DispatchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DispatchError{StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	var out dingTalkResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, dingTalkMaxResponseBytes)).Decode(&out); err != nil {
		return &DispatchError{Err: err}
	}
	if out.ErrCode != 0 {
		return &DispatchError{ErrCode: out.ErrCode, Err: errors.New(out.ErrMsg)}
	}
	return nil
}

// endpoint 在配置了加签密钥时附加 timestamp 与 sign 参数
func (d *DingTalk) endpoint() (string, error) {
	if d.Secret == "" {
		return d.Webhook, nil
	}
	u, err := url.Parse(d.Webhook)
	if err != nil {
		return "", err
	}
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	ts := strconv.FormatInt(now().UnixMilli(), 10)
	q := u.Query()
	q.Set("timestamp", ts)
	q.Set("sign", sign(ts, d.Secret))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sign(timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "\n" + secret))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

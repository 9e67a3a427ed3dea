package collector

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// 小于该值的数字时间戳按秒处理，否则按毫秒
const epochMillisThreshold = 1e11

// parseTimeText 解析页面或接口中的时间文本，无法识别时返回零值（未知时间）
func parseTimeText(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseTimeValue 处理 JSON 中的时间字段：字符串交给 dateparse，数字视为 Unix 时间戳
func parseTimeValue(v any) time.Time {
	switch x := v.(type) {
	case string:
		return parseTimeText(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return fromEpoch(f)
		}
		return parseTimeText(x.String())
	case float64:
		return fromEpoch(x)
	default:
		return time.Time{}
	}
}

func fromEpoch(f float64) time.Time {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}
	}
	if f < epochMillisThreshold {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9))
	}
	return time.UnixMilli(int64(f))
}

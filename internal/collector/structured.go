package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/LJTian/NewsPusher/internal/config"
)

// StructuredExtractor 解析接口返回的 JSON。
//
// src.List 为空时响应根本身就是列表，否则按 "." 分隔的路径逐级查找（数组可用下标）；
// 结果必须是由对象组成的数组。标题、链接等字段直接在每个元素上按路径取值。
type StructuredExtractor struct{}

func (StructuredExtractor) Extract(src config.Source, payload []byte) ([]NewsItem, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &ExtractionError{Source: src.Name, Reason: "decode json", Err: err}
	}

	node, err := resolvePath(root, src.List)
	if err != nil {
		return nil, &ExtractionError{Source: src.Name, Reason: fmt.Sprintf("list path %q", src.List), Err: err}
	}
	list, ok := node.([]any)
	if !ok {
		return nil, extractionErrorf(src.Name, "list path %q resolved to %s, want array", src.List, kindOf(node))
	}

	results := make([]NewsItem, 0, len(list))
	for i, raw := range list {
		elem, ok := raw.(map[string]any)
		if !ok {
			return nil, extractionErrorf(src.Name, "list[%d] is %s, want object", i, kindOf(raw))
		}

		title, err := requiredField(elem, src.Title)
		if err != nil {
			return nil, &ExtractionError{Source: src.Name, Reason: fmt.Sprintf("list[%d] title", i), Err: err}
		}
		link, err := requiredField(elem, src.MessageURL)
		if err != nil {
			return nil, &ExtractionError{Source: src.Name, Reason: fmt.Sprintf("list[%d] link", i), Err: err}
		}

		item := NewsItem{
			Title:  title,
			URL:    link,
			Source: src.Label(),
			Image:  NoImage,
		}
		if src.PicURL != "" {
			if v, err := resolvePath(elem, src.PicURL); err == nil {
				if s, ok := scalarString(v); ok {
					item.Image = strings.TrimSpace(s)
				}
			}
		}
		if src.Time != "" {
			if v, err := resolvePath(elem, src.Time); err == nil {
				item.PublishedAt = parseTimeValue(v)
			}
		}
		results = append(results, item)
	}
	return results, nil
}

// resolvePath 在 JSON 树上按路径逐级查找，不做任何表达式求值
func resolvePath(v any, path string) (any, error) {
	if path == "" {
		return v, nil
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, fmt.Errorf("empty segment in %q", path)
		}
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("key %q not found", seg)
			}
			v = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("index %q out of range (len %d)", seg, len(node))
			}
			v = node[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %s at %q", kindOf(v), seg)
		}
	}
	return v, nil
}

func requiredField(elem map[string]any, path string) (string, error) {
	v, err := resolvePath(elem, path)
	if err != nil {
		return "", err
	}
	s, ok := scalarString(v)
	if !ok {
		return "", fmt.Errorf("%q is %s, want string", path, kindOf(v))
	}
	if s = strings.TrimSpace(s); s == "" {
		return "", fmt.Errorf("%q is empty", path)
	}
	return s, nil
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}

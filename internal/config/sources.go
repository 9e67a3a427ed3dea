package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind 决定使用哪一种 Extractor
type SourceKind string

const (
	KindMarkup     SourceKind = "markup"     // 静态站点，按 CSS 选择器解析 HTML
	KindStructured SourceKind = "structured" // 接口返回 JSON，按属性路径取值
	KindFeed       SourceKind = "feed"       // RSS / Atom
)

// Source 描述一个资源站点以及如何从中提取条目，启动时加载后不再修改。
//
// 对 markup 源，List/Title/MessageURL/PicURL/Time 是 CSS 选择器（后四者相对 List 容器）；
// 对 structured 源，它们是以 "." 分隔的属性路径（List 相对响应根，其余相对列表元素）。
type Source struct {
	Name       string  `yaml:"name" json:"name"`
	Path       string  `yaml:"path" json:"path"`
	List       string  `yaml:"list" json:"list"`
	Title      string  `yaml:"title" json:"title"`
	MessageURL string  `yaml:"messageURL" json:"messageURL"`
	From       string  `yaml:"from" json:"from"`
	PicURL     string  `yaml:"picURL" json:"picURL,omitempty"`
	Time       string  `yaml:"time" json:"time,omitempty"`
	IsStatic   bool    `yaml:"is_static" json:"isStatic"`
	Format     string  `yaml:"format" json:"format,omitempty"`
	Hour       IntList `yaml:"hour" json:"hour,omitempty"`
	Minute     IntList `yaml:"minute" json:"minute,omitempty"`
	DayOfWeek  IntList `yaml:"dayOfWeek" json:"dayOfWeek,omitempty"`
}

func (s Source) Kind() SourceKind {
	switch {
	case strings.EqualFold(s.Format, string(KindFeed)):
		return KindFeed
	case s.IsStatic:
		return KindMarkup
	default:
		return KindStructured
	}
}

// Label 是推送中展示的来源名称，未配置 from 时退回 name
func (s Source) Label() string {
	if s.From != "" {
		return s.From
	}
	return s.Name
}

// SourceDocument 对应源配置文件的顶层结构
type SourceDocument struct {
	URLs      []Source `yaml:"urls"`
	ClearTime *int     `yaml:"clear_time"`
	PushTime  *int     `yaml:"push_time"`
	PushDays  IntList  `yaml:"push_days"`
}

// IntList 兼容单个数字与数字列表两种写法，例如 hour: 8 或 hour: [8, 20]
type IntList []int

func (l *IntList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return err
		}
		*l = IntList{n}
		return nil
	case yaml.SequenceNode:
		var ns []int
		if err := value.Decode(&ns); err != nil {
			return err
		}
		*l = ns
		return nil
	default:
		return fmt.Errorf("line %d: expected number or list of numbers", value.Line)
	}
}

// LoadSources 读取源配置文件（YAML 或 JSON 均可），并做基础校验
func LoadSources(path string) (*SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	doc, err := ParseSources(data)
	if err != nil {
		return nil, err
	}
	log.Printf("sources loaded: %d sources from %s", len(doc.URLs), path)
	return doc, nil
}

func ParseSources(data []byte) (*SourceDocument, error) {
	var doc SourceDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("sources validation error: %w", err)
	}
	return &doc, nil
}

func (d *SourceDocument) Validate() error {
	if len(d.URLs) == 0 {
		return fmt.Errorf("urls: at least one source is required")
	}
	seen := make(map[string]struct{}, len(d.URLs))
	for i, s := range d.URLs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("urls[%d] %q: %w", i, s.Name, err)
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("urls[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	if d.ClearTime != nil && !inRange(*d.ClearTime, 0, 23) {
		return fmt.Errorf("clear_time: %d out of range [0,23]", *d.ClearTime)
	}
	if d.PushTime != nil && !inRange(*d.PushTime, 0, 23) {
		return fmt.Errorf("push_time: %d out of range [0,23]", *d.PushTime)
	}
	if err := checkRange("push_days", d.PushDays, 0, 6); err != nil {
		return err
	}
	return nil
}

func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	u, err := url.Parse(s.Path)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("path must be an absolute http(s) URL, got %q", s.Path)
	}
	if s.Kind() != KindFeed {
		if s.Title == "" || s.MessageURL == "" {
			return fmt.Errorf("title and messageURL are required")
		}
		if s.Kind() == KindMarkup && s.List == "" {
			return fmt.Errorf("list selector is required for static sources")
		}
	}
	if err := checkRange("hour", s.Hour, 0, 23); err != nil {
		return err
	}
	if err := checkRange("minute", s.Minute, 0, 59); err != nil {
		return err
	}
	return checkRange("dayOfWeek", s.DayOfWeek, 0, 6)
}

func checkRange(field string, vals []int, min, max int) error {
	for _, v := range vals {
		if !inRange(v, min, max) {
			return fmt.Errorf("%s: %d out of range [%d,%d]", field, v, min, max)
		}
	}
	return nil
}

func inRange(v, min, max int) bool {
	return v >= min && v <= max
}

// Package storage 保存推送归档：每次推送出去的条目写入 PostgreSQL，列表查询走 Redis 短 TTL 缓存。
// 新闻队列本身不落库，归档只用于事后查询推送记录。
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LJTian/NewsPusher/internal/collector"
	"github.com/LJTian/NewsPusher/internal/processor"
)

const listCacheTTL = 5 * time.Minute

// Channel 描述一个资源站点，与源配置中的 name 一一对应
type Channel struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Code    string `gorm:"size:64;uniqueIndex" json:"code"`
	Name    string `gorm:"size:128" json:"name"`
	BaseURL string `gorm:"size:1024" json:"baseUrl"`
	Status  string `gorm:"size:32;index" json:"status"` // active / disabled

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublishedNews 一条已推送的新闻
type PublishedNews struct {
	ID     string `gorm:"primaryKey;size:40" json:"id"`
	Title  string `gorm:"size:512" json:"title"`
	URL    string `gorm:"size:1024;uniqueIndex" json:"url"`
	Source string `gorm:"size:128;index" json:"source"`
	Image  string `gorm:"size:1024" json:"image,omitempty"`
	// 源站未提供时间时为空
	PublishedAt *time.Time        `json:"publishedAt,omitempty"`
	PushedAt    time.Time         `gorm:"index" json:"pushedAt"`
	PushedDate  string            `gorm:"size:10;index" json:"pushedDate"` // YYYY-MM-DD，东八区
	ExtraData   datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Channel{}, &PublishedNews{}); err != nil {
		return nil, err
	}

	s := &Store{DB: db}
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis ping failed: %v", err)
		}
		s.Redis = rdb
	}
	return s, nil
}

// EnsureChannel 确保某个渠道存在
func (s *Store) EnsureChannel(code, name, baseURL string) (*Channel, error) {
	ch := &Channel{}
	if err := s.DB.Where("code = ?", code).First(ch).Error; err == nil {
		return ch, nil
	}

	ch = &Channel{
		Code:    code,
		Name:    name,
		BaseURL: baseURL,
		Status:  "active",
	}
	if err := s.DB.Create(ch).Error; err != nil {
		return nil, err
	}
	return ch, nil
}

// 东八区，用于日期展示与筛选
var locEast8 *time.Location

func init() {
	locEast8, _ = time.LoadLocation("Asia/Shanghai")
	if locEast8 == nil {
		locEast8 = time.FixedZone("CST", 8*3600)
	}
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func toRecord(it collector.NewsItem, pushedAt time.Time) *PublishedNews {
	rec := &PublishedNews{
		ID:         processor.ItemID(it.URL),
		Title:      truncateRunesDB(toValidUTF8(it.Title), 512),
		URL:        it.URL,
		Source:     truncateRunesDB(toValidUTF8(it.Source), 128),
		Image:      it.Image,
		PushedAt:   pushedAt,
		PushedDate: pushedAt.In(locEast8).Format("2006-01-02"),
		ExtraData:  datatypes.JSONMap{"hasTimestamp": it.HasTimestamp(), "hasImage": it.HasImage()},
	}
	if it.HasTimestamp() {
		t := it.PublishedAt
		rec.PublishedAt = &t
	}
	return rec
}

// SaveBatch 归档一批已推送的条目，以 URL 为幂等键，已存在时忽略
func (s *Store) SaveBatch(items []collector.NewsItem, pushedAt time.Time) error {
	for _, it := range items {
		rec := toRecord(it, pushedAt)
		if err := s.DB.Where("url = ?", it.URL).FirstOrCreate(rec).Error; err != nil {
			return fmt.Errorf("archive %s: %w", it.URL, err)
		}
	}
	// 不主动删除列表缓存，依赖短 TTL 自然过期
	return nil
}

func listCacheKey(source string, limit int, date string) string {
	return fmt.Sprintf("published:list:%s:%d:%s", source, limit, date)
}

// ListPublished 按来源与可选日期（东八区 YYYY-MM-DD）返回推送记录，最新在前
func (s *Store) ListPublished(source string, limit int, date string) ([]PublishedNews, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}

	ctx := context.Background()
	cacheKey := listCacheKey(source, limit, date)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []PublishedNews
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []PublishedNews
	db := s.DB.Model(&PublishedNews{})
	if source != "" {
		db = db.Where("source = ?", source)
	}
	if date != "" {
		db = db.Where("pushed_date = ?", date)
	}
	if err := db.Order("pushed_at DESC").Order("published_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}
	return list, nil
}

// ListPushedDates 返回有推送记录的日期（倒序）
func (s *Store) ListPushedDates(limit int) ([]string, error) {
	if limit <= 0 || limit > 365 {
		limit = 31
	}
	var dates []string
	err := s.DB.Model(&PublishedNews{}).
		Distinct("pushed_date").
		Order("pushed_date DESC").
		Limit(limit).
		Pluck("pushed_date", &dates).Error
	return dates, err
}

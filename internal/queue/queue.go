// Package queue 提供进程内共享的新闻队列：按链接去重，由采集、清空、推送三类定时任务共同读写。
// 队列只存在于内存，进程退出即丢弃。
package queue

import (
	"sort"
	"sync"

	"github.com/LJTian/NewsPusher/internal/collector"
)

// Queue 的所有写操作在同一把锁内完成，读操作拿到的是某一时刻的完整副本
type Queue struct {
	mu    sync.RWMutex
	items []collector.NewsItem
	index map[string]int // URL -> items 下标
}

func New() *Queue {
	return &Queue{index: make(map[string]int)}
}

// Merge 追加队列中尚不存在的条目（按 URL 判断，先到者保留），返回新增数量
func (q *Queue) Merge(items []collector.NewsItem) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	added := 0
	for _, it := range items {
		if _, ok := q.index[it.URL]; ok {
			continue
		}
		q.index[it.URL] = len(q.items)
		q.items = append(q.items, it)
		added++
	}
	return added
}

// Clear 无条件清空队列
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.index = make(map[string]int)
}

// MarkPublished 将 URL 对应条目标记为已发布。
// 仅当条目存在且此前未发布时返回 true，并发推送时同一条目只会被一方拿到。
func (q *Queue) MarkPublished(url string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx, ok := q.index[url]
	if !ok || q.items[idx].Published {
		return false
	}
	q.items[idx].Published = true
	return true
}

// Snapshot 返回当前队列的只读副本（按入队顺序）
func (q *Queue) Snapshot() []collector.NewsItem {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]collector.NewsItem, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// SortNewestFirst 按时间倒序稳定排序，未知时间视为最旧排在末尾
func SortNewestFirst(items []collector.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.HasTimestamp() != b.HasTimestamp() {
			return a.HasTimestamp()
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
}

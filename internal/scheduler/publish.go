package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/NewsPusher/internal/collector"
	"github.com/LJTian/NewsPusher/internal/dispatcher"
	"github.com/LJTian/NewsPusher/internal/queue"
)

const (
	DefaultPublishLimit = 10
	dispatchTimeout     = time.Minute
)

// Archive 保存已推送的条目，可选
type Archive interface {
	SaveBatch(items []collector.NewsItem, pushedAt time.Time) error
}

// PublishJob 从队列中挑选最新的未发布条目推送出去。
//
// 按时间倒序遍历快照，未发布的条目在共享队列中标记为已发布后进入批次，已发布的直接丢弃，
// 最后截取前 Limit 条。ConsumeOverflow 为 true 时，排在 Limit 之后的未发布条目同样被标记，
// 本轮错过的旧条目不会在之后的推送中反复出现；为 false 时只标记实际推送的条目。
type PublishJob struct {
	Queue      *queue.Queue
	Dispatcher dispatcher.Dispatcher
	Archive    Archive

	Limit           int
	ConsumeOverflow bool

	now func() time.Time
}

func NewPublishJob(q *queue.Queue, d dispatcher.Dispatcher) *PublishJob {
	return &PublishJob{
		Queue:           q,
		Dispatcher:      d,
		Limit:           DefaultPublishLimit,
		ConsumeOverflow: true,
		now:             time.Now,
	}
}

// Select 完成 快照 -> 排序 -> 标记/过滤 -> 截断，返回本轮要推送的批次
func (j *PublishJob) Select() []collector.NewsItem {
	limit := j.Limit
	if limit <= 0 {
		limit = DefaultPublishLimit
	}

	snapshot := j.Queue.Snapshot()
	queue.SortNewestFirst(snapshot)

	batch := make([]collector.NewsItem, 0, limit)
	for _, it := range snapshot {
		if it.Published {
			continue
		}
		if !j.ConsumeOverflow && len(batch) >= limit {
			break
		}
		// 标记失败说明条目已被清空或被另一次推送拿走
		if !j.Queue.MarkPublished(it.URL) {
			continue
		}
		it.Published = true
		batch = append(batch, it)
	}

	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch
}

// Run 执行一次推送；批次为空时不调用 Dispatcher。
// 发送失败只返回错误，已设置的发布标记不回滚。
func (j *PublishJob) Run(ctx context.Context) ([]collector.NewsItem, error) {
	batch := j.Select()
	if len(batch) == 0 {
		log.Println("publish: nothing to push")
		return nil, nil
	}

	log.Printf("publish: pushing %d items...", len(batch))
	if err := j.Dispatcher.Dispatch(ctx, batch); err != nil {
		log.Printf("publish: dispatch failed: %v", err)
		return batch, err
	}
	log.Printf("publish: pushed %d items", len(batch))

	if j.Archive != nil {
		now := time.Now
		if j.now != nil {
			now = j.now
		}
		if err := j.Archive.SaveBatch(batch, now()); err != nil {
			log.Printf("publish: archive failed: %v", err)
		}
	}
	return batch, nil
}

// Fire 是注册到调度器上的回调
func (j *PublishJob) Fire() {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	_, _ = j.Run(ctx)
}

// ClearJob 每天定时清空队列
type ClearJob struct {
	Queue *queue.Queue
}

func (j *ClearJob) Fire() {
	n := j.Queue.Len()
	j.Queue.Clear()
	log.Printf("clear: queue emptied (%d items dropped)", n)
}

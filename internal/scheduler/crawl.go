package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LJTian/NewsPusher/internal/collector"
	"github.com/LJTian/NewsPusher/internal/config"
	"github.com/LJTian/NewsPusher/internal/processor"
	"github.com/LJTian/NewsPusher/internal/queue"
)

type CrawlState int32

const (
	StateIdle CrawlState = iota
	StateFetching
	StateExtracting
	StateMerging
)

func (s CrawlState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateExtracting:
		return "extracting"
	case StateMerging:
		return "merging"
	default:
		return "idle"
	}
}

// CrawlStatus 最近一次采集的结果
type CrawlStatus struct {
	Source    string    `json:"source"`
	Kind      string    `json:"kind"`
	State     string    `json:"state"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	Fetched   int       `json:"fetched"`
	Added     int       `json:"added"`
	LastError string    `json:"lastError,omitempty"`
}

// CrawlJob 对单个源执行 抓取 -> 解析 -> 合并。
// 任一步失败都直接回到 Idle，本次触发不向队列写入任何条目，也不重试。
type CrawlJob struct {
	Source    config.Source
	Fetcher   collector.Fetcher
	Extractor collector.Extractor
	Processor *processor.SimpleProcessor
	Queue     *queue.Queue

	state atomic.Int32

	mu   sync.Mutex
	last CrawlStatus
}

func NewCrawlJob(src config.Source, fetchers collector.Fetchers, p *processor.SimpleProcessor, q *queue.Queue) *CrawlJob {
	return &CrawlJob{
		Source:    src,
		Fetcher:   fetchers.For(src),
		Extractor: collector.ExtractorFor(src),
		Processor: p,
		Queue:     q,
	}
}

// Fire 是注册到调度器上的回调
func (j *CrawlJob) Fire() {
	ctx, cancel := context.WithTimeout(context.Background(), collector.FetchTimeout)
	defer cancel()
	_, _ = j.Run(ctx)
}

// Run 执行一次采集，返回新增条目数
func (j *CrawlJob) Run(ctx context.Context) (int, error) {
	name := j.Source.Name
	started := config.Now()
	defer j.setState(StateIdle)

	j.setState(StateFetching)
	log.Printf("crawl %s: fetch %s...", name, j.Source.Path)
	payload, err := j.Fetcher.Fetch(ctx, j.Source.Path)
	if err != nil {
		log.Printf("crawl %s: %v", name, err)
		j.record(started, 0, 0, err)
		return 0, err
	}

	j.setState(StateExtracting)
	items, err := j.Extractor.Extract(j.Source, payload)
	if err != nil {
		log.Printf("crawl %s: %v", name, err)
		j.record(started, 0, 0, err)
		return 0, err
	}
	if j.Processor != nil {
		items = j.Processor.Process(items)
	}
	if len(items) == 0 {
		log.Printf("crawl %s: got 0 items", name)
		j.record(started, 0, 0, nil)
		return 0, nil
	}

	j.setState(StateMerging)
	added := j.Queue.Merge(items)
	log.Printf("crawl %s done, fetched=%d added=%d queue=%d", name, len(items), added, j.Queue.Len())
	j.record(started, len(items), added, nil)
	return added, nil
}

func (j *CrawlJob) State() CrawlState {
	return CrawlState(j.state.Load())
}

func (j *CrawlJob) setState(s CrawlState) {
	j.state.Store(int32(s))
}

func (j *CrawlJob) record(at time.Time, fetched, added int, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.last = CrawlStatus{LastRun: at, Fetched: fetched, Added: added}
	if err != nil {
		j.last.LastError = err.Error()
	}
}

func (j *CrawlJob) Status() CrawlStatus {
	j.mu.Lock()
	st := j.last
	j.mu.Unlock()

	st.Source = j.Source.Name
	st.Kind = string(j.Source.Kind())
	st.State = j.State().String()
	return st
}

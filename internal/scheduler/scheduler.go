package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/NewsPusher/internal/config"
)

// Scheduler 只负责按 Recurrence 在本地时区触发回调，不持有任何业务状态
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Name string       `json:"name"`
	Spec string       `json:"spec"`
	ID   cron.EntryID `json:"-"`
}

// EntryStatus 用于 API 展示
type EntryStatus struct {
	Name string    `json:"name"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev,omitempty"`
}

func New() *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithLocation(time.Local),
		cron.WithLogger(logger),
		// 单个任务 panic 不影响后续调度
		cron.WithChain(cron.Recover(logger)),
	)
	return &Scheduler{cron: c}
}

// Register 注册一个定时回调，表达式非法时返回错误
func (s *Scheduler) Register(name string, r Recurrence, fn func()) error {
	spec, err := r.Spec()
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	id, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, Entry{Name: name, Spec: spec, ID: id})
	s.mu.Unlock()

	log.Printf("scheduler: registered %s at %q", name, spec)
	return nil
}

// RegisterAll 注册每个源的采集任务以及全局的清空、推送任务
func (s *Scheduler) RegisterAll(crawls []*CrawlJob, clearJob *ClearJob, publishJob *PublishJob, sched config.Schedule) error {
	for _, job := range crawls {
		if err := s.Register("crawl:"+job.Source.Name, CrawlRecurrence(job.Source), job.Fire); err != nil {
			return err
		}
	}
	if err := s.Register("clear", ClearRecurrence(sched), clearJob.Fire); err != nil {
		return err
	}
	return s.Register("publish", PublishRecurrence(sched), publishJob.Fire)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度，返回的 context 在正在运行的任务结束后关闭
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Cron 暴露底层 cron，便于注册其它辅助任务
func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

func (s *Scheduler) Entries() []EntryStatus {
	s.mu.Lock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	out := make([]EntryStatus, 0, len(entries))
	for _, e := range entries {
		ce := s.cron.Entry(e.ID)
		out = append(out, EntryStatus{Name: e.Name, Spec: e.Spec, Next: ce.Next, Prev: ce.Prev})
	}
	return out
}

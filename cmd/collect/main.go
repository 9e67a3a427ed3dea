package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/LJTian/NewsPusher/internal/collector"
	"github.com/LJTian/NewsPusher/internal/config"
	"github.com/LJTian/NewsPusher/internal/dispatcher"
	"github.com/LJTian/NewsPusher/internal/processor"
	"github.com/LJTian/NewsPusher/internal/queue"
	"github.com/LJTian/NewsPusher/internal/scheduler"
)

type options struct {
	Sources string        `long:"sources" env:"SOURCES_FILE" default:"sources.yaml" description:"源配置文件 (YAML/JSON)"`
	Source  []string      `long:"source" short:"s" description:"只采集指定名称的源，可重复"`
	Publish bool          `long:"publish" description:"采集完成后立即推送一次"`
	DryRun  bool          `long:"dry-run" description:"推送时只打印消息，不调用 webhook"`
	Limit   int           `long:"limit" default:"10" description:"单次推送条数上限"`
	Timeout time.Duration `long:"timeout" default:"5m" description:"单个源的抓取超时"`

	Webhook string `long:"webhook" env:"DINGTALK_WEBHOOK" description:"钉钉机器人 webhook"`
	Secret  string `long:"secret" env:"DINGTALK_SECRET" description:"钉钉加签密钥"`
}

// 一个仅执行一轮采集的命令行入口：适合调试源配置或手动触发推送
func main() {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	doc, err := config.LoadSources(opts.Sources)
	if err != nil {
		log.Fatalf("load sources failed: %v", err)
	}
	sources, err := pick(doc.URLs, opts.Source)
	if err != nil {
		log.Fatalf("%v", err)
	}

	q := queue.New()
	p := processor.NewSimpleProcessor()
	fetchers := collector.DefaultFetchers()

	var wg sync.WaitGroup
	for _, src := range sources {
		job := scheduler.NewCrawlJob(src, fetchers, p, q)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
			defer cancel()
			if _, err := job.Run(ctx); err != nil {
				log.Printf("collect %s failed: %v", job.Source.Name, err)
			}
		}()
	}
	wg.Wait()

	items := q.Snapshot()
	queue.SortNewestFirst(items)
	for i, it := range items {
		ts := "unknown"
		if it.HasTimestamp() {
			ts = it.PublishedAt.Format(time.DateTime)
		}
		fmt.Printf("%3d. [%s] %s\n     %s (%s)\n", i+1, it.Source, it.Title, it.URL, ts)
	}
	log.Printf("collected %d items from %d sources", len(items), len(sources))

	if !opts.Publish {
		return
	}
	var d dispatcher.Dispatcher = dispatcher.LogDispatcher{}
	if !opts.DryRun && opts.Webhook != "" {
		d = dispatcher.NewDingTalk(opts.Webhook, opts.Secret)
	}
	job := scheduler.NewPublishJob(q, d)
	if opts.Limit > 0 {
		job.Limit = opts.Limit
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	batch, err := job.Run(ctx)
	if err != nil {
		log.Fatalf("publish failed: %v", err)
	}
	log.Printf("published %d items", len(batch))
}

// pick 按名称筛选源，names 为空时返回全部
func pick(all []config.Source, names []string) ([]config.Source, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]config.Source, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	out := make([]config.Source, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}

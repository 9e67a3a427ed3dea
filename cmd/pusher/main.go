package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsPusher/internal/api"
	"github.com/LJTian/NewsPusher/internal/collector"
	"github.com/LJTian/NewsPusher/internal/config"
	"github.com/LJTian/NewsPusher/internal/dispatcher"
	"github.com/LJTian/NewsPusher/internal/observability"
	"github.com/LJTian/NewsPusher/internal/processor"
	"github.com/LJTian/NewsPusher/internal/queue"
	"github.com/LJTian/NewsPusher/internal/scheduler"
	"github.com/LJTian/NewsPusher/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	defer observability.Setup(cfg.LogFile).Close()

	// 源文件缺失或格式错误时直接退出
	doc, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("load sources failed: %v", err)
	}
	sched := cfg.ResolveSchedule(doc)

	q := queue.New()
	p := processor.NewSimpleProcessor()
	fetchers := collector.DefaultFetchers()

	crawls := make([]*scheduler.CrawlJob, 0, len(doc.URLs))
	for _, src := range doc.URLs {
		crawls = append(crawls, scheduler.NewCrawlJob(src, fetchers, p, q))
	}

	var d dispatcher.Dispatcher = dispatcher.LogDispatcher{}
	if cfg.DingTalkWebhook != "" {
		d = dispatcher.NewDingTalk(cfg.DingTalkWebhook, cfg.DingTalkSecret)
	} else {
		log.Printf("warn: DINGTALK_WEBHOOK not set, messages go to the log only")
	}
	publish := scheduler.NewPublishJob(q, d)
	clearJob := &scheduler.ClearJob{Queue: q}

	// 推送归档可选
	var archive api.ArchiveReader
	if cfg.PostgresDSN != "" {
		store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("init store failed: %v", err)
		}
		for _, src := range doc.URLs {
			if _, err := store.EnsureChannel(src.Name, src.Label(), src.Path); err != nil {
				log.Fatalf("ensure channel %s failed: %v", src.Name, err)
			}
		}
		publish.Archive = store
		archive = store
	}

	s := scheduler.New()
	if err := s.RegisterAll(crawls, clearJob, publish, sched); err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	r := gin.Default()
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}
	api.NewServer(api.Options{
		Queue:     q,
		Crawls:    crawls,
		Publish:   publish,
		Clear:     clearJob,
		Scheduler: s,
		Archive:   archive,
	}).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting pusher at %s, %d sources ...", addr, len(crawls))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsPusher/internal/collector"
	"github.com/LJTian/NewsPusher/internal/queue"
	"github.com/LJTian/NewsPusher/internal/scheduler"
	"github.com/LJTian/NewsPusher/internal/storage"
)

// ArchiveReader 推送归档的只读查询，未启用归档时为 nil
type ArchiveReader interface {
	ListPublished(source string, limit int, date string) ([]storage.PublishedNews, error)
	ListPushedDates(limit int) ([]string, error)
}

type Server struct {
	queue     *queue.Queue
	crawls    map[string]*scheduler.CrawlJob
	order     []string
	publish   *scheduler.PublishJob
	clear     *scheduler.ClearJob
	scheduler *scheduler.Scheduler
	archive   ArchiveReader
}

type Options struct {
	Queue     *queue.Queue
	Crawls    []*scheduler.CrawlJob
	Publish   *scheduler.PublishJob
	Clear     *scheduler.ClearJob
	Scheduler *scheduler.Scheduler
	Archive   ArchiveReader
}

func NewServer(opts Options) *Server {
	s := &Server{
		queue:     opts.Queue,
		crawls:    make(map[string]*scheduler.CrawlJob, len(opts.Crawls)),
		publish:   opts.Publish,
		clear:     opts.Clear,
		scheduler: opts.Scheduler,
		archive:   opts.Archive,
	}
	for _, job := range opts.Crawls {
		s.crawls[job.Source.Name] = job
		s.order = append(s.order, job.Source.Name)
	}
	return s
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/queue", s.listQueue)
		v1.DELETE("/queue", s.clearQueue)
		v1.GET("/sources", s.listSources)
		v1.POST("/sources/:name/crawl", s.crawlSource)
		v1.POST("/publish", s.publishNow)
		v1.GET("/schedule", s.listSchedule)
		v1.GET("/published", s.listPublished)
		v1.GET("/published/dates", s.listPushedDates)
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "queue": s.queue.Len()})
}

// listQueue 返回队列快照，按时间倒序；unpublished=1 时只返回未发布条目
func (s *Server) listQueue(c *gin.Context) {
	items := s.queue.Snapshot()
	queue.SortNewestFirst(items)

	if c.Query("unpublished") == "1" {
		filtered := items[:0]
		for _, it := range items {
			if !it.Published {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if items == nil {
		items = []collector.NewsItem{}
	}
	ok(c, items)
}

func (s *Server) clearQueue(c *gin.Context) {
	s.clear.Fire()
	ok(c, gin.H{"size": s.queue.Len()})
}

func (s *Server) listSources(c *gin.Context) {
	out := make([]scheduler.CrawlStatus, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.crawls[name].Status())
	}
	ok(c, out)
}

// crawlSource 手动触发一次采集，同步返回结果
func (s *Server) crawlSource(c *gin.Context) {
	job, found := s.crawls[c.Param("name")]
	if !found {
		fail(c, http.StatusNotFound, "not_found", "unknown source")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), collector.FetchTimeout)
	defer cancel()
	added, err := job.Run(ctx)
	if err != nil {
		var fe *collector.FetchError
		status := http.StatusUnprocessableEntity
		if errors.As(err, &fe) {
			status = http.StatusBadGateway
		}
		fail(c, status, "crawl_failed", err.Error())
		return
	}
	ok(c, gin.H{"added": added, "size": s.queue.Len()})
}

func (s *Server) publishNow(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Minute)
	defer cancel()

	batch, err := s.publish.Run(ctx)
	if err != nil {
		// 条目已标记为已发布，不会回滚
		fail(c, http.StatusBadGateway, "dispatch_failed", err.Error())
		return
	}
	if batch == nil {
		batch = []collector.NewsItem{}
	}
	ok(c, batch)
}

func (s *Server) listSchedule(c *gin.Context) {
	if s.scheduler == nil {
		ok(c, []scheduler.EntryStatus{})
		return
	}
	ok(c, s.scheduler.Entries())
}

func (s *Server) listPublished(c *gin.Context) {
	if s.archive == nil {
		fail(c, http.StatusNotFound, "archive_disabled", "publish archive is not configured")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			fail(c, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
			return
		}
	}

	items, err := s.archive.ListPublished(c.Query("source"), limit, date)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, items)
}

// listPushedDates 返回有推送记录的日期，最近的在前
func (s *Server) listPushedDates(c *gin.Context) {
	if s.archive == nil {
		fail(c, http.StatusNotFound, "archive_disabled", "publish archive is not configured")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit <= 0 {
		limit = 30
	}
	dates, err := s.archive.ListPushedDates(limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, dates)
}

package scheduler

import (
	"testing"

	"github.com/LJTian/NewsPusher/internal/collector"
	"github.com/LJTian/NewsPusher/internal/config"
	"github.com/LJTian/NewsPusher/internal/dispatcher"
	"github.com/LJTian/NewsPusher/internal/processor"
	"github.com/LJTian/NewsPusher/internal/queue"
)

func TestRegisterAll(t *testing.T) {
	q := queue.New()
	p := processor.NewSimpleProcessor()
	fetchers := collector.DefaultFetchers()

	srcA := structuredSource()
	srcB := config.Source{Name: "static", Path: "https://example.com", List: "ul", Title: "li", MessageURL: "a", IsStatic: true, Hour: config.IntList{7}}
	crawls := []*CrawlJob{
		NewCrawlJob(srcA, fetchers, p, q),
		NewCrawlJob(srcB, fetchers, p, q),
	}

	s := New()
	sched := (&config.Config{}).ResolveSchedule(nil)
	if err := s.RegisterAll(crawls, &ClearJob{Queue: q}, NewPublishJob(q, dispatcher.LogDispatcher{}), sched); err != nil {
		t.Fatalf("RegisterAll error: %v", err)
	}

	s.Start()
	defer s.Stop()

	entries := s.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	want := map[string]string{
		"crawl:api":    "50 8 * * 1,2,3,4,5",
		"crawl:static": "50 7 * * 1,2,3,4,5",
		"clear":        "0 12 * * *",
		"publish":      "14 19 * * 1,2,3,4,5",
	}
	for _, e := range entries {
		if want[e.Name] != e.Spec {
			t.Errorf("%s spec = %q, want %q", e.Name, e.Spec, want[e.Name])
		}
		if e.Next.IsZero() {
			t.Errorf("%s should have a next run once started", e.Name)
		}
	}
}

func TestRegisterRejectsInvalidRecurrence(t *testing.T) {
	s := New()
	if err := s.Register("bad", Recurrence{Hours: []int{30}}, func() {}); err == nil {
		t.Fatal("expected error for hour 30")
	}
	if len(s.Entries()) != 0 {
		t.Fatal("invalid recurrence must not be registered")
	}
}

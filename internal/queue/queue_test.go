package queue

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LJTian/NewsPusher/internal/collector"
)

func item(url, title string) collector.NewsItem {
	return collector.NewsItem{Title: title, URL: url, Source: "test"}
}

func TestMergeDeduplicatesFirstSeenWins(t *testing.T) {
	q := New()

	if n := q.Merge([]collector.NewsItem{item("/a", "A"), item("/b", "B"), item("/a", "A again")}); n != 2 {
		t.Fatalf("Merge added %d, want 2", n)
	}
	if n := q.Merge([]collector.NewsItem{item("/b", "B changed"), item("/c", "C")}); n != 1 {
		t.Fatalf("second Merge added %d, want 1", n)
	}

	snap := q.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 items, got %d", len(snap))
	}
	if snap[0].Title != "A" || snap[1].Title != "B" {
		t.Fatalf("existing items must keep their first-seen fields: %+v", snap)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	q := New()
	q.Merge([]collector.NewsItem{item("/a", "A")})

	q.Clear()
	q.Clear()
	if got := q.Snapshot(); len(got) != 0 {
		t.Fatalf("snapshot after clear should be empty, got %+v", got)
	}

	// 清空后同一链接可以重新入队
	if n := q.Merge([]collector.NewsItem{item("/a", "A")}); n != 1 {
		t.Fatalf("Merge after Clear added %d, want 1", n)
	}
}

func TestMarkPublished(t *testing.T) {
	q := New()
	q.Merge([]collector.NewsItem{item("/a", "A"), item("/b", "B")})

	if !q.MarkPublished("/b") {
		t.Fatal("first MarkPublished should succeed")
	}
	if q.MarkPublished("/b") {
		t.Fatal("MarkPublished on an already published item should report false")
	}
	if q.MarkPublished("/missing") {
		t.Fatal("MarkPublished on unknown URL should report false")
	}

	snap := q.Snapshot()
	if snap[0].Published || !snap[1].Published {
		t.Fatalf("unexpected published flags: %+v", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	q := New()
	q.Merge([]collector.NewsItem{item("/a", "A")})

	snap := q.Snapshot()
	snap[0].Published = true
	snap[0].Title = "mutated"

	again := q.Snapshot()
	if again[0].Published || again[0].Title != "A" {
		t.Fatalf("mutating a snapshot must not touch the queue: %+v", again[0])
	}
}

func TestSortNewestFirstUnknownLast(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(url string, h int) collector.NewsItem {
		it := item(url, url)
		it.PublishedAt = base.Add(time.Duration(h) * time.Hour)
		return it
	}
	items := []collector.NewsItem{at("5", 5), at("3", 3), at("9", 9), item("unknown", "unknown"), at("1", 1)}

	SortNewestFirst(items)

	want := []string{"9", "5", "3", "1", "unknown"}
	for i, w := range want {
		if items[i].URL != w {
			t.Fatalf("order[%d] = %s, want %s (full: %+v)", i, items[i].URL, w, items)
		}
	}
}

func TestConcurrentMergeKeepsLinksUnique(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				q.Merge([]collector.NewsItem{item(fmt.Sprintf("/%d", i), fmt.Sprintf("w%d", w))})
				if i%50 == 0 {
					q.MarkPublished(fmt.Sprintf("/%d", i))
				}
			}
		}(w)
	}
	wg.Wait()

	snap := q.Snapshot()
	if len(snap) != 200 {
		t.Fatalf("expected 200 unique items, got %d", len(snap))
	}
	seen := make(map[string]bool)
	for _, it := range snap {
		if seen[it.URL] {
			t.Fatalf("duplicate link %s", it.URL)
		}
		seen[it.URL] = true
	}
}

func TestClearDuringMergeNeverTorn(t *testing.T) {
	batch := make([]collector.NewsItem, 100)
	for i := range batch {
		batch[i] = item(fmt.Sprintf("/%d", i), "x")
	}

	for round := 0; round < 50; round++ {
		q := New()
		q.Merge([]collector.NewsItem{item("/old", "old")})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); q.Merge(batch) }()
		go func() { defer wg.Done(); q.Clear() }()
		wg.Wait()

		// 两种合法结果：先合并后清空 -> 空；先清空后合并 -> 只有新批次
		n := q.Len()
		if n != 0 && n != len(batch) {
			t.Fatalf("round %d: torn state with %d items", round, n)
		}
		for _, it := range q.Snapshot() {
			if it.URL == "/old" {
				t.Fatalf("round %d: pre-clear item survived", round)
			}
		}
	}
}

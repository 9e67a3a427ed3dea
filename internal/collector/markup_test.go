package collector

import (
	"errors"
	"testing"

	"github.com/LJTian/NewsPusher/internal/config"
)

func markupSource() config.Source {
	return config.Source{
		Name:       "demo",
		Path:       "https://example.com/news/",
		List:       "div.box",
		Title:      "p.t",
		MessageURL: "a",
		From:       "示例站",
		IsStatic:   true,
	}
}

func TestMarkupExtractorSplitsTitlesAndPairsLinks(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>x</title></head><body class="home">
<div class="box"><p class="t">Row One
Row Two</p><a href="/one">1</a><a href="https://other.io/two">2</a></div>
</body></html>`

	items, err := MarkupExtractor{}.Extract(markupSource(), []byte(page))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}

	want := []struct{ title, url string }{
		{"Row One", "https://example.com/one"},
		{"Row Two", "https://other.io/two"},
	}
	for i, w := range want {
		if items[i].Title != w.title || items[i].URL != w.url {
			t.Errorf("items[%d] = %q/%q, want %q/%q", i, items[i].Title, items[i].URL, w.title, w.url)
		}
		if items[i].Source != "示例站" {
			t.Errorf("items[%d].Source = %q, want 示例站", i, items[i].Source)
		}
		if items[i].HasImage() || items[i].HasTimestamp() || items[i].Published {
			t.Errorf("items[%d] should use defaults, got %+v", i, items[i])
		}
	}
}

func TestMarkupExtractorImagesAndTimes(t *testing.T) {
	src := markupSource()
	src.PicURL = "img"
	src.Time = "span.time"

	page := `<html><body>
<div class="box"><p class="t">Only</p><a href="/a">a</a><img data-src="/pic.png"><span class="time">2024-01-03 10:00:00</span></div>
<div class="box"><p class="t">Second</p><a href="/b">b</a><span class="time">not a date</span></div>
</body></html>`

	items, err := MarkupExtractor{}.Extract(src, []byte(page))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Image != "https://example.com/pic.png" {
		t.Errorf("Image = %q, want resolved lazy-load src", items[0].Image)
	}
	if ts := items[0].PublishedAt; ts.Year() != 2024 || ts.Month() != 1 || ts.Day() != 3 || ts.Hour() != 10 {
		t.Errorf("PublishedAt = %v, want 2024-01-03 10:00 local", ts)
	}
	if items[1].HasImage() {
		t.Errorf("second item has no img, got %q", items[1].Image)
	}
	if items[1].HasTimestamp() {
		t.Errorf("unparseable time should be unknown, got %v", items[1].PublishedAt)
	}
}

func TestMarkupExtractorMismatchedCountsBoundedByLinks(t *testing.T) {
	page := `<html><body><div class="box"><p class="t">A
B
C</p><a href="/a">a</a><a>no href</a></div></body></html>`

	items, err := MarkupExtractor{}.Extract(markupSource(), []byte(page))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	// 第二个链接没有 href，第三行标题没有对应的链接
	if len(items) != 1 || items[0].Title != "A" {
		t.Fatalf("expected only A to survive, got %+v", items)
	}
}

func TestMarkupExtractorErrors(t *testing.T) {
	cases := []struct {
		name string
		page string
	}{
		{"no body", `<html><head></head></html>`},
		{"no containers", `<html><body><div class="other"></div></body></html>`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := MarkupExtractor{}.Extract(markupSource(), []byte(c.page))
			var ee *ExtractionError
			if !errors.As(err, &ee) {
				t.Fatalf("expected *ExtractionError, got %v", err)
			}
			if ee.Source != "demo" {
				t.Fatalf("ExtractionError.Source = %q, want demo", ee.Source)
			}
		})
	}
}

func TestSplitTitles(t *testing.T) {
	got := splitTitles("  first line  \n\n   \n second\r\nthird")
	want := []string{"first line", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("splitTitles = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitTitles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

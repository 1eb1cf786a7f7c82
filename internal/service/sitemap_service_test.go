package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wavesignals/internal/db"
)

func TestSitemapServiceBuild(t *testing.T) {
	gdb := setupServiceTestDB(t)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	seedPost(t, gdb, "first-post", now.Add(-time.Hour))
	if err := gdb.Create(&db.Post{Slug: "draft", Title: "Draft", Content: "<p>x</p>", Published: false}).Error; err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	svc := NewSitemapService(NewPostService(gdb), "https://wavesignals.dev/")
	out, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("build sitemap: %v", err)
	}

	doc := string(out)
	if !strings.Contains(doc, "<urlset") || !strings.Contains(doc, "sitemaps.org") {
		t.Fatalf("missing urlset: %s", doc)
	}
	if !strings.Contains(doc, "<loc>https://wavesignals.dev/posts/first-post</loc>") {
		t.Fatalf("missing post url: %s", doc)
	}
	if !strings.Contains(doc, "<loc>https://wavesignals.dev/</loc>") {
		t.Fatalf("missing home url: %s", doc)
	}
	if strings.Contains(doc, "/posts/draft") {
		t.Fatalf("unpublished posts must not appear: %s", doc)
	}
	if strings.Contains(doc, "\n  <url>") {
		t.Fatalf("sitemap should be minified: %s", doc)
	}
}

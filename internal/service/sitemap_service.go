package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/tdewolff/minify/v2"
	minxml "github.com/tdewolff/minify/v2/xml"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapService 为已发布文章生成 sitemap.xml。
type SitemapService struct {
	posts    *PostService
	baseURL  string
	minifier *minify.M
}

// NewSitemapService 构造 SitemapService。
func NewSitemapService(posts *PostService, baseURL string) *SitemapService {
	m := minify.New()
	m.AddFunc("text/xml", minxml.Minify)
	return &SitemapService{
		posts:    posts,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		minifier: m,
	}
}

// Build 渲染压缩后的 sitemap 文档。
func (s *SitemapService) Build(ctx context.Context) ([]byte, error) {
	posts, err := s.posts.ListPublished(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list posts for sitemap: %w", err)
	}

	set := sitemapURLSet{XMLNS: sitemapNamespace}
	set.URLs = append(set.URLs, sitemapURL{Loc: s.baseURL + "/", ChangeFreq: "daily", Priority: "1.0"})
	for _, post := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/posts/%s", s.baseURL, post.Slug),
			LastMod:    post.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	raw, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	doc := append([]byte(xml.Header), raw...)

	minified, err := s.minifier.Bytes("text/xml", doc)
	if err != nil {
		return nil, fmt.Errorf("minify sitemap: %w", err)
	}
	return minified, nil
}

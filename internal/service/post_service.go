package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wavesignals/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrPostInvalid     = errors.New("title and content are required")
	ErrSlugUnavailable = errors.New("slug is already taken")
)

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title           string
	Slug            string
	Excerpt         string
	Content         string
	Tags            string
	Image           string
	MetaDescription string
	Keywords        []string
	Hashtags        []string
	SearchQueries   []string
	Author          string
	Published       *bool
}

// PostStats 汇总健康检查使用的文章统计。
type PostStats struct {
	Total  int64
	Last24 int64
	Latest *db.Post
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// ListPublished returns published posts ordered by created time descending.
// limit <= 0 returns every post.
func (s *PostService) ListPublished(ctx context.Context, limit int) ([]db.Post, error) {
	query := s.db.WithContext(ctx).Where("published = ?", true).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var posts []db.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches a post by id.
func (s *PostService) Get(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug fetches a post by slug.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(slug)).Take(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Lookup 接受数字 ID 或 slug。
func (s *PostService) Lookup(ctx context.Context, idOrSlug string) (*db.Post, error) {
	if id, err := strconv.ParseUint(idOrSlug, 10, 32); err == nil {
		return s.Get(ctx, uint(id))
	}
	return s.GetBySlug(ctx, idOrSlug)
}

// Create persists a new post. An empty slug is derived from the title, and a
// taken slug gets a numeric suffix.
func (s *PostService) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrPostInvalid
	}

	base := strings.TrimSpace(input.Slug)
	if base == "" {
		base = title
	}
	base = Slugify(base)

	published := true
	if input.Published != nil {
		published = *input.Published
	}

	post := db.Post{
		Title:           title,
		Excerpt:         strings.TrimSpace(input.Excerpt),
		Content:         content,
		Tags:            strings.TrimSpace(input.Tags),
		Image:           strings.TrimSpace(input.Image),
		MetaDescription: strings.TrimSpace(input.MetaDescription),
		Keywords:        input.Keywords,
		Hashtags:        input.Hashtags,
		SearchQueries:   input.SearchQueries,
		Author:          strings.TrimSpace(input.Author),
		Published:       published,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(ctx, tx, base, 0)
		if err != nil {
			return err
		}
		post.Slug = slug
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// Update applies updates to an existing post. Empty fields keep their values.
func (s *PostService) Update(ctx context.Context, id uint, input PostInput) (*db.Post, error) {
	var post db.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if v := strings.TrimSpace(input.Title); v != "" {
			post.Title = v
		}
		if v := strings.TrimSpace(input.Content); v != "" {
			post.Content = v
		}
		if v := strings.TrimSpace(input.Excerpt); v != "" {
			post.Excerpt = v
		}
		if v := strings.TrimSpace(input.Tags); v != "" {
			post.Tags = v
		}
		if v := strings.TrimSpace(input.Image); v != "" {
			post.Image = v
		}
		if v := strings.TrimSpace(input.MetaDescription); v != "" {
			post.MetaDescription = v
		}
		if v := strings.TrimSpace(input.Author); v != "" {
			post.Author = v
		}
		if input.Keywords != nil {
			post.Keywords = input.Keywords
		}
		if input.Hashtags != nil {
			post.Hashtags = input.Hashtags
		}
		if input.SearchQueries != nil {
			post.SearchQueries = input.SearchQueries
		}
		if input.Published != nil {
			post.Published = *input.Published
		}
		if v := strings.TrimSpace(input.Slug); v != "" {
			normalized := Slugify(v)
			if normalized != post.Slug {
				var count int64
				if err := tx.Model(&db.Post{}).Where("slug = ? AND id <> ?", normalized, post.ID).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return ErrSlugUnavailable
				}
				post.Slug = normalized
			}
		}

		return tx.Save(&post).Error
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) || errors.Is(err, ErrSlugUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &post, nil
}

// Delete removes a post permanently.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&db.Post{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Latest 返回最近创建的文章，没有文章时返回 nil。
func (s *PostService) Latest(ctx context.Context) (*db.Post, error) {
	var post db.Post
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(1).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Stats 统计文章总数、最近 24 小时的文章数与最新文章。
func (s *PostService) Stats(ctx context.Context, now time.Time) (PostStats, error) {
	var stats PostStats
	if err := s.db.WithContext(ctx).Model(&db.Post{}).Count(&stats.Total).Error; err != nil {
		return stats, fmt.Errorf("count posts: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&db.Post{}).
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Count(&stats.Last24).Error; err != nil {
		return stats, fmt.Errorf("count recent posts: %w", err)
	}
	latest, err := s.Latest(ctx)
	if err != nil {
		return stats, fmt.Errorf("load latest post: %w", err)
	}
	stats.Latest = latest
	return stats, nil
}

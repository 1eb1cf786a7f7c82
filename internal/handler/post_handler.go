package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/db"
	"github.com/wavesignals/internal/service"
)

type postRequest struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	Tags            string   `json:"tags"`
	Image           string   `json:"image"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	Hashtags        []string `json:"hashtags"`
	SearchQueries   []string `json:"search_queries"`
	Author          string   `json:"author"`
	Published       *bool    `json:"published"`
}

func (r postRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:           r.Title,
		Slug:            r.Slug,
		Excerpt:         r.Excerpt,
		Content:         r.Content,
		Tags:            r.Tags,
		Image:           r.Image,
		MetaDescription: r.MetaDescription,
		Keywords:        r.Keywords,
		Hashtags:        r.Hashtags,
		SearchQueries:   r.SearchQueries,
		Author:          r.Author,
		Published:       r.Published,
	}
}

// ListPosts 返回已发布文章，最新的在前。
func (a *API) ListPosts(c *gin.Context) {
	posts, err := a.posts.ListPublished(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}
	if posts == nil {
		posts = []db.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost 按数字 ID 或 slug 返回单篇文章。
func (a *API) GetPost(c *gin.Context) {
	post, err := a.posts.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost 创建新文章。
func (a *API) CreatePost(c *gin.Context) {
	var payload postRequest
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	post, err := a.posts.Create(c.Request.Context(), payload.toInput())
	if err != nil {
		if errors.Is(err, service.ErrPostInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error("create post failed", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost 更新文章，空字段保持原值。
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var payload postRequest
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	post, err := a.posts.Update(c.Request.Context(), id, payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrSlugUnavailable):
			respondError(c, http.StatusConflict, err.Error())
		default:
			a.logger.Error("update post failed", "post_id", id, "error", err)
			respondError(c, http.StatusInternalServerError, "failed to update post")
		}
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost 删除文章。
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := a.posts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": id})
}

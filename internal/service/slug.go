package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/wavesignals/internal/db"
	"gorm.io/gorm"
)

var slugStripper = strings.NewReplacer(":", "", "?", "", "(", "", ")", "", "'", "")

// Slugify 把标题转换为 URL 片段：转小写、去掉 : ? ( ) '、空白替换为连字符。
// 结果仍不是合法 slug 时交给 gosimple/slug 规范化。同一输入总是得到同一输出。
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripper.Replace(s)
	s = strings.Join(strings.Fields(s), "-")
	if !slug.IsSlug(s) {
		s = slug.Make(title)
	}
	if s == "" {
		s = "post"
	}
	return s
}

// uniqueSlug 在 base 已被占用时依次追加 -2、-3……直到唯一。
// excludeID 非零时忽略该文章自身。
func uniqueSlug(ctx context.Context, tx *gorm.DB, base string, excludeID uint) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		query := tx.WithContext(ctx).Model(&db.Post{}).Where("slug = ?", candidate)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

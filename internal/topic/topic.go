// Package topic 提供文章主题目录与随机选择。
package topic

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Topic 是一次生成所使用的主题，选出后不再修改。
type Topic struct {
	Category string
	Title    string
}

// Category 是目录中的一个分类及其主题列表。
type Category struct {
	Name   string   `yaml:"name"`
	Topics []string `yaml:"topics"`
}

// Catalog 是两级主题目录：先随机选分类，再在分类内随机选主题。
type Catalog struct {
	categories []Category
	intn       func(n int) int
}

// ErrEmptyCatalog 表示目录中没有任何可用主题。
var ErrEmptyCatalog = errors.New("topic catalog is empty")

// NewCatalog 校验并构造目录，空分类与空白主题会被忽略。
func NewCatalog(categories []Category) (*Catalog, error) {
	cleaned := make([]Category, 0, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		topics := make([]string, 0, len(c.Topics))
		for _, title := range c.Topics {
			if trimmed := strings.TrimSpace(title); trimmed != "" {
				topics = append(topics, trimmed)
			}
		}
		if len(topics) == 0 {
			continue
		}
		cleaned = append(cleaned, Category{Name: name, Topics: topics})
	}
	if len(cleaned) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &Catalog{categories: cleaned, intn: rand.IntN}, nil
}

// Default 返回内置目录。
func Default() *Catalog {
	catalog, err := NewCatalog(builtinCategories)
	if err != nil {
		panic(err)
	}
	return catalog
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadFile 从 YAML 文件读取目录，path 为空时返回内置目录。
func LoadFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse topic catalog %s: %w", path, err)
	}
	return NewCatalog(file.Categories)
}

// SetRandom 替换随机数来源，主要面向测试场景。
func (c *Catalog) SetRandom(intn func(n int) int) {
	if intn == nil {
		intn = rand.IntN
	}
	c.intn = intn
}

// Pick 随机选出一个主题。
func (c *Catalog) Pick() Topic {
	category := c.categories[c.intn(len(c.categories))]
	title := category.Topics[c.intn(len(category.Topics))]
	return Topic{Category: category.Name, Title: title}
}

// Categories 返回目录的副本。
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, category := range c.categories {
		out[i] = Category{Name: category.Name, Topics: append([]string(nil), category.Topics...)}
	}
	return out
}

// Size 返回主题总数。
func (c *Catalog) Size() int {
	total := 0
	for _, category := range c.categories {
		total += len(category.Topics)
	}
	return total
}

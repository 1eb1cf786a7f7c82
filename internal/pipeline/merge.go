package pipeline

import "strings"

// mergeUnique 按顺序合并多个列表，忽略大小写去重，最多保留 limit 项。
func mergeUnique(limit int, lists ...[]string) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, item := range list {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if _, ok := seen[key]; ok {
				continue
			}
			if len(out) >= limit {
				return out
			}
			seen[key] = struct{}{}
			out = append(out, trimmed)
		}
	}
	return out
}

func firstN(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		trimmed = strings.Join(strings.Fields(trimmed), "")
		if trimmed == "" || trimmed == "#" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			trimmed = "#" + trimmed
		}
		out = append(out, trimmed)
	}
	return out
}

// mergeLists 合并研究阶段与编辑阶段的列表，研究阶段的条目排在前面。
func mergeLists(research KeywordBundle, edited EditedPost) (keywords, hashtags, queries []string) {
	keywords = mergeUnique(MaxKeywords, research.Primary, firstN(research.LongTail, longTailTaken), edited.Keywords)
	hashtags = mergeUnique(MaxHashtags, research.Hashtags, normalizeHashtags(edited.Hashtags))
	queries = mergeUnique(MaxSearchQueries, research.SearchQueries, edited.SearchQueries)
	return keywords, hashtags, queries
}

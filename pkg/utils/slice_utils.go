package utils

import "strings"

// UniqueStrings 去除空字符串和重复项，保持首次出现的顺序。结果永远不为 nil。
func UniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeTags 去除标签首尾空白并转为小写，再去重
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(t)))
	}
	return UniqueStrings(normalized)
}

package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"wiki-api/pkg/store"
)

func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean(target)
	if strings.Contains(cleanTarget, "..") {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// Slug turns a title into a file name stem.
func Slug(title string) string {
	if stem := slug.Make(title); stem != "" {
		return stem
	}
	return "article"
}

// ExportDir writes every article to dir as <slug>.md and returns the
// number of files written. Duplicate slugs get a numeric suffix.
func ExportDir(ctx context.Context, s store.Store, dir, format string) (int, error) {
	articles, err := s.Find(ctx)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}

	used := make(map[string]bool, len(articles))
	for i, article := range articles {
		stem := uniqueStem(used, Slug(article.Title))

		content, err := ArticleToFile(article, format)
		if err != nil {
			return i, fmt.Errorf("render %q: %w", article.Title, err)
		}
		path := SafeJoin(dir, "", stem+".md")
		if err := os.WriteFile(path, content, 0644); err != nil {
			return i, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return len(articles), nil
}

// uniqueStem returns base, or base-N with the smallest free N, and marks it used.
func uniqueStem(used map[string]bool, base string) string {
	stem := base
	for n := 2; used[stem]; n++ {
		stem = base + "-" + strconv.Itoa(n)
	}
	used[stem] = true
	return stem
}

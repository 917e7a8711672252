package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wiki-api/pkg/metrics"
	"wiki-api/pkg/store"
)

// ImportResult summarizes an ImportDir run.
type ImportResult struct {
	Imported int
	Skipped  int
}

// Importer loads Markdown files into the store.
type Importer struct {
	store       store.Store
	logger      *zap.Logger
	concurrency int
}

func NewImporter(s store.Store, logger *zap.Logger, concurrency int) *Importer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Importer{store: s, logger: logger.Named("import"), concurrency: concurrency}
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func markdownFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isMarkdown(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ImportDir inserts one article per Markdown file under dir. Files are
// inserted concurrently, so the resulting store order is not the walk order.
// Empty files are skipped. The first failure cancels the remaining work.
func (im *Importer) ImportDir(ctx context.Context, dir string) (ImportResult, error) {
	files, err := markdownFiles(dir)
	if err != nil {
		return ImportResult{}, fmt.Errorf("walk %s: %w", dir, err)
	}

	var imported, skipped atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)

	for _, path := range files {
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				metrics.ImportedArticlesTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("read %s: %w", path, err)
			}
			if len(strings.TrimSpace(string(content))) == 0 {
				skipped.Add(1)
				metrics.ImportedArticlesTotal.WithLabelValues("skipped").Inc()
				im.logger.Debug("Skipping empty file", zap.String("path", path))
				return nil
			}

			article := ArticleFromFile(path, content)
			if err := im.store.Insert(ctx, article); err != nil {
				metrics.ImportedArticlesTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("insert %s: %w", path, err)
			}
			imported.Add(1)
			metrics.ImportedArticlesTotal.WithLabelValues("ok").Inc()
			im.logger.Debug("Imported article", zap.String("path", path), zap.String("title", article.Title))
			return nil
		})
	}

	err = g.Wait()
	result := ImportResult{Imported: int(imported.Load()), Skipped: int(skipped.Load())}
	return result, err
}

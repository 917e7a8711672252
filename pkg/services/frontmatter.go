package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"wiki-api/pkg/models"
)

// Supported front matter formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

var errNoFrontMatter = errors.New("no front matter")

func ParseFrontMatter(content []byte) (map[string]interface{}, string, string, error) {
	str := normalizeLineEndings(string(content))
	// Check for YAML (---)
	if strings.HasPrefix(str, "---\n") {
		parts := strings.SplitN(str, "---", 3) // "", FM, Body
		if len(parts) == 3 {
			var fm map[string]interface{}
			if err := yaml.Unmarshal([]byte(parts[1]), &fm); err == nil {
				return sanitizeFrontMatter(fm), strings.TrimSpace(parts[2]), FormatYAML, nil
			}
		}
	}
	// Check for TOML (+++)
	if strings.HasPrefix(str, "+++\n") {
		parts := strings.SplitN(str, "+++", 3)
		if len(parts) == 3 {
			var fm map[string]interface{}
			if err := toml.Unmarshal([]byte(parts[1]), &fm); err == nil {
				return fm, strings.TrimSpace(parts[2]), FormatTOML, nil
			}
		}
	}
	// Check for JSON ({)
	if strings.HasPrefix(strings.TrimSpace(str), "{") {
		var fm map[string]interface{}
		if err := json.Unmarshal(content, &fm); err == nil {
			return fm, "", FormatJSON, nil
		}
	}

	return nil, "", "", errNoFrontMatter
}

func ConstructFileContent(fm map[string]interface{}, body string, format string) ([]byte, error) {
	normalizedFM := sanitizeFrontMatter(fm)
	if normalizedFM == nil {
		normalizedFM = map[string]interface{}{}
	}

	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	case FormatTOML:
		buf.WriteString("+++\n")
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		buf.WriteString("+++\n")
	case FormatJSON:
		// JSON files have no body section.
		if body != "" {
			normalizedFM["content"] = body
		}
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ArticleFromFile builds an article from a Markdown file. The title comes
// from front matter, falling back to the file name when the key is missing;
// content is the body.
func ArticleFromFile(name string, content []byte) models.Article {
	article := models.Article{
		Title: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
	}

	fm, body, _, err := ParseFrontMatter(content)
	if err != nil {
		article.Content = strings.TrimSpace(normalizeLineEndings(string(content)))
		return article
	}
	if t, ok := fm["title"].(string); ok {
		article.Title = t
	}
	article.Content = body
	if c, ok := fm["content"].(string); ok && body == "" {
		article.Content = c
	}
	return article
}

// ArticleToFile renders an article as a Markdown file with front matter.
// The title key is always written so an untitled article does not pick up
// its file name on import.
func ArticleToFile(article models.Article, format string) ([]byte, error) {
	fm := map[string]interface{}{"title": article.Title}
	return ConstructFileContent(fm, article.Content, format)
}

func sanitizeFrontMatter(fm map[string]interface{}) map[string]interface{} {
	if fm == nil {
		return nil
	}
	sanitized := make(map[string]interface{}, len(fm))
	for k, v := range fm {
		sanitized[k] = sanitizeFrontMatterValue(v)
	}
	return sanitized
}

func sanitizeFrontMatterValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return sanitizeFrontMatter(v)
	case map[interface{}]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, inner := range v {
			normalized[fmt.Sprint(key)] = sanitizeFrontMatterValue(inner)
		}
		return normalized
	case []interface{}:
		slice := make([]interface{}, len(v))
		for i := range v {
			slice[i] = sanitizeFrontMatterValue(v[i])
		}
		return slice
	default:
		return v
	}
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}

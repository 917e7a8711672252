package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"wiki-api/pkg/models"
)

// jsonDoc is the JSON body stored by the SQL backends. Empty fields are
// omitted so a replace leaves them absent.
type jsonDoc struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

func encodeDoc(a models.Article) (string, error) {
	b, err := json.Marshal(jsonDoc{Title: a.Title, Content: a.Content})
	if err != nil {
		return "", fmt.Errorf("encode article: %w", err)
	}
	return string(b), nil
}

// encodePatch keeps present empty strings, unlike encodeDoc.
func encodePatch(p models.ArticlePatch) (string, error) {
	b, err := json.Marshal(p.Fields())
	if err != nil {
		return "", fmt.Errorf("encode patch: %w", err)
	}
	return string(b), nil
}

func decodeDoc(id int64, raw []byte) (models.Article, error) {
	var d jsonDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Article{}, fmt.Errorf("decode article %d: %w", id, err)
	}
	return models.Article{ID: strconv.FormatInt(id, 10), Title: d.Title, Content: d.Content}, nil
}

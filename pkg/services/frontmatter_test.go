package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki-api/pkg/models"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantTitle  string
		wantBody   string
		wantFormat string
		wantErr    bool
	}{
		{
			name:       "yaml",
			content:    "---\ntitle: Intro\n---\nHello\n",
			wantTitle:  "Intro",
			wantBody:   "Hello",
			wantFormat: FormatYAML,
		},
		{
			name:       "yaml with crlf",
			content:    "---\r\ntitle: Intro\r\n---\r\nHello\r\n",
			wantTitle:  "Intro",
			wantBody:   "Hello",
			wantFormat: FormatYAML,
		},
		{
			name:       "toml",
			content:    "+++\ntitle = \"REST\"\n+++\n\nRepresentational\n",
			wantTitle:  "REST",
			wantBody:   "Representational",
			wantFormat: FormatTOML,
		},
		{
			name:       "json",
			content:    `{"title": "API", "content": "Application"}`,
			wantTitle:  "API",
			wantFormat: FormatJSON,
		},
		{
			name:    "plain markdown",
			content: "# Heading\n\nNo front matter here.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, format, err := ParseFrontMatter([]byte(tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, fm["title"])
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestArticleFromFile(t *testing.T) {
	a := ArticleFromFile("docs/intro.md", []byte("---\ntitle: Intro\n---\nHello"))
	assert.Equal(t, models.Article{Title: "Intro", Content: "Hello"}, a)

	a = ArticleFromFile("docs/Jack Bauer.md", []byte("Agent of CTU.\n"))
	assert.Equal(t, models.Article{Title: "Jack Bauer", Content: "Agent of CTU."}, a)

	a = ArticleFromFile("docs/untitled.md", []byte("---\ndraft: true\n---\nBody"))
	assert.Equal(t, "untitled", a.Title)

	a = ArticleFromFile("docs/article.md", []byte("---\ntitle: \"\"\n---\nBody"))
	assert.Equal(t, models.Article{Content: "Body"}, a)

	a = ArticleFromFile("api.md", []byte(`{"title":"API","content":"Application"}`))
	assert.Equal(t, models.Article{Title: "API", Content: "Application"}, a)
}

func TestArticleFileRoundTrip(t *testing.T) {
	want := models.Article{Title: "Intro: part 1", Content: "Hello\n\nWorld"}
	for _, format := range []string{FormatYAML, FormatTOML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			content, err := ArticleToFile(want, format)
			require.NoError(t, err)
			assert.Equal(t, want, ArticleFromFile("ignored.md", content))
		})
	}
}

func TestConstructFileContent_UnknownFormat(t *testing.T) {
	_, err := ConstructFileContent(map[string]interface{}{"title": "x"}, "", "ini")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestSanitizeFrontMatter(t *testing.T) {
	fm := sanitizeFrontMatter(map[string]interface{}{
		"meta": map[interface{}]interface{}{1: "one"},
		"tags": []interface{}{map[interface{}]interface{}{"k": "v"}},
	})
	assert.Equal(t, map[string]interface{}{"1": "one"}, fm["meta"])
	assert.Equal(t, []interface{}{map[string]interface{}{"k": "v"}}, fm["tags"])
	assert.Nil(t, sanitizeFrontMatter(nil))
}

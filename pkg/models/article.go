package models

// Article is a single document of the articles collection.
type Article struct {
	ID      string `json:"_id,omitempty" bson:"_id,omitempty"`
	Title   string `json:"title,omitempty" bson:"title,omitempty"`
	Content string `json:"content,omitempty" bson:"content,omitempty"`
}

// ArticlePatch carries the fields a merge update should overwrite.
// A nil field is left untouched.
type ArticlePatch struct {
	Title   *string `json:"title" form:"title"`
	Content *string `json:"content" form:"content"`
}

func (p ArticlePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}

// Fields returns the present fields keyed by document field name.
func (p ArticlePatch) Fields() map[string]string {
	fields := make(map[string]string, 2)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		fields["content"] = *p.Content
	}
	return fields
}

// Apply merges the patch into a copy of a.
func (p ArticlePatch) Apply(a Article) Article {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	return a
}

// Article converts the patch to a full document, absent fields left empty.
func (p ArticlePatch) Article() Article {
	return p.Apply(Article{})
}

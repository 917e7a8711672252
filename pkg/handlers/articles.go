package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wiki-api/pkg/models"
	"wiki-api/pkg/store"
)

// Response bodies sent on success.
const (
	MsgArticleAdded    = "Successfully added a new article."
	MsgArticlesDeleted = "Successfully deleted all articles."
	MsgArticleReplaced = "Successfully replaced the selected article."
	MsgArticleUpdated  = "Successfully updated the selected article."
	MsgArticleDeleted  = "Successfully deleted the selected article."
	MsgArticleNotFound = "No articles matching that title was found."
)

const (
	articleTitleParam  = "articleTitle"
	invalidRequestBody = "Invalid request body"
)

// ArticleHandler serves the articles collection. Store failures are
// reported in the body with status 200; clients tell them apart by content.
type ArticleHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewArticleHandler(s store.Store, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{store: s, logger: logger.Named("articles")}
}

func (h *ArticleHandler) Register(r gin.IRouter) {
	r.GET("/articles", h.ListArticles)
	r.POST("/articles", h.CreateArticle)
	r.DELETE("/articles", h.DeleteArticles)

	item := "/articles/:" + articleTitleParam
	r.GET(item, h.GetArticle)
	r.PUT(item, h.ReplaceArticle)
	r.PATCH(item, h.UpdateArticle)
	r.DELETE(item, h.DeleteArticle)
}

func (h *ArticleHandler) storeError(c *gin.Context, err error) {
	h.logger.Warn("Store operation failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusOK, gin.H{"error": err.Error()})
}

// bindFields reads title and content from a form or JSON body.
func bindFields(c *gin.Context) (models.ArticlePatch, bool) {
	var fields models.ArticlePatch
	if err := c.ShouldBind(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidRequestBody})
		return fields, false
	}
	return fields, true
}

func (h *ArticleHandler) ListArticles(c *gin.Context) {
	articles, err := h.store.Find(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	if err := h.store.Insert(c.Request.Context(), fields.Article()); err != nil {
		h.storeError(c, err)
		return
	}
	c.String(http.StatusOK, MsgArticleAdded)
}

func (h *ArticleHandler) DeleteArticles(c *gin.Context) {
	if err := h.store.DeleteAll(c.Request.Context()); err != nil {
		h.storeError(c, err)
		return
	}
	c.String(http.StatusOK, MsgArticlesDeleted)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	title := c.Param(articleTitleParam)
	article, err := h.store.FindOne(c.Request.Context(), title)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("Find article failed", zap.String("title", title), zap.Error(err))
		}
		c.String(http.StatusOK, MsgArticleNotFound)
		return
	}
	c.JSON(http.StatusOK, article)
}

// ReplaceArticle overwrites the whole document; omitted fields become absent.
func (h *ArticleHandler) ReplaceArticle(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	if err := h.store.Replace(c.Request.Context(), c.Param(articleTitleParam), fields.Article()); err != nil {
		h.storeError(c, err)
		return
	}
	c.String(http.StatusOK, MsgArticleReplaced)
}

// UpdateArticle merges only the fields present in the body.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	if err := h.store.Update(c.Request.Context(), c.Param(articleTitleParam), fields); err != nil {
		h.storeError(c, err)
		return
	}
	c.String(http.StatusOK, MsgArticleUpdated)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	if err := h.store.DeleteOne(c.Request.Context(), c.Param(articleTitleParam)); err != nil {
		h.storeError(c, err)
		return
	}
	c.String(http.StatusOK, MsgArticleDeleted)
}

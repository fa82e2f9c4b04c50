package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockfinder/internal/domain"
)

type Pipelines interface {
	RunArticle(ctx context.Context, url string) domain.ArticleResult
	RunQuery(ctx context.Context, query string) domain.QueryResult
	Run(ctx context.Context, url, query string) (*domain.ArticleResult, *domain.QueryResult)
}

type Handler struct {
	pipelines Pipelines
	log       zerolog.Logger
}

func NewHandler(pipelines Pipelines, log zerolog.Logger) *Handler {
	return &Handler{pipelines: pipelines, log: log}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) PostArticle(c *gin.Context) {
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	res := h.pipelines.RunArticle(c.Request.Context(), req.URL)
	status := http.StatusOK
	if res.Err != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, newArticleResponse(res))
}

func (h *Handler) PostQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	res := h.pipelines.RunQuery(c.Request.Context(), req.Query)
	status := http.StatusOK
	if res.Err != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, newQueryResponse(res))
}

// PostAnalyze runs each pipeline whose input is present. Pipeline errors are
// reported in their own section and never change the status code.
func (h *Handler) PostAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url or query is required"})
		return
	}

	articleRes, queryRes := h.pipelines.Run(c.Request.Context(), req.URL, req.Query)
	var res AnalyzeResponse
	if articleRes != nil {
		a := newArticleResponse(*articleRes)
		res.Article = &a
	}
	if queryRes != nil {
		q := newQueryResponse(*queryRes)
		res.Query = &q
	}
	c.JSON(http.StatusOK, res)
}

package handlers

import (
	"net/http"

	"github.com/dentclinicai/dentclinicai-api/internal/content"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

const (
	publicCacheControl = "public, max-age=3600"
	policyLink         = `</.well-known/ai.txt>; rel="policy"`
	csvContentType     = "text/csv; charset=utf-8"
	jsonContentType    = "application/json; charset=utf-8"
)

// ContentHandler serves the read-only site documents
type ContentHandler struct {
	set *content.Set
}

func NewContentHandler(set *content.Set) *ContentHandler {
	return &ContentHandler{set: set}
}

// Answer handles GET /api/answer
func (h *ContentHandler) Answer(c *gin.Context) {
	publicHeaders(c)
	c.Header("Link", `</api/facts>; rel="related", `+policyLink)
	metrics.ContentServed.WithLabelValues("answer", content.SourceDefault).Inc()
	respondOK(c, h.set.Answer)
}

// Facts handles GET /api/facts
func (h *ContentHandler) Facts(c *gin.Context) {
	publicHeaders(c)
	c.Header("Link", policyLink)
	h.serve(c, "facts", h.set.Facts, jsonContentType)
}

// QA handles GET /api/qa
func (h *ContentHandler) QA(c *gin.Context) {
	publicHeaders(c)
	h.serve(c, "qa", h.set.QA, jsonContentType)
}

// Dataset handles GET /api/dataset
func (h *ContentHandler) Dataset(c *gin.Context) {
	publicHeaders(c)
	h.serve(c, "dataset", h.set.Dataset, csvContentType)
}

func (h *ContentHandler) serve(c *gin.Context, name string, p content.Provider, contentType string) {
	doc := p.Content()
	metrics.ContentServed.WithLabelValues(name, doc.Source).Inc()
	c.Data(http.StatusOK, contentType, doc.Data)
}

func publicHeaders(c *gin.Context) {
	c.Header("Cache-Control", publicCacheControl)
	c.Header("X-Robots-Tag", "all")
}

package server

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/render"
)

// queryFacts reads the current facts from the query string
func queryFacts(c *gin.Context) (facts.Facts, bool) {
	f, err := facts.FromValues(c.Request.URL.Query())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return facts.Facts{}, false
	}
	return f, true
}

func (s *Server) renderTimed(c *gin.Context, f facts.Facts, format render.Format) ([]byte, error) {
	start := time.Now()
	data, err := s.pipe.RenderFacts(c.Request.Context(), f, format)
	renderDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	return data, err
}

func (s *Server) handleIndex(c *gin.Context) {
	f, ok := queryFacts(c)
	if !ok {
		return
	}

	svg, err := s.renderTimed(c, f, render.FormatSVG)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}

	v := s.pipe.Explain(f)
	page, err := renderPage(pageData{
		Facts:    f,
		Groups:   formGroups(f),
		Prev:     f.Values().Encode(),
		Graph:    inlineSVG(svg),
		Relevant: len(v.Relevant()),
		Total:    len(v.Nodes),
	})
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "page failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// handleClick applies one radio click. prev carries the facts before the
// click and the field parameters carry the form state after it.
func (s *Server) handleClick(c *gin.Context) {
	prevQuery, err := url.ParseQuery(c.Query("prev"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid prev: " + err.Error()})
		return
	}
	prev, err := facts.FromValues(prevQuery)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// without a clicked field the form is applied as submitted
	if c.Query("field") == "" {
		next, err := facts.FromValues(c.Request.URL.Query())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Redirect(http.StatusSeeOther, withFacts("/", next))
		return
	}

	in := facts.Interaction{Field: facts.Field(c.Query("field")), Value: c.Query("value")}
	form := make(facts.FormState, len(facts.Fields()))
	for _, field := range facts.Fields() {
		form[field] = c.Query(string(field))
	}

	next, err := facts.Reduce(prev, in, form)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	interactionsTotal.WithLabelValues(string(in.Field)).Inc()

	c.Redirect(http.StatusSeeOther, withFacts("/", next))
}

func (s *Server) handleSelect(c *gin.Context) {
	f, ok := queryFacts(c)
	if !ok {
		return
	}

	id := c.Param("node")
	n, found := s.pipe.Graph().Node(id)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such node: " + id})
		return
	}
	if n.Select == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "node is not selectable: " + id})
		return
	}

	next, err := facts.Toggle(f, n.Select.Field, n.Select.Value)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	interactionsTotal.WithLabelValues(string(n.Select.Field)).Inc()

	c.Redirect(http.StatusSeeOther, withFacts("/", next))
}

func (s *Server) handleGraph(c *gin.Context) {
	format, err := render.ParseFormat(c.Param("format"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	f, ok := queryFacts(c)
	if !ok {
		return
	}

	data, err := s.renderTimed(c, f, format)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}

func (s *Server) handleView(c *gin.Context) {
	f, ok := queryFacts(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.pipe.Explain(f))
}

// reduceRequest is the body of POST /api/reduce. A nil Form means the form
// shows the previous facts with the clicked choice checked.
type reduceRequest struct {
	Facts facts.Facts       `json:"facts"`
	Field string            `json:"field" binding:"required"`
	Value string            `json:"value"`
	Form  map[string]string `json:"form"`
}

type reduceResponse struct {
	Facts    facts.Facts `json:"facts"`
	Relevant []string    `json:"relevant"`
}

func (s *Server) handleReduce(c *gin.Context) {
	var req reduceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := facts.Interaction{Field: facts.Field(req.Field), Value: req.Value}
	form, err := formState(req.Facts, in, req.Form)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := facts.Reduce(req.Facts, in, form)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	interactionsTotal.WithLabelValues(req.Field).Inc()

	c.JSON(http.StatusOK, reduceResponse{
		Facts:    next,
		Relevant: s.pipe.Explain(next).Relevant(),
	})
}

// formState builds the post-click form. An explicit form is taken as is.
func formState(prev facts.Facts, in facts.Interaction, raw map[string]string) (facts.FormState, error) {
	if raw != nil {
		form := make(facts.FormState, len(raw))
		var errs []error
		for k, v := range raw {
			field, err := facts.ParseField(k)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			form[field] = v
		}
		return form, errors.Join(errs...)
	}

	form := prev.Form()
	form[in.Field] = in.Value
	return form, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	g := s.pipe.Graph()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"graph":  s.pipe.Fingerprint(),
		"nodes":  len(g.Nodes),
		"edges":  len(g.Edges),
	})
}

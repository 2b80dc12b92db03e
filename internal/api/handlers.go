package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pverdier/veracite/internal/llm"
	"github.com/pverdier/veracite/internal/model"
)

// verifyRequest is the body of POST /verify and POST /improve-content.
// When SectionIDs or JournalIDs are present the context is built from
// those exact passages; otherwise UseContext (default true) selects
// between implicit retrieval and no context at all.
type verifyRequest struct {
	Content    string   `json:"content" binding:"required"`
	SectionIDs []string `json:"section_ids"`
	JournalIDs []string `json:"journal_ids"`
	UseContext *bool    `json:"use_context"`
}

func (r *verifyRequest) useContext() bool {
	return r.UseContext == nil || *r.UseContext
}

// resolveContext turns the request into the context argument for the
// pipeline: explicit passages, nil (implicit retrieval), or a disabled
// context that performs no retrieval at all. Unknown IDs are skipped
// with a warning rather than failing the request.
func (s *Server) resolveContext(c *gin.Context, req *verifyRequest) *model.KnowledgeContext {
	if len(req.SectionIDs) == 0 && len(req.JournalIDs) == 0 {
		if req.useContext() {
			return nil
		}
		return &model.KnowledgeContext{RetrievalDisabled: true}
	}

	kctx := &model.KnowledgeContext{}
	if s.repo == nil {
		s.logger.Warn("explicit context requested but no repository is configured")
		return kctx
	}

	for _, id := range req.SectionIDs {
		sec, err := s.repo.GetSection(c.Request.Context(), id)
		if err != nil {
			s.logger.Warn("section lookup failed", "id", id, "error", err)
			continue
		}
		kctx.Sections = append(kctx.Sections, sec)
	}
	for _, id := range req.JournalIDs {
		entry, err := s.repo.GetJournalEntry(c.Request.Context(), id)
		if err != nil {
			s.logger.Warn("journal lookup failed", "id", id, "error", err)
			continue
		}
		kctx.JournalEntries = append(kctx.JournalEntries, entry)
	}
	return kctx
}

func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kctx := s.resolveContext(c, &req)
	result := s.checker.Check(c.Request.Context(), req.Content, kctx)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.checker.Status())
}

func (s *Server) handleClearCache(c *gin.Context) {
	s.checker.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cache cleared"})
}

// improveResponse augments the check result with the reformulated text.
// Improved equals CorrectedContent when the reformulator is disabled or
// declines.
type improveResponse struct {
	Original          string  `json:"original"`
	Improved          string  `json:"improved"`
	HasHallucinations bool    `json:"has_hallucinations"`
	ConfidenceScore   float64 `json:"confidence_score"`
	SuspectCount      int     `json:"suspect_count"`
	VerifiedCount     int     `json:"verified_count"`
	Reformulated      bool    `json:"reformulated"`
}

func (s *Server) handleImproveContent(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kctx := s.resolveContext(c, &req)
	result := s.checker.Check(c.Request.Context(), req.Content, kctx)

	resp := improveResponse{
		Original:          req.Content,
		Improved:          result.CorrectedContent,
		HasHallucinations: result.HasHallucinations,
		ConfidenceScore:   result.ConfidenceScore,
		SuspectCount:      len(result.SuspectSegments),
		VerifiedCount:     len(result.VerifiedFacts),
	}

	// Reformulation smooths the template corrections; it never changes the
	// verdicts or the score already computed.
	if s.reformulator != nil && result.HasHallucinations {
		reword, err := s.reformulator.Reword(c.Request.Context(), llm.RewordRequest{
			Original:  req.Content,
			Corrected: result.CorrectedContent,
			Facts:     result.VerifiedFacts,
		})
		if err != nil {
			s.logger.Warn("reformulation failed, keeping template corrections", "error", err)
		} else {
			resp.Improved = reword.Content
			resp.Reformulated = true
		}
	}

	c.JSON(http.StatusOK, resp)
}

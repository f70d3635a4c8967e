package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/usecase"
)

type radarRequest struct {
	LookalikeSeeds []domain.EntityRef `json:"lookalikeSeeds"`
	Window         string             `json:"window"`
}

type radarResponse struct {
	Records         []domain.ProspectRecord `json:"records"`
	Added           []domain.ProspectRecord `json:"added"`
	NewlyAddedCount int                     `json:"newlyAddedCount"`
	Attempted       int                     `json:"attempted"`
	Failed          int                     `json:"failed"`
	Documents       int                     `json:"documents"`
}

type addProspectRequest struct {
	Name            string   `json:"name"`
	WhyFit          string   `json:"whyFit"`
	SourceReference string   `json:"sourceArticle"`
	Platforms       []string `json:"platform"`
	ReachEstimate   string   `json:"followersReach"`
	UpsideNotes     string   `json:"upsideNotes"`
	MatchScore      float64  `json:"matchScore"`
	ProfileLink     string   `json:"link"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListProspects(c *gin.Context) {
	records, err := s.prospects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": nonNil(records)})
}

func (s *Server) handleRunRadar(c *gin.Context) {
	var req radarRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	window, ok := parseWindow(req.Window)
	if !ok {
		badRequest(c, "window must be a positive duration such as 24h")
		return
	}

	ctx := c.Request.Context()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	result, err := s.radar.Run(ctx, usecase.RunRequest{LookalikeSeeds: req.LookalikeSeeds, Window: window})
	if err != nil {
		s.logger.Error("radar run failed", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, radarResponse{
		Records:         nonNil(result.Records),
		Added:           nonNil(result.Added),
		NewlyAddedCount: result.NewlyAdded,
		Attempted:       result.Attempted,
		Failed:          result.Failed,
		Documents:       result.Documents,
	})
}

func (s *Server) handleAddProspect(c *gin.Context) {
	var req addProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	platforms := make([]domain.Platform, 0, len(req.Platforms))
	for _, p := range req.Platforms {
		platforms = append(platforms, domain.Platform(p))
	}

	rec, err := s.prospects.AddManual(c.Request.Context(), domain.ProspectCandidate{
		Name:            req.Name,
		WhyFit:          req.WhyFit,
		SourceReference: req.SourceReference,
		Platforms:       platforms,
		ReachEstimate:   req.ReachEstimate,
		UpsideNotes:     req.UpsideNotes,
		MatchScore:      req.MatchScore,
		ProfileLink:     req.ProfileLink,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": rec})
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	rec, err := s.prospects.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

func (s *Server) handleDocuments(c *gin.Context) {
	window, ok := parseWindow(c.Query("window"))
	if !ok {
		badRequest(c, "window must be a positive duration such as 24h")
		return
	}
	docs, err := s.prospects.Documents(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": nonNil(docs)})
}

func (s *Server) handleClients(c *gin.Context) {
	clients, err := s.prospects.Clients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": nonNil(clients)})
}

// parseWindow accepts an empty value (use the configured window) or a
// positive Go duration.
func parseWindow(value string) (time.Duration, bool) {
	if value == "" {
		return 0, true
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

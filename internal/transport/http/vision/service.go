// Package vision exposes the proof pipeline over HTTP: proof issuance,
// proof consumption for reading generation, a status probe and the
// live preview socket.
package vision

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainimage "tarotvision-server-go/internal/domain/image"
	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/domain/proof"
	"tarotvision-server-go/internal/domain/prototype"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
	httptransport "tarotvision-server-go/internal/transport/http"
)

// Service wires the vision domain into gin routes.
type Service struct {
	config   *config.Config
	logger   *logging.Logger
	pipeline *domainimage.Pipeline
	matcher  *match.Matcher
	library  *prototype.Library
	issuer   *proof.Issuer
	verifier *proof.Verifier
}

func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	pipeline *domainimage.Pipeline,
	matcher *match.Matcher,
	library *prototype.Library,
	issuer *proof.Issuer,
	verifier *proof.Verifier,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "vision.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "vision.new", "logger is required")
	}
	if pipeline == nil || matcher == nil || library == nil || issuer == nil || verifier == nil {
		return nil, errors.New(errors.KindConfig, "vision.new", "vision domain dependencies are required")
	}
	return &Service{
		config:   cfg,
		logger:   logger,
		pipeline: pipeline,
		matcher:  matcher,
		library:  library,
		issuer:   issuer,
		verifier: verifier,
	}, nil
}

// Register mounts the vision routes on the API group.
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	group := router.Group("/vision")
	group.GET("", s.handleStatus)
	group.POST("/proof", s.handleIssue)
	group.POST("/reading", s.handleReading)
	group.GET("/preview", s.handlePreview)

	s.logger.InfoTag("HTTP", "vision routes registered")
	return nil
}

func (s *Service) handleStatus(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, StatusData{
		ModelVersion: s.library.ModelVersion(),
		Dimensions:   s.library.Dimensions(),
		DeckStyles:   s.library.DeckStyles(),
		ProofTTL:     s.config.Vision.Proof.TTL.Std().String(),
		MaxImages:    s.config.Vision.Match.MaxImages,
	}, "vision service is running")
}

func (s *Service) handleIssue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	if req.DeckStyle == "" {
		req.DeckStyle = s.config.Vision.DefaultDeckStyle
	}

	raws, err := s.pipeline.ProcessAll(req.payloads())
	if err != nil {
		s.logger.WarnTag("VISION", "issue rejected: %v", err)
		httptransport.RespondDomainError(c, err)
		return
	}

	images := make([]match.UploadedImage, len(raws))
	for i, raw := range raws {
		images[i] = match.UploadedImage{
			PositionIndex: req.Images[i].Position,
			Bytes:         raw,
		}
	}

	start := time.Now()
	issued, err := s.issuer.Issue(c.Request.Context(), images,
		proof.DeclaredSpread{
			DeckStyle: req.DeckStyle,
			Spread:    req.Spread,
			Positions: len(images),
		}, req.scope())
	if err != nil {
		s.logger.WarnTag("VISION", "issue failed after %s: %v", time.Since(start), err)
		httptransport.RespondDomainError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, issued, "proof issued")
}

func (s *Service) handleReading(c *gin.Context) {
	var req ReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	if req.DeckStyle == "" {
		req.DeckStyle = s.config.Vision.DefaultDeckStyle
	}

	claims, err := s.verifier.Verify(c.Request.Context(), req.ProofToken, req.Insights, req.declaredSpread())
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, ReadingData{
		ProofID:   claims.ID,
		DeckStyle: claims.DeckStyle,
		Spread:    claims.Spread,
		Insights:  req.Insights,
	}, "proof verified, generation may proceed")
}

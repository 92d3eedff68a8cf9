// Package bootstrap owns the server lifecycle: configuration, logging,
// the vision pipeline and the HTTP transport, initialised as an
// explicit dependency-ordered step graph and torn down gracefully on
// signal.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"tarotvision-server-go/internal/domain/audit"
	"tarotvision-server-go/internal/domain/embedding"
	"tarotvision-server-go/internal/domain/eventbus"
	domainimage "tarotvision-server-go/internal/domain/image"
	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/domain/proof"
	"tarotvision-server-go/internal/domain/proof/replay"
	"tarotvision-server-go/internal/domain/prototype"
	platformconfig "tarotvision-server-go/internal/platform/config"
	platformerrors "tarotvision-server-go/internal/platform/errors"
	platformlogging "tarotvision-server-go/internal/platform/logging"
	platformobservability "tarotvision-server-go/internal/platform/observability"
	httptransport "tarotvision-server-go/internal/transport/http"
	httpvision "tarotvision-server-go/internal/transport/http/vision"
	httpwebapi "tarotvision-server-go/internal/transport/http/webapi"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Title   string
	Kind    platformerrors.Kind
	Execute stepFn
}

type appState struct {
	config *platformconfig.Config
	logger *platformlogging.Logger

	bus      *eventbus.Bus
	audit    *audit.Recorder
	engine   embedding.Engine
	library  *prototype.Library
	matcher  *match.Matcher
	pipeline *domainimage.Pipeline
	replay   replay.Store
	issuer   *proof.Issuer
	verifier *proof.Verifier
}

// Run drives the whole service lifecycle: init steps, HTTP serving,
// and graceful teardown once a termination signal arrives.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}
	defer state.close()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	if err := startHTTPServer(state, group, groupCtx); err != nil {
		return err
	}

	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		state.logger.Error("server exited with error: %v", err)
		return err
	}
	state.logger.Info("server stopped")
	return nil
}

// InitGraph lists the startup steps in dependency order.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:      "logging:init",
			Title:   "Initialise logging",
			Kind:    platformerrors.KindBootstrap,
			Execute: initLoggingStep,
		},
		{
			ID:      "observability:setup",
			Title:   "Setup observability hooks",
			Kind:    platformerrors.KindBootstrap,
			Execute: setupObservabilityStep,
		},
		{
			ID:      "eventbus:init",
			Title:   "Initialise event bus",
			Kind:    platformerrors.KindBootstrap,
			Execute: initEventBusStep,
		},
		{
			ID:      "audit:open",
			Title:   "Open proof audit log",
			Kind:    platformerrors.KindStorage,
			Execute: openAuditStep,
		},
		{
			ID:      "embedding:init",
			Title:   "Connect embedding model",
			Kind:    platformerrors.KindVision,
			Execute: initEmbeddingStep,
		},
		{
			ID:      "prototypes:load",
			Title:   "Load card prototype library",
			Kind:    platformerrors.KindVision,
			Execute: loadPrototypesStep,
		},
		{
			ID:      "vision:assemble",
			Title:   "Assemble vision pipeline",
			Kind:    platformerrors.KindVision,
			Execute: assembleVisionStep,
		},
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	for _, step := range steps {
		if state.logger != nil {
			state.logger.DebugTag("BOOT", "%s", step.Title)
		}
		if err := step.Execute(ctx, state); err != nil {
			return platformerrors.Wrap(step.Kind, step.ID, step.Title+" failed", err)
		}
	}
	return nil
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	// A missing signing secret is fatal here, before anything serves.
	if err := result.Config.Validate(); err != nil {
		return err
	}
	state.config = result.Config
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger
	logger.Info("configuration loaded, log level %s", state.config.Log.Level)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	_, err := platformobservability.Setup(ctx,
		platformobservability.Config{Enabled: true}, state.logger.Slog())
	return err
}

func initEventBusStep(_ context.Context, state *appState) error {
	state.bus = eventbus.New()
	return nil
}

func openAuditStep(_ context.Context, state *appState) error {
	if !state.config.Vision.Audit.Enabled {
		state.logger.Info("proof audit log disabled")
		return nil
	}
	recorder, err := audit.Open(state.config.Vision.Audit, state.logger)
	if err != nil {
		return err
	}
	if err := recorder.Attach(state.bus); err != nil {
		return err
	}
	state.audit = recorder
	return nil
}

func initEmbeddingStep(_ context.Context, state *appState) error {
	engine, err := embedding.NewClipService(state.config.Vision.Model, state.logger)
	if err != nil {
		return err
	}
	state.engine = engine
	return nil
}

func loadPrototypesStep(_ context.Context, state *appState) error {
	library, err := prototype.Load(state.config.Vision.PrototypesPath)
	if err != nil {
		return err
	}
	if library.Dimensions() != state.engine.Dimensions() {
		return platformerrors.Coded(platformerrors.CodeDimensionMismatch, "prototypes:load",
			fmt.Sprintf("prototype library has %d dimensions, model expects %d",
				library.Dimensions(), state.engine.Dimensions()))
	}
	if !library.HasDeckStyle(state.config.Vision.DefaultDeckStyle) {
		return platformerrors.New(platformerrors.KindConfig, "prototypes:load",
			fmt.Sprintf("default deck style %q not present in prototype library",
				state.config.Vision.DefaultDeckStyle))
	}
	state.library = library
	state.logger.Info("prototype library loaded: model %s, decks %s",
		library.ModelVersion(), strings.Join(library.DeckStyles(), ", "))
	return nil
}

func assembleVisionStep(_ context.Context, state *appState) error {
	cfg := state.config
	state.matcher = match.NewMatcher(state.engine, state.library, cfg.Vision.Match, state.logger)
	state.pipeline = domainimage.NewPipeline(cfg.Vision.Upload, state.logger)

	store, err := replay.New(cfg.Vision.Proof.Replay)
	if err != nil {
		return err
	}
	state.replay = store

	state.issuer = proof.NewIssuer(state.matcher, cfg.Vision.Proof,
		cfg.Vision.Match.MaxImages, state.bus, state.logger)
	state.verifier = proof.NewVerifier(cfg.Vision.Proof, store, state.bus, state.logger)
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) error {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			httptransport.RespondError(c, http.StatusNotFound, "api not found", gin.H{})
			return
		}
		if config.Web.Enabled {
			c.File(config.Web.StaticDir + "/index.html")
			return
		}
		c.Status(http.StatusNotFound)
	})

	visionService, err := httpvision.NewService(config, logger,
		state.pipeline, state.matcher, state.library, state.issuer, state.verifier)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindVision, "vision:new-service",
			"failed to create vision service", err)
	}
	webapiService, err := httpwebapi.NewService(config, logger, state.audit)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "webapi:new-service",
			"failed to create webapi service", err)
	}

	if err := visionService.Register(groupCtx, httpRouter.API); err != nil {
		return err
	}
	if err := webapiService.Register(groupCtx, httpRouter.API); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "serving on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down cleanly")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "serve failed: %v", err)
			return err
		}
		return nil
	})
	return nil
}

// close tears down resources in reverse dependency order.
func (s *appState) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.replay != nil {
		_ = s.replay.Close(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Close()
	}
	if s.engine != nil {
		_ = s.engine.Close()
	}
	if s.logger != nil {
		s.logger.Close()
	}
}

// Package web wires the fiber application: middleware, handlers and the
// lifecycle of the HTTP listener.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	fiberlogger "github.com/ambulancia-platform/ms-auth/internal/logger/adapter/fiber"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler/authn"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler/me"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler/permission"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler/role"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler/user"
	authmw "github.com/ambulancia-platform/ms-auth/internal/web/middleware/auth"
)

// Version is the service version, set at build time via ldflags.
var Version = "dev"

const checkAliveURI = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *coreauth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// AuthService exposes the wired authentication service, mainly for tests.
func (s *Service) AuthService() *coreauth.Service {
	return s.authService
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   jsonErrorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access log middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAliveURI,
	}))

	authService := coreauth.NewService(db, cfg.Auth)

	// bearer token middleware (resolves identity, never rejects by itself)
	app.Use(authmw.New(db, authService))

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}

	// init handlers (they register their own routes with permission checks)
	mustInit(authn.Handler.Init(app, cfg, authService))
	mustInit(me.Handler.Init(app, cfg, authService))
	mustInit(user.Handler.Init(app, cfg, authService))
	mustInit(role.Handler.Init(app, cfg, authService))
	mustInit(permission.Handler.Init(app, cfg, authService))

	app.Get(checkAliveURI, service.checkAlive)
	app.Get("/version", service.version)

	return service
}

func mustInit(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("handler init failed")
	}
}

// checkAlive is the load balancer probe. It flips to 503 during the drain
// window before the listener stops.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("alive")
}

func (s *Service) version(c *fiber.Ctx) error {
	return handler.OK(c, "ok", fiber.Map{
		"name":    s.cfg.Title,
		"version": Version,
	})
}

// jsonErrorHandler renders unhandled fiber errors as the JSON failure
// envelope instead of fiber's plain text default.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": "internal server error",
		})
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/configs"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"github.com/hilthontt/chatroom/internal/infrastructure/metrics"
	authHandler "github.com/hilthontt/chatroom/internal/presentation/handler/auth"
	healthHandler "github.com/hilthontt/chatroom/internal/presentation/handler/health"
	profileHandler "github.com/hilthontt/chatroom/internal/presentation/handler/profile"
	realtimeHandler "github.com/hilthontt/chatroom/internal/presentation/handler/realtime"
	roomHandler "github.com/hilthontt/chatroom/internal/presentation/handler/rooms"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const pageTimeout = 60 * time.Second

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

type Handlers struct {
	Auth     *authHandler.Handler
	Profile  *profileHandler.Handler
	Rooms    *roomHandler.Handler
	Health   *healthHandler.Handler
	Realtime *realtimeHandler.Handler
}

type Application struct {
	config   configs.Config
	handlers Handlers
	sessions SessionResolver
	cookies  utils.CookieConfig
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewApplication(
	config configs.Config,
	handlers Handlers,
	sessions SessionResolver,
	logger logging.Logger,
	metrics *metrics.Metrics,
) *Application {
	return &Application{
		config:   config,
		handlers: handlers,
		sessions: sessions,
		cookies: utils.CookieConfig{
			Name:   config.Session.CookieName,
			Secure: config.Session.Secure,
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(app.prometheusMiddleware)
	r.Use(app.enableCors)
	r.Use(app.methodOverride)
	r.Use(app.sessionMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(pageTimeout))

		r.Get("/", app.handlers.Auth.IndexHandler)
		r.Get("/registration", app.handlers.Auth.GetRegistrationHandler)
		r.Post("/registration", app.handlers.Auth.RegistrationHandler)
		r.Get("/login", app.handlers.Auth.GetLoginHandler)
		r.Post("/login", app.handlers.Auth.LoginHandler)
		r.Post("/logout", app.handlers.Auth.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireUser)

			r.Get("/home", app.handlers.Rooms.HomeHandler)

			r.Get("/profile", app.handlers.Profile.GetProfileHandler)
			r.Post("/profile", app.handlers.Profile.UpdateProfileHandler)
			r.Put("/profile", app.handlers.Profile.UpdateProfileHandler)
			r.Get("/profile/success", app.handlers.Profile.GetProfileSuccessHandler)

			r.Route("/chatrooms", func(r chi.Router) {
				r.Get("/", app.handlers.Rooms.ListRoomsHandler)
				r.Post("/", app.handlers.Rooms.CreateRoomHandler)
				r.Get("/new", app.handlers.Rooms.NewRoomHandler)
				r.Get("/{id}", app.handlers.Rooms.GetRoomHandler)
				r.Put("/{id}", app.handlers.Rooms.UpdateRoomHandler)
				r.Delete("/{id}", app.handlers.Rooms.DeleteRoomHandler)
				r.Get("/{id}/edit", app.handlers.Rooms.EditRoomHandler)
				r.Get("/{id}/audit", app.handlers.Rooms.RoomAuditHandler)
			})
		})
	})

	// no page timeout: the connection lives as long as the socket
	r.With(app.requireUser).Get("/ws", app.handlers.Realtime.ConnectHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.handlers.Health.GetHealth)
		r.Get("/healthz", app.handlers.Health.GetHealth)
	})

	r.Handle("/metrics", app.metrics.Handler())

	return otelhttp.NewHandler(r, "chatroom-http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}

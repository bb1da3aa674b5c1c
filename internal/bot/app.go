package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"coursebot/core/bootstrap"
	"coursebot/core/logger"
	coretelegram "coursebot/core/telegram"
	"coursebot/core/telegram/commands"
	"coursebot/core/telegram/middleware"
	"coursebot/core/telegram/router"
	"coursebot/internal/course"
	"coursebot/internal/storage"
)

// App owns the wired application: storage, course engine, and transport.
type App struct {
	cfg       *Config
	db        *sqlx.DB
	users     *storage.Store
	engine    *course.Engine
	transport *Transport
}

// New bootstraps infrastructure and loads the course document.
func New(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	steps, err := course.Load(cfg.Course.ContentPath, cfg.Course.VideosDir)
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("load course content: %w", err)
	}

	users := storage.New(res.DB)
	transport := NewTransport()
	renderer := course.NewRenderer(transport, users, cfg.Course.MediaCache, cfg.Course.MaxMessageLen)
	engine := course.NewEngine(steps, renderer, users)

	gated := 0
	for _, s := range steps {
		if s.Gated() {
			gated++
		}
	}
	logger.Info(context.Background(), "course", "content.loaded",
		slog.Int("steps", len(steps)),
		slog.Int("gated", gated),
		slog.String("path", cfg.Course.ContentPath),
	)

	return &App{
		cfg:       cfg,
		db:        res.DB,
		users:     users,
		engine:    engine,
		transport: transport,
	}, nil
}

// TelegramRunOptions assembles the registry, routes, and middleware chain.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	h := NewHandlers(a.engine, a.users)
	adm := NewAdmin(a.users, a.transport, a.engine.Len())

	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Start the course",
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     h.Reset,
		Description: "Restart the course from the beginning",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Help,
		Description: "How to use this bot",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     adm.Stats,
		Description: "Aggregate user stats",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/broadcast", commands.Command{
		Handler:     adm.Broadcast,
		Description: "Send a message to all active users",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/user", commands.Command{
		Handler:     adm.UserInfo,
		Description: "Show one user's progress",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterCallback(stepCallbackKey, h.StepCallback(stepPayload)); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(h.Text)

	adminIDs := a.cfg.Core.Telegram.AdminIDs
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminIDs: adminIDs})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(reg, router.TextOptions{}))

	mediaEcho := middleware.AdminOnlyMiddleware(middleware.AdminOptions{AdminIDs: adminIDs})(adm.MediaEcho)
	routes = append(routes,
		router.MediaRoute(tele.OnVideo, "media_echo", mediaEcho),
		router.MediaRoute(tele.OnDocument, "media_echo", mediaEcho),
	)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.transport.Bind(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

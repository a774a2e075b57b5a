// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/headlines/app/bot"
	"github.com/Semior001/headlines/app/gnews"
	"github.com/Semior001/headlines/app/revisor"
	"github.com/Semior001/headlines/app/sampler"
	"github.com/Semior001/headlines/app/store"
	"github.com/Semior001/headlines/pkg/botx"
	"github.com/Semior001/headlines/pkg/botx/botapi"
	"github.com/Semior001/headlines/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Run is a command to run the bot.
type Run struct {
	GNews GNewsGroup `group:"gnews" namespace:"gnews" env-namespace:"GNEWS"`

	Bot struct {
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"2m" description:"timeout for requests"`
		Workers int           `long:"workers" env:"WORKERS" default:"10" description:"number of workers to handle updates"`

		Telegram struct {
			Token string `long:"token" env:"TOKEN" description:"telegram token"`
		} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

		Sessions struct {
			TTL time.Duration `long:"ttl" env:"TTL" default:"24h" description:"time to keep an idle session"`
			Max int           `long:"max" env:"MAX" default:"1000" description:"max number of sessions to keep"`
		} `group:"sessions" namespace:"sessions" env-namespace:"SESSIONS"`

		AdminIDs  []string `long:"admin-ids" env:"ADMIN_IDS" env-delim:"," description:"admin IDs"`
		AuthToken string   `long:"auth-token" env:"AUTH_TOKEN" description:"token for authorizing requests, empty to allow everyone"`
	} `group:"bot" namespace:"bot" env-namespace:"BOT"`

	Revisor struct {
		OpenAI struct {
			Token     string        `long:"token" env:"TOKEN" description:"OpenAI token, empty to disable digests"`
			MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"1000" description:"max tokens for OpenAI"`
			Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"5m" description:"timeout for OpenAI calls"`
		} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`
	} `group:"revisor" namespace:"revisor" env-namespace:"REVISOR"`

	StorePath string `long:"store-path" env:"STORE_PATH" default:"." description:"parent dir for bolt files"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	s, err := store.NewBolt(r.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	api, err := botapi.NewTelegram(
		lg.With(slog.String("prefix", "telegram")),
		r.Bot.Telegram.Token,
		100,
	)
	if err != nil {
		return fmt.Errorf("make telegram controller: %w", err)
	}

	cl := gnews.NewClient(lg.With(slog.String("prefix", "gnews")), r.GNews.Endpoint, r.GNews.Timeout)

	ctrl := &bot.Ctrl{
		Logger: lg.With(slog.String("prefix", "bot")),
		Store:  s,
		Sessions: bot.NewSessions(r.Bot.Sessions.TTL, r.Bot.Sessions.Max, func(chatID string) *sampler.Sampler {
			return r.GNews.newSampler(lg.With(slog.String("prefix", "sampler"), slog.String("chat_id", chatID)), cl)
		}),
		API:            api,
		Digester:       r.makeDigester(lg),
		AdminIDs:       r.Bot.AdminIDs,
		AuthToken:      r.Bot.AuthToken,
		HandlerTimeout: r.Bot.Timeout,
		Location:       time.Local,
	}

	if r.GNews.APIKey == "" {
		lg.Warn("gnews api key is not set, every shuffle will fail until it is configured")
	}

	b := botx.NewBot(
		ctrl.Routes().Handle,
		api,
		botx.WithLogger(lg.With(slog.String("prefix", "botx"))),
		botx.WithWorkers(r.Bot.Workers),
	)

	if err := ctrl.NotifyAdmins(context.Background(), "bot started"); err != nil {
		return fmt.Errorf("notify admins about started bot: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sig:
			slog.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			stop()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	ewg.Go(func() error {
		lg.Info("starting bot")
		b.Run(ctx)
		lg.Warn("bot stopped")
		return nil
	})

	// api lives longer than the context, as we want to notify admins about bot stopping
	apiStopped := make(chan struct{})
	go func() {
		lg.Info("starting telegram api")
		api.Run()
		lg.Warn("telegram api stopped listening for updates")
		close(apiStopped)
	}()

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		msg := fmt.Sprintf("bot stopped with error: %v", err)

		if sendErr := ctrl.NotifyAdmins(context.Background(), msg); sendErr != nil {
			return fmt.Errorf("notify admins about stopped bot (for reason: %v): %w", err, sendErr)
		}

		return err
	}

	if err := ctrl.NotifyAdmins(context.Background(), "bot stopped"); err != nil {
		return fmt.Errorf("notify admins about stopped bot: %w", err)
	}

	lg.Info("stopping telegram api")
	api.Stop()
	<-apiStopped
	lg.Info("telegram api stopped")

	return nil
}

func (r Run) makeDigester(lg *slog.Logger) bot.Digester {
	if r.Revisor.OpenAI.Token == "" {
		lg.Info("openai token is not set, digests are disabled")
		return nil
	}

	return revisor.NewService(
		lg.With(slog.String("prefix", "revisor")),
		requester.New(
			http.Client{Timeout: 30 * time.Second},
			middleware.Header("User-Agent", "Mozilla/5.0 (compatible; headlines-bot)"),
			logx.LoggingRoundTripper(lg.With(slog.String("prefix", "page")), logx.RoundTripperOpts{
				Level: slog.LevelDebug,
			}),
		),
		revisor.NewChatGPT(
			lg.With(slog.String("prefix", "chatgpt")),
			&http.Client{Timeout: r.Revisor.OpenAI.Timeout},
			r.Revisor.OpenAI.Token,
			r.Revisor.OpenAI.MaxTokens,
		),
		revisor.NewExtractor(lg.Enabled(context.Background(), slog.LevelDebug)),
	)
}

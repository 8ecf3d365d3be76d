package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/config"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/infra/httpsrv"
	tginfra "github.com/salman-dev-app/telegram-ai-assistant/internal/infra/telegram"
	pgrepo "github.com/salman-dev-app/telegram-ai-assistant/internal/repo/postgres"
	redrepo "github.com/salman-dev-app/telegram-ai-assistant/internal/repo/redis"
	actorssvc "github.com/salman-dev-app/telegram-ai-assistant/internal/services/actors"
	brandsvc "github.com/salman-dev-app/telegram-ai-assistant/internal/services/brand"
	dispatchsvc "github.com/salman-dev-app/telegram-ai-assistant/internal/services/dispatch"
	modsvc "github.com/salman-dev-app/telegram-ai-assistant/internal/services/moderation"
	providersvc "github.com/salman-dev-app/telegram-ai-assistant/internal/services/provider"
	ratesvc "github.com/salman-dev-app/telegram-ai-assistant/internal/services/rate"
	spamsvc "github.com/salman-dev-app/telegram-ai-assistant/internal/services/spam"
)

const languagePromptText = "Which language should I answer in? / Kon bhashay kotha bolbo?"

type App struct {
	cfg    config.Config
	logger *zap.Logger

	postgres *pgxpool.Pool
	redis    *goredis.Client
	bot      *tginfra.Bot

	stateRepo *pgrepo.StateRepo
	actorRepo *pgrepo.ActorRepo

	actors  *actorssvc.Service
	engine  *modsvc.Engine
	brand   *brandsvc.Service
	gateway *dispatchsvc.Service
	httpSrv *httpsrv.Server

	inflight sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config, cfgPath string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var bot *tginfra.Bot
	if strings.TrimSpace(cfg.Telegram.Token) != "" {
		bot, err = tginfra.NewBot(cfg.Telegram.Token)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
	} else {
		logger.Warn("BOT_TOKEN is empty, telegram listener disabled")
	}

	var platform platformActions = noopPlatform{}
	if bot != nil {
		platform = bot
	}

	stateRepo := pgrepo.NewStateRepo(pool)
	actorRepo := pgrepo.NewActorRepo(pool)

	actors := actorssvc.NewService(cfg.Dispatch.RecentHistorySize)
	limiter := ratesvc.NewLimiter(
		redrepo.NewRateRepo(redisClient),
		cfg.Dispatch.RateCeilingPerMinute,
		logger.Named("rate"),
	)
	detector := spamsvc.NewDetector(actors, spamsvc.Config{
		MinLength:       cfg.Dispatch.SpamMinLength,
		MaxLength:       cfg.Dispatch.SpamMaxLength,
		RepeatThreshold: cfg.Dispatch.SpamRepeatThreshold,
		PunctuationRun:  cfg.Dispatch.PunctuationRun,
	})
	engine := modsvc.NewEngine(modsvc.Config{
		DefaultRules: model.RuleSet{
			AntiSpam:     cfg.Moderation.AntiSpam,
			AntiCaps:     cfg.Moderation.AntiCaps,
			AntiRepeated: cfg.Moderation.AntiRepeated,
			AntiLinks:    cfg.Moderation.AntiLinks,
			BannedWords:  cfg.Moderation.BannedWords,
		},
		CapsMinLength:       cfg.Moderation.CapsMinLength,
		RepeatedRunLength:   cfg.Moderation.RepeatedRunLength,
		EscalationCeiling:   cfg.Moderation.EscalationCeiling,
		DefaultMuteDuration: cfg.Moderation.DefaultMuteDuration,
	}, platform, logger.Named("moderation"))

	if states, err := stateRepo.LoadAll(ctx); err != nil {
		logger.Warn("could not load persisted conversation states", zap.Error(err))
	} else {
		engine.Seed(states)
	}

	chain := providersvc.NewChain(
		providersvc.SpecsFromConfig(cfg.Providers),
		logger.Named("provider"),
	)
	brand := brandsvc.NewService(cfg.Brand, cfg.Catalog, cfgPath, logger.Named("brand"))

	gateway := dispatchsvc.NewService(
		dispatchsvc.Config{
			AssistantName:   cfg.Telegram.AssistantName,
			TypingDelayBase: cfg.Dispatch.TypingDelayBase,
			TypingDelayCap:  cfg.Dispatch.TypingDelayCap,
			MuteDefault:     cfg.Moderation.DefaultMuteDuration,
		},
		limiter, detector, engine, actors, chain, platform, brand, brand,
		logger.Named("dispatch"),
	)

	httpSrv := httpsrv.NewServer(cfg.HTTP, gateway, brand, logger.Named("http"))

	return &App{
		cfg:       cfg,
		logger:    logger,
		postgres:  pool,
		redis:     redisClient,
		bot:       bot,
		stateRepo: stateRepo,
		actorRepo: actorRepo,
		actors:    actors,
		engine:    engine,
		brand:     brand,
		gateway:   gateway,
		httpSrv:   httpSrv,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("assistant started")

	errCh := make(chan error, 3)
	go func() {
		errCh <- a.httpSrv.Run(ctx)
	}()
	go func() {
		errCh <- a.runFlushLoop(ctx)
	}()

	if a.bot != nil {
		go func() {
			errCh <- a.bot.Listen(ctx, tginfra.Handlers{
				OnMessage:  a.handleMessage,
				OnCommand:  a.handleCommand,
				OnCallback: a.handleCallback,
			})
		}()
	}

	for {
		select {
		case <-ctx.Done():
			a.inflight.Wait()
			a.flush(context.Background())
			a.logger.Info("assistant stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
}

// handleMessage hands the event to the gateway on its own goroutine so
// conversations never serialize behind one slow provider call. The message
// context is detached from the listener's: shutdown lets in-flight
// provider calls finish or hit their own per-attempt timeouts, and Run
// waits for the goroutines before the final flush.
func (a *App) handleMessage(ctx context.Context, update tginfra.MessageUpdate) error {
	msgCtx := context.WithoutCancel(ctx)
	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		a.gateway.Handle(msgCtx, dispatchsvc.Event{
			ConversationID: update.ConversationID,
			MessageID:      update.MessageID,
			ActorID:        update.UserID,
			Username:       update.Username,
			Content:        update.Text,
			SenderRole:     update.Role,
			Timestamp:      update.Timestamp,
		})
	}()
	return nil
}

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	switch update.Command {
	case "language":
		if err := a.bot.SendLanguageKeyboard(ctx, update.ConversationID, languagePromptText); err != nil {
			a.logger.Warn("could not send language keyboard", zap.Error(err))
		}
	case "status":
		if !update.Role.Privileged() {
			return nil
		}
		status := model.OwnerStatus(strings.ToLower(update.Args))
		switch status {
		case model.OwnerOnline, model.OwnerBusy, model.OwnerAway:
			a.brand.SetStatus(status)
			if err := a.bot.SendReply(ctx, update.ConversationID, update.MessageID, "Status set to "+string(status)+"."); err != nil {
				a.logger.Warn("could not confirm status change", zap.Error(err))
			}
		default:
			if err := a.bot.SendReply(ctx, update.ConversationID, update.MessageID, "Usage: /status online|busy|away"); err != nil {
				a.logger.Warn("could not send status usage", zap.Error(err))
			}
		}
	}
	return nil
}

func (a *App) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	data := update.Data
	if !strings.HasPrefix(data, "lang:") {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "")
	}

	lang, ok := enums.ParseLanguage(strings.TrimPrefix(data, "lang:"))
	if !ok {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Unknown language")
	}

	a.gateway.SetLanguage(update.ConversationID, update.UserID, lang)
	return a.bot.AnswerCallback(ctx, update.CallbackID, "Language saved")
}

func (a *App) runFlushLoop(ctx context.Context) error {
	interval := a.cfg.Dispatch.FlushInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.flush(ctx)
		}
	}
}

// flush writes dirty in-memory state to postgres. Persistence is best
// effort; a failed write leaves the snapshots dirty-free but the next
// mutation marks them again.
func (a *App) flush(ctx context.Context) {
	if actors := a.actors.DirtySnapshots(); len(actors) > 0 {
		if err := a.actorRepo.UpsertMany(ctx, actors); err != nil {
			a.logger.Warn("could not flush actors", zap.Error(err), zap.Int("count", len(actors)))
		}
	}
	if states := a.engine.DirtyStates(); len(states) > 0 {
		if err := a.stateRepo.UpsertMany(ctx, states); err != nil {
			a.logger.Warn("could not flush conversation states", zap.Error(err), zap.Int("count", len(states)))
		}
	}
}

// platformActions is the union of boundary actions used by the engine and
// the gateway.
type platformActions interface {
	SendReply(ctx context.Context, conversationID int64, replyTo int, text string) error
	DeleteMessage(ctx context.Context, conversationID int64, messageID int) error
	RemoveActor(ctx context.Context, conversationID, actorID int64) error
	SendTyping(ctx context.Context, conversationID int64) error
}

// noopPlatform stands in when no bot token is configured, so the service
// layer can still run against the HTTP surface alone.
type noopPlatform struct{}

func (noopPlatform) SendReply(context.Context, int64, int, string) error { return nil }
func (noopPlatform) DeleteMessage(context.Context, int64, int) error     { return nil }
func (noopPlatform) RemoveActor(context.Context, int64, int64) error     { return nil }
func (noopPlatform) SendTyping(context.Context, int64) error             { return nil }

package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/bkinvest/botboard/internal/blob/s3"
	"github.com/bkinvest/botboard/internal/cache/memory"
	"github.com/bkinvest/botboard/internal/cache/redis"
	"github.com/bkinvest/botboard/internal/config"
	"github.com/bkinvest/botboard/internal/crypto"
	"github.com/bkinvest/botboard/internal/domain"
	"github.com/bkinvest/botboard/internal/notify"
	"github.com/bkinvest/botboard/internal/platform/bithumb"
	"github.com/bkinvest/botboard/internal/platform/coinone"
	"github.com/bkinvest/botboard/internal/platform/kis"
	"github.com/bkinvest/botboard/internal/server"
	"github.com/bkinvest/botboard/internal/server/handler"
	"github.com/bkinvest/botboard/internal/server/ws"
	"github.com/bkinvest/botboard/internal/service"
	"github.com/bkinvest/botboard/internal/store/postgres"
)

// Dependencies bundles everything the running application needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	BotService *service.BotService
	Server     *server.Server
	Hub        *ws.Hub

	// Archiver is nil when S3 is disabled.
	Archiver *s3blob.SummaryArchiver
	// Notifier is nil when no notification channel is configured.
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}
	var alerter service.Alerter
	if deps.Notifier != nil {
		alerter = deps.Notifier
	}

	// --- Redis (summary cache, token cache, login throttling) ---
	var (
		tokenCache   domain.TokenCache = memory.NewTokenCache()
		summaryCache domain.SummaryCache
		loginLimiter domain.LoginLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		tokenCache = redis.NewTokenCache(redisClient)
		summaryCache = redis.NewSummaryCache(redisClient)
		loginLimiter = redis.NewLoginLimiter(redisClient)
	}

	// --- PostgreSQL (snapshot fallback store) ---
	var snapshots domain.SnapshotStore
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		snapshots = postgres.NewSnapshotStore(pgClient)
	}

	// --- S3 (daily summary archive) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewSummaryArchiver(s3blob.NewWriter(s3Client), cfg.Engine.ArchivePrefix)
	}

	// --- Bot pipelines ---
	pipelines := make([]service.Pipeline, 0, len(cfg.Bots))
	for _, b := range cfg.Bots {
		source, err := buildSource(cfg, b, tokenCache)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: bot %s: %w", b.ID, err)
		}
		pipelines = append(pipelines, service.Pipeline{
			Spec:           botSpec(b),
			Source:         source,
			AnnualRiskFree: cfg.Engine.AnnualRiskFree,
		})
	}

	deps.BotService = service.NewBotService(
		pipelines,
		snapshots,
		summaryCache,
		alerter,
		cfg.Engine.SummaryCacheTTL.Duration,
		logger,
	)

	// --- HTTP server ---
	signer := crypto.NewSessionSigner(cfg.Auth.Secret, cfg.Auth.SitePassword)
	deps.Hub = ws.NewHub(logger)
	deps.Server = server.NewServer(
		server.Config{
			Port:          cfg.Server.Port,
			CORSOrigins:   cfg.Server.CORSOrigins,
			LoginAttempts: cfg.Server.LoginAttempts,
			LoginWindow:   cfg.Server.LoginWindow.Duration,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(logger),
			Bots:   handler.NewBotsHandler(deps.BotService, logger),
			Auth:   handler.NewAuthHandler(signer, logger),
		},
		deps.Hub,
		signer,
		loginLimiter,
		logger,
	)

	return deps, cleanup, nil
}

// buildSource constructs the platform client serving one bot. Shared exchange
// credentials come from the top-level config sections; the bot entry only
// selects the exchange.
func buildSource(cfg *config.Config, b config.BotConfig, tokens domain.TokenCache) (domain.TradeSource, error) {
	switch b.Exchange {
	case "bithumb":
		return bithumb.NewClient(bithumb.Config{
			AccessKey: cfg.Bithumb.AccessKey,
			SecretKey: cfg.Bithumb.SecretKey,
			Market:    cfg.Bithumb.Market,
			BaseURL:   cfg.Bithumb.BaseURL,
		}), nil
	case "coinone":
		return coinone.NewClient(coinone.Config{
			AccessToken: cfg.Coinone.AccessToken,
			SecretKey:   cfg.Coinone.SecretKey,
			Target:      cfg.Coinone.Target,
			Quote:       cfg.Coinone.Quote,
			BaseURL:     cfg.Coinone.BaseURL,
		}), nil
	case "kis":
		return kis.NewClient(kis.Config{
			AppKey:    cfg.KIS.AppKey,
			AppSecret: cfg.KIS.AppSecret,
			AccountNo: cfg.KIS.AccountNo,
			ProductCd: cfg.KIS.ProductCd,
			BaseURL:   cfg.KIS.BaseURL,
		}, tokens), nil
	default:
		return nil, fmt.Errorf("unknown exchange %q", b.Exchange)
	}
}

func botSpec(b config.BotConfig) domain.BotSpec {
	return domain.BotSpec{
		ID:              b.ID,
		Name:            b.Name,
		Description:     b.Description,
		Asset:           b.Asset,
		Exchange:        b.Exchange,
		StartDate:       b.StartDate,
		InitialCapital:  b.InitialCapital,
		EstimateCapital: b.EstimateCapital,
		CapitalFloor:    b.CapitalFloor,
		QtyPrecision:    b.QtyPrecision,
	}
}

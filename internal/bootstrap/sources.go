package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sandboxops/console/config"
	"github.com/sandboxops/console/internal/adapters/sandboxapi"
	"github.com/sandboxops/console/internal/data"
	"github.com/sandboxops/console/internal/domain/model"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/screens"
	"github.com/sandboxops/console/internal/service"
)

// RegistryDeps groups what BuildRegistry needs.
type RegistryDeps struct {
	Config *config.AppConfig
	// Redis enables the shared cache tier when non-nil.
	Redis         redis.UniversalClient
	Observability ObservabilityContainer
	Logger        *slog.Logger
	// Tiers overrides the cache tiers built from Config.Cache, so a caller
	// can maintain the same in-process tier the sources read through.
	Tiers *service.CacheTiers
}

// sourceFactory builds the sources of enabled screens over one backend
// client and one set of cache tiers.
type sourceFactory struct {
	client  *sandboxapi.Client
	tiers   service.CacheTiers
	cfg     *config.AppConfig
	enabled map[string]bool
	deps    RegistryDeps
}

// BuildRegistry creates the backend client, the cached sources of every
// enabled screen and the screen registry over them.
func BuildRegistry(deps RegistryDeps) (*screens.Registry, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Logger = logger
	cfg := deps.Config

	client, err := sandboxapi.NewClient(sandboxapi.Config{
		BaseURL:        cfg.Backend.BaseURL,
		Timeout:        cfg.Backend.Timeout,
		Token:          cfg.Backend.Token,
		ClientID:       cfg.Backend.ClientID,
		ClientSecret:   cfg.Backend.ClientSecret,
		TokenURL:       cfg.Backend.TokenURL,
		Scopes:         cfg.Backend.Scopes,
		RateLimit:      cfg.Backend.RateLimit,
		Burst:          cfg.Backend.Burst,
		MaxRetries:     cfg.Backend.MaxRetries,
		InitialBackoff: cfg.Backend.InitialBackoff,
		MaxBackoff:     cfg.Backend.MaxBackoff,
		UserAgent:      cfg.Backend.UserAgent,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	enabled, err := cfg.Lists.EnabledScreens()
	if err != nil {
		return nil, err
	}

	tiers := BuildCacheTiers(cfg.Cache, deps.Redis)
	if deps.Tiers != nil {
		tiers = *deps.Tiers
	}
	f := &sourceFactory{
		client:  client,
		tiers:   tiers,
		cfg:     cfg,
		enabled: enabled,
		deps:    deps,
	}

	var src screens.Sources
	var errs []error
	src.ActiveTasks, err = buildSource[model.Task](f, screens.SlugActiveTasks)
	errs = append(errs, err)
	src.TaskHistory, err = buildSource[model.Task](f, screens.SlugTaskHistory)
	errs = append(errs, err)
	src.Signatures, err = buildSource[model.Signature](f, screens.SlugSignatures)
	errs = append(errs, err)
	src.Users, err = buildSource[model.User](f, screens.SlugUsers)
	errs = append(errs, err)
	src.VirtualMachines, err = buildSource[model.VirtualMachine](f, screens.SlugVirtualMachines)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	registry, err := screens.NewRegistry(src, screens.Options{
		Logger:        logger,
		PageSize:      cfg.Lists.PageSize,
		WildcardToken: cfg.Lists.WildcardToken,
		Observer:      deps.Observability.Observer(),
	})
	if err != nil {
		return nil, err
	}

	if m := deps.Observability.Monitor; m != nil {
		for _, info := range registry.Screens() {
			m.SetTitle(info.Slug, info.Title)
		}
	}
	logger.Info("screens registered",
		"count", len(registry.Screens()),
		"cache", cfg.Cache.Enabled,
		"redis_cache", f.tiers.Redis != nil,
	)
	return registry, nil
}

// BuildCacheTiers builds the in-process tier when caching is enabled and the
// Redis tier when it is also enabled and client is non-nil.
func BuildCacheTiers(cfg config.CacheConfig, client redis.UniversalClient) service.CacheTiers {
	var tiers service.CacheTiers
	if !cfg.Enabled {
		return tiers
	}
	lru := data.DefaultLocalLRUConfig()
	lru.Capacity = cfg.LocalCapacity
	lru.MaxBytes = cfg.LocalMaxBytes
	tiers.Local = data.NewLocalLRU(lru)
	if cfg.RedisEnabled && client != nil {
		tiers.Redis = data.NewRedisCacheRepo(client)
	}
	return tiers
}

// buildSource returns the source of slug, or nil when the screen is
// disabled. Only server-paginated screens read a total from the response.
//
//nolint:ireturn // screens.Sources holds interface values.
func buildSource[T any](f *sourceFactory, slug string) (listview.Source[T], error) {
	if !f.enabled[slug] {
		return nil, nil
	}
	info, ok := screenInfo(slug)
	if !ok {
		return nil, fmt.Errorf("screen %s: not defined", slug)
	}

	srcCfg := sandboxapi.SourceConfig{Path: info.Endpoint, Items: f.cfg.Lists.ItemsExpr}
	if info.Mode == listview.ServerPaginated {
		srcCfg.Total = f.cfg.Lists.TotalExpr
	}
	origin, err := sandboxapi.NewSource[T](f.client, srcCfg)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", slug, err)
	}
	if f.tiers.Local == nil && f.tiers.Redis == nil {
		return origin, nil
	}

	cached, err := service.NewCachedSource[T](origin, service.CachedSourceOptions{
		Tiers: f.tiers,
		Config: service.ListCacheConfig{
			Name:     slug,
			Prefix:   f.cfg.Cache.KeyPrefix,
			LocalTTL: f.cfg.Cache.LocalTTL,
			RedisTTL: f.cfg.Cache.RedisTTL,
		},
		Telemetry: service.Telemetry{Logger: f.deps.Logger, Metrics: f.deps.Observability.Sink()},
	})
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", slug, err)
	}
	return cached, nil
}

func screenInfo(slug string) (screens.Info, bool) {
	for _, info := range screens.Infos() {
		if info.Slug == slug {
			return info, true
		}
	}
	return screens.Info{}, false
}

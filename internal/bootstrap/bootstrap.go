package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"moia/internal/account"
	"moia/internal/api"
	"moia/internal/config"
	"moia/internal/contextmgr"
	"moia/internal/i18n"
	"moia/internal/logging"
	"moia/internal/products"
	"moia/internal/session"
	"moia/internal/storage"
)

// BuildResult 与 UI 无关的构建结果，供 main 构造 TUI/REPL
// BuildResult is UI-agnostic; main uses it to construct the TUI or REPL
type BuildResult struct {
	Config     config.Config
	Log        zerolog.Logger
	Client     *api.Client
	Cache      *storage.Cache
	Session    *session.Session
	Directory  *session.Directory
	Controller *session.Controller
	Tokenizer  *contextmgr.Tokenizer
	Accounts   *account.Service
	Products   *products.Service
}

// Close releases the resources the build opened.
func (r *BuildResult) Close() error {
	if r.Products != nil {
		r.Products.Close()
	}
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Build wires the whole client: config, logging, HTTP client with the
// persisted session cookie, local cache, and the chat coordination core.
// The caller owns the result and must defer Close.
func Build(cfg config.Config) (*BuildResult, error) {
	i18n.Init(cfg.Locale)

	if err := os.MkdirAll(cfg.Storage.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	log, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := api.NewClient(api.Options{
		BaseURL:    cfg.Server.BaseURL,
		TimeoutMS:  cfg.Server.TimeoutMS,
		CookiePath: filepath.Join(cfg.Storage.BaseDir, "cookies.json"),
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("init API client: %w", err)
	}

	cache, err := storage.Open(filepath.Join(cfg.Storage.BaseDir, "moia.db"))
	if err != nil {
		// The cache is an accelerator, not a dependency; run without it.
		log.Warn().Err(err).Msg("local cache unavailable")
		cache = nil
	}

	sess := session.NewSession(client, cacheOrNil(cache), log)
	sess.SetVision(cfg.Chat.VisionEnabled)
	directory := session.NewDirectory(client, cacheOrNil(cache), sess, log)
	controller := session.NewController(sess, directory, client, cacheOrNil(cache), log)

	return &BuildResult{
		Config:     cfg,
		Log:        log,
		Client:     client,
		Cache:      cache,
		Session:    sess,
		Directory:  directory,
		Controller: controller,
		Tokenizer:  contextmgr.NewTokenizer(cfg.Chat.TokenEncoding),
		Accounts:   account.NewService(client, log),
		Products:   products.NewService(client, log),
	}, nil
}

// cacheOrNil converts a possibly-nil *storage.Cache into the interface the
// session core takes. A plain assignment would wrap the nil pointer in a
// non-nil interface value.
func cacheOrNil(c *storage.Cache) session.TranscriptCache {
	if c == nil {
		return nil
	}
	return c
}

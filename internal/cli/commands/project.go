package commands

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/conduit-lang/enumtrait/internal/cli/config"
	"github.com/conduit-lang/enumtrait/internal/enum"
	"github.com/conduit-lang/enumtrait/internal/i18n"
	"github.com/conduit-lang/enumtrait/internal/logging"
	"github.com/conduit-lang/enumtrait/internal/manifest"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// globalOptions holds the persistent flags
type globalOptions struct {
	configPath string
	locale     string
	verbose    bool
	noColor    bool
}

// project is a manifest applied under the loaded configuration
type project struct {
	cfg     *config.Config
	logger  *zap.Logger
	schemas *schema.Registry
	enums   *enum.Registry

	closers []func() error
}

// setup loads configuration and logging
func (o *globalOptions) setup() (*project, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, &configError{err: err}
	}
	if o.locale != "" {
		cfg.Locale = o.locale
	}

	logCfg := logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development}
	if o.verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	return &project{cfg: cfg, logger: logger}, nil
}

// open loads the manifest at path into fresh registries
func (o *globalOptions) open(path string) (*project, error) {
	p, err := o.setup()
	if err != nil {
		return nil, err
	}

	translator, err := p.translator()
	if err != nil {
		p.Close()
		return nil, err
	}

	m, err := manifest.LoadFile(path)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.schemas = schema.NewRegistry()
	p.enums = enum.NewRegistry(enum.WithTranslator(translator), enum.WithLogger(p.logger))
	if err := m.Apply(p.schemas, p.enums); err != nil {
		p.Close()
		return nil, err
	}

	p.logger.Debug("manifest applied",
		zap.String("path", path),
		zap.Int("models", p.schemas.Count()),
		zap.Int("enums", len(p.enums.Declarations())),
	)
	return p, nil
}

// translator builds the label source: locale files first, then Redis when
// an address is configured
func (p *project) translator() (enum.Translator, error) {
	catalog := i18n.NewCatalog(language.English)
	if err := catalog.LoadFiles(p.cfg.LocaleFiles...); err != nil {
		return nil, err
	}
	chain := i18n.Chain{catalog.Locale(p.cfg.Locale)}

	if p.cfg.Redis.Addr != "" {
		redisCfg := i18n.DefaultRedisConfig()
		redisCfg.Addr = p.cfg.Redis.Addr
		redisCfg.Password = p.cfg.Redis.Password
		redisCfg.DB = p.cfg.Redis.DB
		redisCfg.Prefix = p.cfg.Redis.Prefix
		redisCfg.Locale = p.cfg.Locale

		store, err := i18n.NewRedisTranslator(redisCfg)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, store.Close)
		chain = append(chain, store)
	}

	return i18n.NewCached(chain), nil
}

// database opens the configured database
func (p *project) database() (*sql.DB, error) {
	if p.cfg.Database.URL == "" {
		return nil, fmt.Errorf("database.url is not configured")
	}
	db, err := sql.Open(p.cfg.Database.Driver, p.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	p.closers = append(p.closers, db.Close)
	return db, nil
}

// model finds a registered model by name
func (p *project) model(name string) (*schema.ResourceSchema, bool) {
	return p.schemas.Get(name)
}

// Close releases connections and flushes the logger
func (p *project) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
	p.closers = nil
	p.logger.Sync()
}

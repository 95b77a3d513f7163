package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	eligibilityx "github.com/tanpawarit/Chative-Student-Advisor/agent/eligibility"
	faqx "github.com/tanpawarit/Chative-Student-Advisor/agent/faq"
	schedulex "github.com/tanpawarit/Chative-Student-Advisor/agent/schedule"
	studentx "github.com/tanpawarit/Chative-Student-Advisor/agent/student"
	toolx "github.com/tanpawarit/Chative-Student-Advisor/agent/tool"
	configx "github.com/tanpawarit/Chative-Student-Advisor/pkg/config"
	postgresx "github.com/tanpawarit/Chative-Student-Advisor/pkg/postgres"
	qstashx "github.com/tanpawarit/Chative-Student-Advisor/pkg/qstash"
)

const (
	sourceFile     = "file"
	sourcePostgres = "postgres"

	scheduleMemory  = "memory"
	scheduleUpstash = "upstash"
)

// AdvisorConfig is read with the ADVISOR prefix.
type AdvisorConfig struct {
	DataDir       string `split_words:"true" default:"data"`
	CoursesFile   string `split_words:"true" default:"courses.yaml"`
	OfferingsFile string `split_words:"true" default:"offerings.yaml"`
	StudentsFile  string `split_words:"true" default:"students.yaml"`
	FAQFile       string `envconfig:"FAQ_FILE" default:"faqs.yaml"`

	// Source selects where catalog and student data come from: file or postgres.
	Source        string `split_words:"true" default:"file"`
	ScheduleStore string `split_words:"true" default:"memory"`
	// ScheduleKeyPrefix namespaces schedule keys in Upstash Redis.
	ScheduleKeyPrefix string `split_words:"true" default:"advisor:schedule:"`
	Notify            bool   `split_words:"true" default:"false"`

	StudentID string `split_words:"true"`
	Term      string `split_words:"true" default:"fall"`
	Year      int    `split_words:"true" default:"2024"`

	FAQCutoff      float64       `envconfig:"FAQ_CUTOFF" default:"0.6"`
	FAQCacheSize   int           `envconfig:"FAQ_CACHE_SIZE" default:"256"`
	QueryTimeout   time.Duration `split_words:"true" default:"5s"`
	MaxToolPasses  int           `split_words:"true" default:"3"`
	MetricsEnabled bool          `split_words:"true" default:"true"`
}

func (c AdvisorConfig) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// app is the wired advising stack shared by every command.
type app struct {
	cfg      AdvisorConfig
	db       *bun.DB
	catalog  *catalogx.Store
	planner  *schedulex.Planner
	toolbox  *toolx.Toolbox
	gateway  *toolx.Gateway
	registry *prometheus.Registry

	stopMetrics func()
}

func newApp(ctx context.Context, cfg AdvisorConfig) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}

	var (
		source   catalogx.Source
		students studentx.Provider
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case sourcePostgres:
		pgCfg, err := configx.New[postgresx.Config]("POSTGRES")
		if err != nil {
			return nil, fmt.Errorf("load postgres config: %w", err)
		}
		db, err := postgresx.Open(ctx, *pgCfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		source = catalogx.NewPostgresSource(db)
	case sourceFile, "":
		source = catalogx.FileSource{
			CoursesPath:   cfg.path(cfg.CoursesFile),
			OfferingsPath: cfg.path(cfg.OfferingsFile),
		}
	default:
		return nil, fmt.Errorf("%w: unknown data source %q", contractx.ErrValidation, cfg.Source)
	}

	store, err := catalogx.NewStore(source)
	if err != nil {
		return nil, a.closeWith(err)
	}
	a.catalog = store

	if a.db != nil {
		remote, err := studentx.NewRemoteProvider(a.db, store, studentx.WithQueryTimeout(cfg.QueryTimeout))
		if err != nil {
			return nil, a.closeWith(err)
		}
		students = remote
	} else {
		students = studentx.NewLocalProvider(cfg.path(cfg.StudentsFile))
	}

	resolver, err := eligibilityx.NewResolver(store)
	if err != nil {
		return nil, a.closeWith(err)
	}

	scheduleStore, err := newScheduleStore(cfg)
	if err != nil {
		return nil, a.closeWith(err)
	}
	opts := []schedulex.Option{}
	if cfg.Notify {
		qCfg, err := configx.New[qstashx.Config]("QSTASH")
		if err != nil {
			return nil, a.closeWith(fmt.Errorf("load qstash config: %w", err))
		}
		client, err := qstashx.NewClient(*qCfg)
		if err != nil {
			return nil, a.closeWith(err)
		}
		opts = append(opts, schedulex.WithNotifier(client))
	}
	planner, err := schedulex.NewPlanner(resolver, scheduleStore, opts...)
	if err != nil {
		return nil, a.closeWith(err)
	}
	a.planner = planner

	faq := faqx.NewService(cfg.path(cfg.FAQFile),
		faqx.WithCutoff(cfg.FAQCutoff),
		faqx.WithCacheSize(cfg.FAQCacheSize),
	)

	box, err := toolx.NewToolbox(toolx.Services{
		FAQ:         faq,
		Catalog:     store,
		Eligibility: resolver,
		Students:    students,
		Schedules:   planner,
	})
	if err != nil {
		return nil, a.closeWith(err)
	}
	a.toolbox = box

	var gwOpts []toolx.GatewayOption
	if cfg.MetricsEnabled {
		gwOpts = append(gwOpts, toolx.WithMetrics(toolx.NewMetrics(a.registry)))
	}
	gateway, err := toolx.NewGateway(box, gwOpts...)
	if err != nil {
		return nil, a.closeWith(err)
	}
	a.gateway = gateway

	log.Debug().
		Str("source", cfg.Source).
		Str("schedule_store", cfg.ScheduleStore).
		Bool("notify", cfg.Notify).
		Msg("advisor wired")
	return a, nil
}

func newScheduleStore(cfg AdvisorConfig) (schedulex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ScheduleStore)) {
	case scheduleMemory, "":
		return schedulex.NewMemoryStore(), nil
	case scheduleUpstash:
		uCfg, err := configx.New[schedulex.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, fmt.Errorf("load upstash config: %w", err)
		}
		store, err := schedulex.NewUpstashRedisStore(*uCfg, schedulex.WithKeyPrefix(cfg.ScheduleKeyPrefix))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown schedule store %q", contractx.ErrValidation, cfg.ScheduleStore)
	}
}

func (a *app) closeWith(err error) error {
	a.Close()
	return err
}

func (a *app) Close() {
	if a.stopMetrics != nil {
		a.stopMetrics()
		a.stopMetrics = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
		a.db = nil
	}
}

// run executes one tool through the gateway, the same path the agents use.
func (a *app) run(ctx context.Context, agent contractx.AgentType, rc contractx.RequestContext, tool string, args map[string]any) (contractx.ToolResult, error) {
	results, err := a.gateway.Execute(ctx, agent, rc, []contractx.ToolRequest{{Tool: tool, Args: args}})
	if err != nil {
		return contractx.ToolResult{}, err
	}
	if len(results) != 1 {
		return contractx.ToolResult{}, fmt.Errorf("expected one tool result, got %d", len(results))
	}
	return results[0], nil
}

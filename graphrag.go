// Package graphrag provides a high-level façade over the query orchestrator:
// a classifier, a knowledge-graph context provider, a set of per-topic agents
// and a keyword router, assembled from one Config. Most applications interact
// with this package by:
//  1. Loading a Config (config.Load or config.Default)
//  2. Creating a GraphRAG via New() (optionally substituting collaborators)
//  3. Answering queries with Answer()
//
// The façade delegates per-query work to orchestrator.Orchestrator while
// keeping setup ergonomics concise. Every collaborator is an explicit
// dependency constructed once here, so tests can substitute store and backend
// doubles.
package graphrag

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/garyhost2/Strong-gradient/agent"
	"github.com/garyhost2/Strong-gradient/classify"
	"github.com/garyhost2/Strong-gradient/config"
	"github.com/garyhost2/Strong-gradient/graph"
	"github.com/garyhost2/Strong-gradient/logging"
	"github.com/garyhost2/Strong-gradient/model"
	"github.com/garyhost2/Strong-gradient/model/ollama"
	"github.com/garyhost2/Strong-gradient/orchestrator"
	"github.com/garyhost2/Strong-gradient/router"
)

// topics of the four default agents.
const (
	TopicFinance        = "finance"
	TopicWeb3           = "web3"
	TopicSustainability = "sustainability"
	TopicGeneral        = "general"
)

// Options collects overridable collaborators. Any unset field is constructed
// from the Config.
type Options struct {
	// Classifier overrides the hugot-backed classifier.
	Classifier classify.Classifier
	// ContextProvider overrides the Neo4j-backed provider.
	ContextProvider graph.ContextProvider
	// Backends overrides the Ollama backend pair.
	Backends []model.Backend
	// Logger defaults to a structured slog logger per the Config.
	Logger logging.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithClassifier substitutes the classifier.
func WithClassifier(c classify.Classifier) Option {
	return func(o *Options) { o.Classifier = c }
}

// WithContextProvider substitutes the graph context provider.
func WithContextProvider(p graph.ContextProvider) Option {
	return func(o *Options) { o.ContextProvider = p }
}

// WithBackends substitutes the generative backend set. Order here is section
// order in every merged answer.
func WithBackends(backends ...model.Backend) Option {
	return func(o *Options) { o.Backends = backends }
}

// WithLogger substitutes the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// GraphRAG is the assembled query-answering system.
type GraphRAG struct {
	orch *orchestrator.Orchestrator

	// owned resources, closed by Close; nil when substituted by options.
	driver     neo4j.DriverWithContext
	classifier *classify.TextClassifier
}

// New assembles a GraphRAG from the config. It connects to Neo4j and loads
// the classification model unless both are substituted via options.
func New(ctx context.Context, cfg config.Config, optFns ...Option) (*GraphRAG, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewSlogLogger(cfg.LogLevel, cfg.LogFormat, false)
	}

	g := &GraphRAG{}

	if opts.ContextProvider == nil {
		driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return nil, err
		}
		g.driver = driver
		opts.ContextProvider = graph.NewNeo4jProvider(driver,
			graph.WithDatabase(cfg.Neo4jDatabase),
			graph.WithLogger(opts.Logger))
	}

	if opts.Classifier == nil {
		classifier, err := classify.NewTextClassifier(classify.ONNXConfig{
			ModelPath:      cfg.ClassifierModelPath,
			HFRepo:         cfg.ClassifierHFRepo,
			CacheDir:       cfg.ModelCacheDir,
			OrtLibraryPath: cfg.OrtLibraryPath,
		})
		if err != nil {
			g.close(ctx)
			return nil, err
		}
		g.classifier = classifier
		opts.Classifier = classifier
	}

	if len(opts.Backends) == 0 {
		backends, err := defaultBackends(cfg)
		if err != nil {
			g.close(ctx)
			return nil, err
		}
		opts.Backends = backends
	}

	agents, err := buildAgents(cfg, opts)
	if err != nil {
		g.close(ctx)
		return nil, err
	}

	rtr, err := router.NewDefault(agents)
	if err != nil {
		g.close(ctx)
		return nil, err
	}

	orch, err := orchestrator.New(rtr, orchestrator.WithLogger(opts.Logger))
	if err != nil {
		g.close(ctx)
		return nil, err
	}
	g.orch = orch

	return g, nil
}

// Answer routes the query and returns the merged answer text.
func (g *GraphRAG) Answer(ctx context.Context, query string) (string, error) {
	return g.orch.Answer(ctx, query)
}

// Close releases the Neo4j driver and the classifier session, when this
// façade constructed them.
func (g *GraphRAG) Close(ctx context.Context) error {
	return g.close(ctx)
}

func (g *GraphRAG) close(ctx context.Context) error {
	var firstErr error
	if g.driver != nil {
		if err := g.driver.Close(ctx); err != nil {
			firstErr = err
		}
		g.driver = nil
	}
	if g.classifier != nil {
		if err := g.classifier.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		g.classifier = nil
	}
	return firstErr
}

// defaultBackends builds the Ollama backend pair of the reference deployment.
func defaultBackends(cfg config.Config) ([]model.Backend, error) {
	primary, err := ollama.NewGenerator(cfg.PrimaryModel, func(o *ollama.Options) { o.Host = cfg.OllamaHost })
	if err != nil {
		return nil, err
	}
	secondary, err := ollama.NewGenerator(cfg.SecondaryModel, func(o *ollama.Options) { o.Host = cfg.OllamaHost })
	if err != nil {
		return nil, err
	}
	return []model.Backend{
		{Name: sectionLabel(cfg.PrimaryModel), Gen: primary},
		{Name: sectionLabel(cfg.SecondaryModel), Gen: secondary},
	}, nil
}

// sectionLabel maps a model name to the section heading used in merged
// answers; the reference deployment keeps its historical labels.
func sectionLabel(modelName string) string {
	switch modelName {
	case "qwen2.5":
		return "Qwen 2.5 Analysis"
	case "deepseek-r1":
		return "DeepSeek R1 Insights"
	default:
		return modelName + " Analysis"
	}
}

// buildAgents constructs the four per-topic agents over the shared
// collaborators.
func buildAgents(cfg config.Config, opts Options) (router.Agents, error) {
	mk := func(name, topic string) (*agent.Agent, error) {
		return agent.New(name, opts.Classifier, opts.ContextProvider, opts.Backends, agent.Config{
			Topic:             topic,
			ContextLimit:      cfg.ContextLimit,
			Sampling:          cfg.Sampling(),
			GenerationTimeout: cfg.GenerationTimeout,
			Logger:            opts.Logger,
		})
	}

	finance, err := mk("finance", TopicFinance)
	if err != nil {
		return router.Agents{}, err
	}
	web3, err := mk("web3_development", TopicWeb3)
	if err != nil {
		return router.Agents{}, err
	}
	sustainability, err := mk("sustainability", TopicSustainability)
	if err != nil {
		return router.Agents{}, err
	}
	general, err := mk("general_knowledge", TopicGeneral)
	if err != nil {
		return router.Agents{}, err
	}

	return router.Agents{
		Finance:          finance,
		Web3Development:  web3,
		Sustainability:   sustainability,
		GeneralKnowledge: general,
	}, nil
}

package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"cratedocs/internal/cache"
	"cratedocs/internal/config"
	"cratedocs/internal/docsrs"
	"cratedocs/internal/registry"
	"cratedocs/internal/rustdoc"
	"cratedocs/internal/storage"
)

//go:embed instructions.md
var instructions string

// Server exposes the crate documentation tools over MCP stdio.
type Server struct {
	mcpServer *server.MCPServer
	state     *State
}

// State holds the shared collaborators every tool handler needs: the
// read-through disk cache, the crates.io REST client, the rustdoc
// fetcher with its in-memory LRU, and the catalog of fetched docs.
type State struct {
	cfg     *config.Config
	cache   *cache.Cache
	crates  *registry.Client
	docs    *docsrs.Fetcher
	catalog *storage.Catalog
}

// NewState wires the collaborators from configuration. The catalog is
// optional: a DuckDB open failure degrades to catalog-less operation
// rather than refusing to serve.
func NewState(cfg *config.Config) (*State, error) {
	httpClient := registry.NewHTTPClient(cfg.HTTP.UserAgent, cfg.HTTP.CratesIOPerSecond)
	c, err := cache.New(config.HTTPCacheDir(), cfg.TTL(), httpClient)
	if err != nil {
		return nil, fmt.Errorf("opening http cache: %w", err)
	}

	fetcher, err := docsrs.NewFetcher(c, cfg.Cache.DocLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating docs fetcher: %w", err)
	}

	catalog, err := storage.Open(config.CatalogPath())
	if err != nil {
		log.Printf("catalog unavailable: %v", err)
		catalog = nil
	}

	return &State{
		cfg:     cfg,
		cache:   c,
		crates:  registry.NewClient(c),
		docs:    fetcher,
		catalog: catalog,
	}, nil
}

// Close releases the catalog connection.
func (s *State) Close() error {
	if s.catalog != nil {
		return s.catalog.Close()
	}
	return nil
}

// resolveVersion maps ""/"latest" to the latest stable release.
func (s *State) resolveVersion(ctx context.Context, name, version string) (string, error) {
	return registry.ResolveVersion(ctx, s.cache, name, version)
}

// fetchDoc fetches and decodes rustdoc JSON for an already-resolved
// version, recording the fetch in the catalog.
func (s *State) fetchDoc(ctx context.Context, name, version string) (*rustdoc.Crate, error) {
	doc, err := s.docs.FetchCrateDoc(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if s.catalog != nil {
		if err := s.catalog.Record(name, version, doc.FormatVersion, len(doc.Index)); err != nil {
			log.Printf("recording %s %s in catalog: %v", name, version, err)
		}
	}
	return doc, nil
}

// fetchIndex returns the sparse index lines for a crate.
func (s *State) fetchIndex(ctx context.Context, name string) ([]registry.IndexLine, error) {
	return registry.FetchIndex(ctx, s.cache, name)
}

// declaredFeatures returns the feature names the latest stable release
// declares. A missing index degrades to nil: feature annotations are
// then unfiltered rather than the whole call failing.
func declaredFeatures(lines []registry.IndexLine) map[string]struct{} {
	latest := registry.FindLatestStable(lines)
	if latest == nil {
		return nil
	}
	return latest.DeclaredFeatureSet()
}

func NewServer(cfg *config.Config) (*Server, error) {
	state, err := NewState(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{state: state}

	mcpServer := server.NewMCPServer(
		"cratedocs",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s, nil
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("crate_list",
			mcp.WithDescription("Search crates.io by keyword, category, or free-text query. Returns crate summaries ranked by relevance, download count, or recency. Entry point for crate discovery when you don't have a crate name yet."),
			mcp.WithString("query", mcp.Description("Free-text search query (e.g. \"async http client\")")),
			mcp.WithString("category", mcp.Description("Filter by crates.io category slug (e.g. \"web-programming\")")),
			mcp.WithString("keyword", mcp.Description("Filter by crates.io keyword tag")),
			mcp.WithString("sort", mcp.Description("Sort order: \"relevance\" (default), \"downloads\", \"recent-downloads\", \"recent-updates\", \"alphabetical\"")),
			mcp.WithNumber("page", mcp.Description("Page number (1-indexed, default 1)")),
			mcp.WithNumber("per_page", mcp.Description("Results per page (max 100, default 10)")),
		),
		s.handleCrateList,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_get",
			mcp.WithDescription("Get comprehensive metadata for a single crate: description, homepage, repository, download counts, latest stable version, feature flag definitions, and MSRV. Combines the crates.io API with the sparse index for an authoritative feature map."),
			mcp.WithString("name", mcp.Description("Exact crate name (e.g. \"serde\")"), mcp.Required()),
		),
		s.handleCrateGet,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_readme_get",
			mcp.WithDescription("Fetch the crate's README for a specific version as readable text. Contains the author's intended narrative: why the crate exists, how it compares to alternatives, installation instructions, and quick-start examples."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("version", mcp.Description("Version string. Defaults to latest stable.")),
		),
		s.handleCrateReadmeGet,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_docs_get",
			mcp.WithDescription("Get high-level documentation structure from rustdoc JSON: the crate-level documentation (architecture overview, feature table, usage examples), module tree, and per-module item summaries. Primary entry point for understanding a library you're already using."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("version", mcp.Description("Version string. Defaults to latest stable.")),
			mcp.WithBoolean("include_items", mcp.Description("Include item-level summaries per module (default false)")),
		),
		s.handleCrateDocsGet,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_item_list",
			mcp.WithDescription("Search for items (types, functions, traits, etc.) within a crate's API by name or concept. Returns ranked results with signatures and doc summaries. Use after crate_docs_get to find specific items without browsing the module tree."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("version", mcp.Description("Version string. Defaults to latest stable.")),
			mcp.WithString("query", mcp.Description("Search string, an item name or concept"), mcp.Required()),
			mcp.WithString("kind", mcp.Description("Filter by kind: \"struct\", \"enum\", \"trait\", \"fn\", \"type\", \"const\", \"macro\"")),
			mcp.WithString("module_prefix", mcp.Description("Restrict to items under this module path (e.g. \"tokio::sync\")")),
			mcp.WithNumber("limit", mcp.Description("Max results (default 10, max 50)")),
		),
		s.handleCrateItemList,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_item_get",
			mcp.WithDescription("Get complete documentation for a specific item by fully-qualified path. Returns the full doc comment, exact type signature, generic parameters, where clauses, inherent methods, implemented traits, and feature flags. Primary API reference tool."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("version", mcp.Description("Version string. Defaults to latest stable.")),
			mcp.WithString("item_path", mcp.Description("Fully-qualified item path (e.g. \"tokio::sync::Mutex\")"), mcp.Required()),
			mcp.WithBoolean("include_methods", mcp.Description("Include inherent methods from impl blocks (default true)")),
			mcp.WithString("include_trait_impls", mcp.Description("Trait impl filtering: \"filtered\" (default) omits ubiquitous blankets like Borrow/Into/From; \"all\" returns everything; \"none\" omits trait impls entirely")),
		),
		s.handleCrateItemGet,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_impls_list",
			mcp.WithDescription("Find implementors of a trait, or all traits implemented by a type. Answers: 'what do I need to implement to use this abstraction?' and 'what can I call on this type?' Specify either trait_path or type_path."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("version", mcp.Description("Version string. Defaults to latest stable.")),
			mcp.WithString("trait_path", mcp.Description("Fully-qualified trait path to find implementors of (e.g. \"serde::Serialize\")")),
			mcp.WithString("type_path", mcp.Description("Fully-qualified type path to find trait implementations for (e.g. \"tokio::sync::Mutex\")")),
			mcp.WithString("search", mcp.Description("Filter results by name substring")),
			mcp.WithNumber("limit", mcp.Description("Max results (default 50, max 200)")),
		),
		s.handleCrateImplsList,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_versions_list",
			mcp.WithDescription("List all published versions with feature maps, MSRV, dependency counts, and yank status. Use to understand release history, find when a feature was introduced, audit yanked versions, or compare features across versions."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithBoolean("include_yanked", mcp.Description("Include yanked versions (default false)")),
			mcp.WithBoolean("include_prerelease", mcp.Description("Include pre-release versions (default false)")),
			mcp.WithString("search", mcp.Description("Filter by semver prefix or substring (e.g. \"1.0\")")),
		),
		s.handleCrateVersionsList,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_version_get",
			mcp.WithDescription("Get rich per-version metadata from crates.io: Rust edition, library vs binary targets, binary names, crate size, license, and publisher. Use after crate_versions_list when you need details beyond what the index provides."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("version", mcp.Description("Exact version string (e.g. \"1.0.197\")"), mcp.Required()),
		),
		s.handleCrateVersionGet,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_dependencies_list",
			mcp.WithDescription("Get the dependency list for a specific crate version with semver requirements, optional flags, enabled features, and target conditions. Use for due diligence: a large or unusual dependency tree is a risk multiplier."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("version", mcp.Description("Exact version string"), mcp.Required()),
			mcp.WithString("kind", mcp.Description("Filter by dep kind: \"normal\", \"dev\", \"build\" (default all)")),
			mcp.WithString("search", mcp.Description("Filter results by dep name substring")),
		),
		s.handleCrateDependenciesList,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_dependents_list",
			mcp.WithDescription("List crates that depend on a given crate (reverse dependencies). Reveals ecosystem adoption breadth. A crate trusted by 5000 other crates has a different risk profile than one with 20. Use for due diligence."),
			mcp.WithString("name", mcp.Description("Crate name to find dependents of"), mcp.Required()),
			mcp.WithNumber("page", mcp.Description("Page number (default 1)")),
			mcp.WithNumber("per_page", mcp.Description("Results per page (max 100, default 20)")),
			mcp.WithString("search", mcp.Description("Filter results by dependent crate name substring")),
		),
		s.handleCrateDependentsList,
	)

	mcpServer.AddTool(
		mcp.NewTool("crate_downloads_get",
			mcp.WithDescription("Get per-day download counts broken out by version for the past 90 days. Use to assess active ecosystem adoption, whether users have migrated to newer versions, and whether a download spike indicates recent adoption by a major project."),
			mcp.WithString("name", mcp.Description("Crate name"), mcp.Required()),
			mcp.WithString("before_date", mcp.Description("ISO date (YYYY-MM-DD). Returns 90 days ending on this date. Defaults to today.")),
		),
		s.handleCrateDownloadsGet,
	)

	mcpServer.AddTool(
		mcp.NewTool("cache_status",
			mcp.WithDescription("Report local cache state: disk cache entry count and size, configured TTL, and the catalog of rustdoc documents fetched so far with item counts and last-use times."),
			mcp.WithString("name", mcp.Description("Restrict the catalog listing to one crate")),
		),
		s.handleCacheStatus,
	)
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return s.state.Close()
}

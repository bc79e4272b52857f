package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"cratedocs/internal/registry"
)

// textResult pretty-prints a response value as a JSON text content
// block, the shape every tool here returns.
func textResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(out))
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string, def int) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return def
}

func boolArg(args map[string]any, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

func (s *Server) handleCrateList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	page := intArg(args, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := intArg(args, "per_page", 10)
	if perPage > 100 {
		perPage = 100
	}

	result, err := s.state.crates.Search(ctx, registry.SearchParams{
		Query:    stringArg(args, "query"),
		Category: stringArg(args, "category"),
		Keyword:  stringArg(args, "keyword"),
		Sort:     stringArg(args, "sort"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("searching crates.io: %v", err)), nil
	}

	return textResult(result), nil
}

type crateGetResponse struct {
	Name                  string              `json:"name"`
	Description           *string             `json:"description"`
	Homepage              *string             `json:"homepage"`
	Documentation         *string             `json:"documentation"`
	Repository            *string             `json:"repository"`
	Downloads             uint64              `json:"downloads"`
	RecentDownloads       *uint64             `json:"recent_downloads"`
	CreatedAt             string              `json:"created_at"`
	UpdatedAt             string              `json:"updated_at"`
	MaxStableVersion      *string             `json:"max_stable_version"`
	LatestStableFromIndex *string             `json:"latest_stable_from_index"`
	Features              map[string][]string `json:"features"`
	Keywords              []string            `json:"keywords"`
	Categories            []string            `json:"categories"`
}

func (s *Server) handleCrateGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	var (
		api   *registry.CrateResponse
		lines []registry.IndexLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		api, err = s.state.crates.GetCrate(gctx, name)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.state.fetchIndex(gctx, name)
		return err
	})
	if err := g.Wait(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching crate %s: %v", name, err)), nil
	}

	resp := crateGetResponse{
		Name:             api.Crate.Name,
		Description:      api.Crate.Description,
		Homepage:         api.Crate.Homepage,
		Documentation:    api.Crate.Documentation,
		Repository:       api.Crate.Repository,
		Downloads:        api.Crate.Downloads,
		RecentDownloads:  api.Crate.RecentDownloads,
		CreatedAt:        api.Crate.CreatedAt,
		UpdatedAt:        api.Crate.UpdatedAt,
		MaxStableVersion: api.Crate.MaxStableVersion,
	}
	if latest := registry.FindLatestStable(lines); latest != nil {
		resp.LatestStableFromIndex = &latest.Vers
		resp.Features = latest.AllFeatures()
	}
	for _, k := range api.Keywords {
		resp.Keywords = append(resp.Keywords, k.Keyword)
	}
	for _, c := range api.Categories {
		resp.Categories = append(resp.Categories, c.Category)
	}

	return textResult(resp), nil
}

func (s *Server) handleCrateReadmeGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	version, err := s.state.resolveVersion(ctx, name, stringArg(args, "version"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving version: %v", err)), nil
	}

	text, err := s.state.crates.GetReadme(ctx, name, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching README: %v", err)), nil
	}

	return textResult(map[string]any{
		"name":            name,
		"version":         version,
		"readme_text":     text,
		"readme_html_url": fmt.Sprintf("https://crates.io/crates/%s/%s/readme", name, version),
	}), nil
}

type versionSummary struct {
	Version     string   `json:"version"`
	Yanked      bool     `json:"yanked"`
	RustVersion *string  `json:"rust_version"`
	Features    []string `json:"features"`
	DepCount    int      `json:"dep_count"`
}

func (s *Server) handleCrateVersionsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	includeYanked := boolArg(args, "include_yanked", false)
	includePrerelease := boolArg(args, "include_prerelease", false)
	search := stringArg(args, "search")

	lines, err := s.state.fetchIndex(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching index: %v", err)), nil
	}

	var kept []registry.IndexLine
	for _, l := range lines {
		if !includeYanked && l.Yanked {
			continue
		}
		if !includePrerelease && strings.Contains(l.Vers, "-") {
			continue
		}
		if search != "" && !strings.Contains(l.Vers, search) {
			continue
		}
		kept = append(kept, l)
	}
	registry.SortVersionsDescending(kept)

	items := make([]versionSummary, 0, len(kept))
	for _, l := range kept {
		normalDeps := 0
		for _, d := range l.Deps {
			if d.Kind == "" || d.Kind == "normal" {
				normalDeps++
			}
		}
		// Feature names only. The full dep-enable map across many
		// versions of a large crate would dwarf everything else in
		// the response.
		all := l.AllFeatures()
		names := make([]string, 0, len(all))
		for f := range all {
			names = append(names, f)
		}
		sort.Strings(names)
		items = append(items, versionSummary{
			Version:     l.Vers,
			Yanked:      l.Yanked,
			RustVersion: l.RustVersion,
			Features:    names,
			DepCount:    normalDeps,
		})
	}

	return textResult(map[string]any{
		"name":     name,
		"count":    len(items),
		"versions": items,
	}), nil
}

func (s *Server) handleCrateVersionGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	version := stringArg(args, "version")
	if name == "" || version == "" {
		return mcp.NewToolResultError("missing required parameters: name, version"), nil
	}

	v, err := s.state.crates.GetVersion(ctx, name, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching version: %v", err)), nil
	}

	resp := map[string]any{
		"num":          v.Num,
		"license":      v.License,
		"edition":      v.Edition,
		"rust_version": v.RustVersion,
		"has_lib":      v.HasLib,
		"bin_names":    v.Bins,
		"crate_size":   v.CrateSize,
		"downloads":    v.Downloads,
		"yanked":       v.Yanked,
		"yank_message": v.YankMessage,
		"created_at":   v.CreatedAt,
		"checksum":     v.Checksum,
	}
	if v.PublishedBy != nil {
		resp["published_by"] = map[string]any{
			"login": v.PublishedBy.Login,
			"name":  v.PublishedBy.Name,
		}
	}

	return textResult(resp), nil
}

type dependencyEntry struct {
	CrateID         string   `json:"crate_id"`
	Req             string   `json:"req"`
	Kind            string   `json:"kind"`
	Optional        bool     `json:"optional"`
	DefaultFeatures bool     `json:"default_features"`
	Features        []string `json:"features"`
	Target          *string  `json:"target"`
}

func (s *Server) handleCrateDependenciesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	version := stringArg(args, "version")
	if name == "" || version == "" {
		return mcp.NewToolResultError("missing required parameters: name, version"), nil
	}
	kindFilter := stringArg(args, "kind")
	search := strings.ToLower(stringArg(args, "search"))

	resp, err := s.state.crates.GetDependencies(ctx, name, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching dependencies: %v", err)), nil
	}

	deps := make([]dependencyEntry, 0, len(resp.Dependencies))
	for _, d := range resp.Dependencies {
		kind := "normal"
		if d.Kind != nil {
			kind = *d.Kind
		}
		if kindFilter != "" && kind != kindFilter {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.CrateID), search) {
			continue
		}
		deps = append(deps, dependencyEntry{
			CrateID:         d.CrateID,
			Req:             d.Req,
			Kind:            kind,
			Optional:        d.Optional,
			DefaultFeatures: d.DefaultFeatures,
			Features:        d.Features,
			Target:          d.Target,
		})
	}

	return textResult(map[string]any{
		"name":         name,
		"version":      version,
		"count":        len(deps),
		"dependencies": deps,
	}), nil
}

type dependentEntry struct {
	CrateID         string   `json:"crate_id"`
	DependentCrate  string   `json:"dependent_crate"`
	Req             string   `json:"req"`
	Optional        bool     `json:"optional"`
	DefaultFeatures bool     `json:"default_features"`
	Features        []string `json:"features"`
	Kind            *string  `json:"kind"`
}

func (s *Server) handleCrateDependentsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	page := intArg(args, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := intArg(args, "per_page", 20)
	if perPage > 100 {
		perPage = 100
	}
	search := strings.ToLower(stringArg(args, "search"))

	resp, err := s.state.crates.GetReverseDeps(ctx, name, page, perPage)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching reverse dependencies: %v", err)), nil
	}

	// The API splits edges and their declaring versions into parallel
	// lists keyed by version id.
	versionCrate := make(map[uint64]string, len(resp.Versions))
	for _, v := range resp.Versions {
		versionCrate[v.ID] = v.CrateName
	}

	deps := make([]dependentEntry, 0, len(resp.Dependencies))
	for _, d := range resp.Dependencies {
		crateName := versionCrate[d.VersionID]
		if crateName == "" {
			crateName = "?"
		}
		if search != "" && !strings.Contains(strings.ToLower(crateName), search) {
			continue
		}
		deps = append(deps, dependentEntry{
			CrateID:         d.CrateID,
			DependentCrate:  crateName,
			Req:             d.Req,
			Optional:        d.Optional,
			DefaultFeatures: d.DefaultFeatures,
			Features:        d.Features,
			Kind:            d.Kind,
		})
	}

	return textResult(map[string]any{
		"name":       name,
		"total":      resp.Meta.Total,
		"page":       page,
		"per_page":   perPage,
		"count":      len(deps),
		"dependents": deps,
	}), nil
}

type dayDownloads struct {
	Version   string `json:"version"`
	Date      string `json:"date"`
	Downloads uint64 `json:"downloads"`
}

type versionDownloads struct {
	Version   string `json:"version"`
	Downloads uint64 `json:"downloads"`
}

func (s *Server) handleCrateDownloadsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	beforeDate := stringArg(args, "before_date")

	var (
		downloads *registry.DownloadsResponse
		versions  *registry.VersionsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		downloads, err = s.state.crates.GetDownloads(gctx, name, beforeDate)
		return err
	})
	g.Go(func() error {
		var err error
		versions, err = s.state.crates.GetVersions(gctx, name)
		return err
	})
	if err := g.Wait(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching downloads: %v", err)), nil
	}

	versionNum := make(map[uint64]string, len(versions.Versions))
	for _, v := range versions.Versions {
		versionNum[v.ID] = v.Num
	}

	end := beforeDate
	if end == "" {
		end = time.Now().UTC().Format("2006-01-02")
	}
	cutoff30 := subtractDays(end, 30)

	var total30, total90 uint64
	perVersion := make(map[string]uint64)
	days := make([]dayDownloads, 0, len(downloads.VersionDownloads))
	for _, vd := range downloads.VersionDownloads {
		ver := versionNum[vd.Version]
		if ver == "" {
			ver = "?"
		}
		total90 += vd.Downloads
		if vd.Date >= cutoff30 {
			total30 += vd.Downloads
		}
		perVersion[ver] += vd.Downloads
		days = append(days, dayDownloads{Version: ver, Date: vd.Date, Downloads: vd.Downloads})
	}

	breakdown := make([]versionDownloads, 0, len(perVersion))
	for v, n := range perVersion {
		breakdown = append(breakdown, versionDownloads{Version: v, Downloads: n})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Downloads != breakdown[j].Downloads {
			return breakdown[i].Downloads > breakdown[j].Downloads
		}
		return breakdown[i].Version < breakdown[j].Version
	})

	return textResult(map[string]any{
		"name":               name,
		"before_date":        beforeDate,
		"total_30d":          total30,
		"total_90d":          total90,
		"versions_breakdown": breakdown,
		"version_downloads":  days,
	}), nil
}

// subtractDays shifts an ISO date back n days, returning the input
// unchanged when it does not parse.
func subtractDays(date string, n int) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, -n).Format("2006-01-02")
}

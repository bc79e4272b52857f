package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"cratedocs/internal/docsrs"
	"cratedocs/internal/markdown"
	"cratedocs/internal/registry"
	"cratedocs/internal/rustdoc"
)

// fetchDocAndIndex runs the rustdoc fetch and the sparse index fetch in
// parallel. An index failure is not fatal: features simply come back
// empty, matching the best-effort role the index plays in doc tools.
func (s *State) fetchDocAndIndex(ctx context.Context, name, version string) (*rustdoc.Crate, []registry.IndexLine, error) {
	var (
		doc   *rustdoc.Crate
		lines []registry.IndexLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = s.fetchDoc(gctx, name, version)
		return err
	})
	g.Go(func() error {
		lines, _ = s.fetchIndex(gctx, name)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, lines, err
	}
	return doc, lines, nil
}

func (s *Server) handleCrateDocsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	includeItems := boolArg(args, "include_items", false)

	version, err := s.state.resolveVersion(ctx, name, stringArg(args, "version"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving version: %v", err)), nil
	}

	doc, lines, err := s.state.fetchDocAndIndex(ctx, name, version)

	features := map[string][]string{}
	if latest := registry.FindLatestStable(lines); latest != nil {
		features = latest.AllFeatures()
	}

	if err != nil {
		if docsrs.IsNotFound(err) {
			// No rustdoc build on docs.rs for this version. The README
			// is the next best narrative source.
			readme, rerr := s.state.crates.GetReadme(ctx, name, version)
			if rerr != nil {
				readme = "No documentation available"
			}
			return textResult(map[string]any{
				"name":        name,
				"version":     version,
				"root_docs":   readme,
				"note":        "docs.rs build not available; showing README instead",
				"module_tree": []any{},
				"features":    features,
			}), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("fetching docs: %v", err)), nil
	}

	rootDocs := ""
	if root, rerr := doc.RootItem(); rerr == nil {
		rootDocs = markdown.ResolveDocLinks(root.DocText(), rustdoc.DocLinkMap(root, doc, name, version))
	}

	tree, err := rustdoc.BuildModuleTree(doc, includeItems)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("building module tree: %v", err)), nil
	}

	return textResult(map[string]any{
		"name":           name,
		"version":        version,
		"format_version": doc.FormatVersion,
		"root_docs":      rootDocs,
		"features":       features,
		"module_tree":    tree,
	}), nil
}

func (s *Server) handleCrateItemList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	query := stringArg(args, "query")
	if name == "" || query == "" {
		return mcp.NewToolResultError("missing required parameters: name, query"), nil
	}
	limit := intArg(args, "limit", s.state.cfg.Tools.DefaultLimit)
	if limit > 50 {
		limit = 50
	}

	version, err := s.state.resolveVersion(ctx, name, stringArg(args, "version"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving version: %v", err)), nil
	}

	doc, lines, err := s.state.fetchDocAndIndex(ctx, name, version)
	if err != nil {
		if docsrs.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"no docs.rs build found for %s %s; the latest version may not have been built yet. Try an older version with the 'version' parameter, or use crate_docs_get (which falls back to the README)",
				name, version)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("fetching docs: %v", err)), nil
	}

	results := rustdoc.SearchItems(doc, query, rustdoc.SearchOptions{
		Kind:             stringArg(args, "kind"),
		ModulePrefix:     stringArg(args, "module_prefix"),
		Limit:            limit,
		DeclaredFeatures: declaredFeatures(lines),
	})

	return textResult(map[string]any{
		"name":    name,
		"version": version,
		"query":   query,
		"count":   len(results),
		"items":   results,
	}), nil
}

type itemDeprecation struct {
	Since *string `json:"since"`
	Note  *string `json:"note"`
}

func (s *Server) handleCrateItemGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	itemPath := stringArg(args, "item_path")
	if name == "" || itemPath == "" {
		return mcp.NewToolResultError("missing required parameters: name, item_path"), nil
	}
	includeMethods := boolArg(args, "include_methods", true)
	implMode := rustdoc.TraitImplMode(stringArg(args, "include_trait_impls"))
	switch implMode {
	case rustdoc.TraitImplsAll, rustdoc.TraitImplsNone:
	default:
		implMode = rustdoc.TraitImplsFiltered
	}

	version, err := s.state.resolveVersion(ctx, name, stringArg(args, "version"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving version: %v", err)), nil
	}

	doc, lines, err := s.state.fetchDocAndIndex(ctx, name, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching docs: %v", err)), nil
	}
	declared := declaredFeatures(lines)

	id, err := doc.FindItemByPath(name+" "+version, itemPath)
	if err != nil {
		var nf *rustdoc.NotFoundError
		if errors.As(err, &nf) {
			return mcp.NewToolResultError(nf.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("resolving item: %v", err)), nil
	}

	item, ok := doc.Index[id]
	if !ok {
		// Path entry without a body: the item compiled into a
		// different crate's docs (facade re-export).
		entry := doc.Paths[id]
		return mcp.NewToolResultError(fmt.Sprintf(
			"item %q is re-exported from an external crate and its definition is not available in the %s docs; look it up directly in the crate that defines it",
			entry.FullPath(), name)), nil
	}
	entry := doc.Paths[id]

	var deprecated *itemDeprecation
	if item.Deprecation != nil {
		deprecated = &itemDeprecation{Since: item.Deprecation.Since, Note: item.Deprecation.Note}
	}

	methods := []rustdoc.ItemSummary{}
	if includeMethods {
		if item.Inner.Kind == rustdoc.KindTrait {
			methods = append(methods, rustdoc.TraitMethods(doc, &item)...)
		} else {
			methods = append(methods, rustdoc.InherentMethods(doc, &item)...)
		}
	}

	traitImpls := []rustdoc.ImplRef{}
	traitImpls = append(traitImpls, rustdoc.TypeTraitImpls(doc, itemPath, "", implMode, 0)...)

	docs := markdown.ResolveDocLinks(item.DocText(), rustdoc.DocLinkMap(&item, doc, name, version))

	return textResult(map[string]any{
		"path":                 itemPath,
		"kind":                 entry.Kind,
		"signature":            rustdoc.ItemSignature(&item, doc),
		"docs":                 docs,
		"deprecated":           deprecated,
		"feature_requirements": rustdoc.FeatureRequirements(item.AttrStrings(), declared),
		"methods":              methods,
		"trait_impls":          traitImpls,
	}), nil
}

func (s *Server) handleCrateImplsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	traitPath := stringArg(args, "trait_path")
	typePath := stringArg(args, "type_path")
	if traitPath == "" && typePath == "" {
		return mcp.NewToolResultError("either trait_path or type_path must be specified"), nil
	}
	search := stringArg(args, "search")
	limit := intArg(args, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	version, err := s.state.resolveVersion(ctx, name, stringArg(args, "version"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving version: %v", err)), nil
	}

	doc, err := s.state.fetchDoc(ctx, name, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching docs: %v", err)), nil
	}

	if traitPath != "" {
		impls := rustdoc.TraitImplementors(doc, traitPath, search, limit)
		return textResult(map[string]any{
			"name":         name,
			"version":      version,
			"trait_path":   traitPath,
			"count":        len(impls),
			"implementors": impls,
		}), nil
	}

	impls := rustdoc.TypeTraitImpls(doc, typePath, search, rustdoc.TraitImplsAll, limit)
	return textResult(map[string]any{
		"name":            name,
		"version":         version,
		"type_path":       typePath,
		"count":           len(impls),
		"implementations": impls,
	}), nil
}

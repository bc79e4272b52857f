package mcp

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handleCacheStatus(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArg(args, "name")

	resp := map[string]any{
		"http_cache": s.state.cache.Stats(),
		"ttl_hours":  s.state.cfg.Cache.TTLHours,
	}

	if s.state.catalog != nil {
		stats, err := s.state.catalog.Stats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reading catalog: %v", err)), nil
		}
		records, err := s.state.catalog.List(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing catalog: %v", err)), nil
		}
		resp["catalog"] = stats
		resp["fetched_docs"] = records
	} else {
		log.Printf("cache_status served without catalog")
		resp["catalog"] = nil
	}

	return textResult(resp), nil
}

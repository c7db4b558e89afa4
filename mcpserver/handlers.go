package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentplexus/mcp-confluence-lite/config"
)

const (
	defaultSpaceLimit  = 25
	defaultPageLimit   = 10
	defaultSearchLimit = 10

	// maxContentChars caps the page body returned by get_page_content.
	maxContentChars = 500
)

type listSpacesArgs struct {
	Limit int `mapstructure:"limit"`
}

type spaceArgs struct {
	SpaceKey string `mapstructure:"space_key"`
}

type listPagesArgs struct {
	SpaceKey string `mapstructure:"space_key"`
	Limit    int    `mapstructure:"limit"`
}

type pageContentArgs struct {
	SpaceKey  string `mapstructure:"space_key"`
	PageTitle string `mapstructure:"page_title"`
}

type searchArgs struct {
	Query string `mapstructure:"query"`
	Limit int    `mapstructure:"limit"`
}

func decodeArgs(input map[string]any, out any) error {
	if err := decode(input, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func (s *Server) handleListSpaces(ctx context.Context, input map[string]any) (string, error) {
	var args listSpacesArgs
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}

	resp, err := s.client.GetAllSpaces(ctx, 0, limitOrDefault(args.Limit, defaultSpaceLimit))
	if err != nil {
		return "", upstream(err)
	}

	spaces, err := decodeList[spaceRecord](extractList(resp, "results"), "space")
	if err != nil {
		return "", upstream(err)
	}
	if len(spaces) == 0 {
		return "No spaces found", nil
	}

	var b strings.Builder
	b.WriteString("Available Confluence Spaces:\n\n")
	for _, sp := range spaces {
		fmt.Fprintf(&b, "- **%s** (Key: %s, Type: %s)\n", orNA(sp.Name), orNA(sp.Key), orNA(sp.Type))
	}
	return b.String(), nil
}

func (s *Server) handleGetSpaceDetails(ctx context.Context, input map[string]any) (string, error) {
	var args spaceArgs
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	if args.SpaceKey == "" {
		return "", fmt.Errorf("space_key is required")
	}

	resp, err := s.client.GetSpace(ctx, args.SpaceKey)
	if err != nil {
		return "", upstream(err)
	}

	raw, ok := resp.(map[string]any)
	if !ok {
		return "", upstream(fmt.Errorf("unexpected space response of type %T", resp))
	}

	var sp spaceRecord
	if err := decode(raw, &sp); err != nil {
		return "", upstream(fmt.Errorf("decode space: %w", err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Space: %s**\n\n", orNA(sp.Name))
	fmt.Fprintf(&b, "Key: %s\n", orNA(sp.Key))
	fmt.Fprintf(&b, "Type: %s\n", orNA(sp.Type))

	if desc, ok := raw["description"]; ok && !isEmpty(desc) {
		value := notAvailable
		if v, ok := lookup(desc, "plain", "value"); ok && v != nil {
			value = fmt.Sprint(v)
		}
		fmt.Fprintf(&b, "Description: %s\n", value)
	}

	return b.String(), nil
}

func (s *Server) handleListPages(ctx context.Context, input map[string]any) (string, error) {
	var args listPagesArgs
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	if args.SpaceKey == "" {
		return "", fmt.Errorf("space_key is required")
	}

	resp, err := s.client.GetAllPagesFromSpace(ctx, args.SpaceKey, 0, limitOrDefault(args.Limit, defaultPageLimit))
	if err != nil {
		return "", upstream(err)
	}

	pages, err := decodeList[pageRecord](extractList(resp, "results", "page"), "page")
	if err != nil {
		return "", upstream(err)
	}
	if len(pages) == 0 {
		return fmt.Sprintf("No pages found in space %s", args.SpaceKey), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pages in space **%s**:\n\n", args.SpaceKey)
	for _, p := range pages {
		fmt.Fprintf(&b, "- %s (ID: %s)\n", orNA(p.Title), orNA(p.ID))
	}
	return b.String(), nil
}

func (s *Server) handleGetPageContent(ctx context.Context, input map[string]any) (string, error) {
	var args pageContentArgs
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	if args.SpaceKey == "" {
		return "", fmt.Errorf("space_key is required")
	}
	if args.PageTitle == "" {
		return "", fmt.Errorf("page_title is required")
	}

	page, err := s.client.GetPageByTitle(ctx, args.SpaceKey, args.PageTitle)
	if err != nil {
		return "", upstream(err)
	}
	if len(page) == 0 {
		return "", &NotFoundError{
			Message: fmt.Sprintf("Page '%s' not found in space %s", args.PageTitle, args.SpaceKey),
		}
	}

	var rec pageRecord
	if err := decode(page, &rec); err != nil {
		return "", upstream(fmt.Errorf("decode page: %w", err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (ID: %s)\n\n", orNA(rec.Title), orNA(rec.ID))

	var body any = "No content"
	if v, ok := lookup(page, "body", "storage", "value"); ok {
		body = v
	}
	if text, ok := body.(string); ok {
		fmt.Fprintf(&b, "Content:\n%s\n", truncateContent(text, maxContentChars))
	} else {
		b.WriteString("Content: [Unable to parse]")
	}

	return b.String(), nil
}

func (s *Server) handleSearchPages(ctx context.Context, input map[string]any) (string, error) {
	var args searchArgs
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	if args.Query == "" {
		return "", fmt.Errorf("query is required")
	}
	limit := limitOrDefault(args.Limit, defaultSearchLimit)

	resp, err := s.client.CQL(ctx, args.Query, limit)
	if err != nil {
		return "", upstream(err)
	}

	noResults := fmt.Sprintf("No results found for query: %s", args.Query)
	if isEmpty(resp) {
		return noResults, nil
	}

	list := extractList(resp, "results")
	if len(list) == 0 {
		return noResults, nil
	}
	if len(list) > limit {
		list = list[:limit]
	}

	items, err := decodeList[searchRecord](list, "search result")
	if err != nil {
		return "", upstream(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for: **%s**\n\n", args.Query)
	for _, it := range items {
		itemType := it.Type
		if itemType == "" {
			itemType = "unknown"
		}
		fmt.Fprintf(&b, "- [%s] %s (Space: %s)\n", itemType, orNA(it.Title), orNA(it.Space.Key))
	}
	return b.String(), nil
}

func (s *Server) handleGetConfluenceInfo(ctx context.Context, _ map[string]any) (string, error) {
	if s.capability != config.InfoServerInfo {
		if _, err := s.client.GetAllSpaces(ctx, 0, 1); err != nil {
			return "", upstream(err)
		}
		return "**Confluence Instance Connected**\n\nServer responding to requests.", nil
	}

	info, err := s.client.ServerInfo(ctx)
	if err != nil {
		return "", upstream(err)
	}

	var rec serverInfoRecord
	if err := decode(info, &rec); err != nil {
		return "", upstream(fmt.Errorf("decode server info: %w", err))
	}

	version := rec.Version
	if version == "" && rec.VersionNumbers != nil {
		version = fmt.Sprint(rec.VersionNumbers)
	}

	var b strings.Builder
	b.WriteString("**Confluence Instance Information**\n\n")
	fmt.Fprintf(&b, "Version: %s\n", orNA(version))
	fmt.Fprintf(&b, "Build Number: %s\n", orNA(rec.BuildNumber))
	fmt.Fprintf(&b, "URL: %s\n", orNA(rec.BaseURL, rec.URL))
	return b.String(), nil
}

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names.
const (
	ToolListSpaces        = "list_spaces"
	ToolGetSpaceDetails   = "get_space_details"
	ToolListPages         = "list_pages"
	ToolGetPageContent    = "get_page_content"
	ToolSearchPages       = "search_pages"
	ToolGetConfluenceInfo = "get_confluence_info"
)

// ToolDef pairs a tool definition with its handler.
type ToolDef struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Tools returns the list of available MCP tools.
func (s *Server) Tools() []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool(ToolListSpaces,
				mcp.WithDescription("List all spaces in Confluence"),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of spaces to return (default 25)"),
					mcp.DefaultNumber(defaultSpaceLimit),
				),
			),
			Handler: s.wrap(ToolListSpaces, "listing spaces", s.handleListSpaces),
		},
		{
			Tool: mcp.NewTool(ToolGetSpaceDetails,
				mcp.WithDescription("Get details about a specific Confluence space"),
				mcp.WithString("space_key",
					mcp.Required(),
					mcp.Description("The key of the space, e.g. DEV"),
				),
			),
			Handler: s.wrap(ToolGetSpaceDetails, "getting space details", s.handleGetSpaceDetails),
		},
		{
			Tool: mcp.NewTool(ToolListPages,
				mcp.WithDescription("List pages in a space"),
				mcp.WithString("space_key",
					mcp.Required(),
					mcp.Description("The key of the space whose pages are listed"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of pages to return (default 10)"),
					mcp.DefaultNumber(defaultPageLimit),
				),
			),
			Handler: s.wrap(ToolListPages, "listing pages", s.handleListPages),
		},
		{
			Tool: mcp.NewTool(ToolGetPageContent,
				mcp.WithDescription("Get page content by title"),
				mcp.WithString("space_key",
					mcp.Required(),
					mcp.Description("The key of the space containing the page"),
				),
				mcp.WithString("page_title",
					mcp.Required(),
					mcp.Description("The exact title of the page"),
				),
			),
			Handler: s.wrap(ToolGetPageContent, "getting page content", s.handleGetPageContent),
		},
		{
			Tool: mcp.NewTool(ToolSearchPages,
				mcp.WithDescription("Search for pages in Confluence"),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("CQL query string (e.g., 'space = DEV and type = page')"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of results (default 10)"),
					mcp.DefaultNumber(defaultSearchLimit),
				),
			),
			Handler: s.wrap(ToolSearchPages, "searching pages", s.handleSearchPages),
		},
		{
			Tool: mcp.NewTool(ToolGetConfluenceInfo,
				mcp.WithDescription("Get Confluence instance info"),
			),
			Handler: s.wrap(ToolGetConfluenceInfo, "getting Confluence info", s.handleGetConfluenceInfo),
		},
	}
}

package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all cobscn MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	// Tool 1: restructure_section - run the full S1-S6 pipeline
	s.AddTool(mcp.NewTool("restructure_section",
		mcp.WithDescription("Rebuild structured control flow (if/while/break/continue) from a parsed COBOL syntax-tree fixture"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a syntax-tree fixture file (*.json) to restructure")),
		mcp.WithString("section",
			mcp.Description("Restrict to this section name. Default: every section in the fixture")),
		mcp.WithBoolean("keep_raw_gotos",
			mcp.Description("Keep every GO TO in the output instead of eliding captured ones (default: false)")),
		mcp.WithNumber("budget",
			mcp.Description("Reduction step budget per section, 0 = unlimited (default: 0)")),
	), h.HandleRestructureSection)

	// Tool 2: dump_stage - Graphviz DOT of one pipeline stage
	s.AddTool(mcp.NewTool("dump_stage",
		mcp.WithDescription("Render one pipeline stage of one section as a Graphviz DOT document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a syntax-tree fixture file (*.json)")),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("Section name to dump")),
		mcp.WithString("stage",
			mcp.Required(),
			mcp.Description("Pipeline stage: s1 (statement graph), s2 (reachable subgraph), s3 (branch/join graph), s4 (loop-break DAG), s5 (scoped graph)")),
	), h.HandleDumpStage)
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ludo-technologies/cobscn/internal/version"
	"github.com/ludo-technologies/cobscn/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const serverName = "cobscn"

func main() {
	// Set up logging to stderr (MCP uses stdout for JSON-RPC)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Create MCP server with tool capabilities
	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	configPath := os.Getenv("COBSCN_CONFIG")
	dependencies, err := mcp.NewDependencies(configPath)
	if err != nil {
		log.Printf("Warning: failed to load config: %v, using defaults", err)
		dependencies, err = mcp.NewDependencies("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
	}
	handlers := mcp.NewHandlerSet(dependencies)

	// Register all cobscn tools
	mcp.RegisterTools(server, handlers)

	log.Printf("Starting %s MCP server v%s\n", serverName, version.Short())
	log.Println("Registered tools:")
	log.Println("  - restructure_section: Structured control flow from a COBOL syntax tree")
	log.Println("  - dump_stage: Graphviz DOT of one pipeline stage")
	log.Println("")
	log.Println("Server ready - waiting for MCP client connection...")

	// Start server with stdio transport
	// This blocks until the server is terminated
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewCapabilityMCPServer creates an MCP server with all 4 capability tools registered.
func NewCapabilityMCPServer(svc *CapabilityService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "capform",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_capabilities",
		Description: "Scan a Go project against its capform manifest. Type-checks the project, probes every exported named type for the declared method forms, and populates the capability index.",
	}, svc.ScanCapabilities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_capability",
		Description: "Ask whether a single type provides a capability. Types absent from the index answer false; only malformed requests are errors.",
	}, svc.QueryCapability)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_providers",
		Description: "List every type in the index that provides the named capability.",
	}, svc.ListProviders)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_stats",
		Description: "Return package, type, capability, and provides-edge counts for the current index.",
	}, svc.IndexStats)

	return server
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunMCPServerHTTP starts an HTTP server exposing the capability MCP tools.
func RunMCPServerHTTP(ctx context.Context, svc *CapabilityService, addr string) error {
	server := NewCapabilityMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Package mcp provides an MCP (Model Context Protocol) server for gentrap-report.
// This allows AI agents to query an assembled pipeline run through MCP tools
// instead of parsing the rendered report.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/biopet/gentrap-report/internal/gentrap"
	"github.com/biopet/gentrap-report/internal/output"
	"github.com/biopet/gentrap-report/internal/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Server wraps the MCP server around one assembled run.
type Server struct {
	mcpServer    *server.MCPServer
	run          *gentrap.Run
	logger       *zap.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	Logger  *zap.Logger
}

// AllTools lists all available tools
var AllTools = []string{"gentrap_run", "gentrap_sample", "gentrap_library", "gentrap_qc"}

// New creates a new MCP server exposing run.
func New(run *gentrap.Run, cfg Config) (*Server, error) {
	if run == nil {
		return nil, fmt.Errorf("no run to serve")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		"gentrap-report",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		run:          run,
		logger:       logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "gentrap_run":
		s.mcpServer.AddTool(mcp.NewTool("gentrap_run",
			mcp.WithDescription(toolSchemaRegistry["gentrap_run"].Description),
			mcp.WithString("density",
				mcp.Description("Detail level: sparse, medium, dense (default: medium)"),
			),
		), s.handleRun)
	case "gentrap_sample":
		s.mcpServer.AddTool(mcp.NewTool("gentrap_sample",
			mcp.WithDescription(toolSchemaRegistry["gentrap_sample"].Description),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Sample name"),
			),
			mcp.WithString("density",
				mcp.Description("Detail level: sparse, medium, dense (default: medium)"),
			),
		), s.handleSample)
	case "gentrap_library":
		s.mcpServer.AddTool(mcp.NewTool("gentrap_library",
			mcp.WithDescription(toolSchemaRegistry["gentrap_library"].Description),
			mcp.WithString("sample",
				mcp.Required(),
				mcp.Description("Sample the library belongs to"),
			),
			mcp.WithString("library",
				mcp.Required(),
				mcp.Description("Library name"),
			),
			mcp.WithString("density",
				mcp.Description("Detail level: sparse, medium, dense (default: dense)"),
			),
		), s.handleLibrary)
	case "gentrap_qc":
		s.mcpServer.AddTool(mcp.NewTool("gentrap_qc",
			mcp.WithDescription(toolSchemaRegistry["gentrap_qc"].Description),
			mcp.WithString("sample",
				mcp.Description("Restrict to one sample"),
			),
			mcp.WithBoolean("failures_only",
				mcp.Description("Only list failing modules"),
			),
		), s.handleQC)
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
	return nil
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	// Start timeout checker if timeout is set
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			s.logger.Info("mcp server idle, exiting", zap.Duration("timeout", s.timeout))
			s.logger.Sync()
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tools, sorted.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in registerTool.
var toolSchemaRegistry = map[string]ToolSchema{
	"gentrap_run": {
		Name:        "gentrap_run",
		Description: "Summarize the pipeline run: version, library type, curated executables and every sample with its libraries.",
		Parameters: []ParameterSchema{
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: medium)"},
		},
	},
	"gentrap_sample": {
		Name:        "gentrap_sample",
		Description: "Show one sample with its RNA and alignment metrics and its libraries.",
		Parameters: []ParameterSchema{
			{Name: "name", Type: "string", Description: "Sample name", Required: true},
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: medium)"},
		},
	},
	"gentrap_library": {
		Name:        "gentrap_library",
		Description: "Show one library with its settings, metrics and FastQC module tables.",
		Parameters: []ParameterSchema{
			{Name: "sample", Type: "string", Description: "Sample the library belongs to", Required: true},
			{Name: "library", Type: "string", Description: "Library name", Required: true},
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: dense)"},
		},
	},
	"gentrap_qc": {
		Name:        "gentrap_qc",
		Description: "List FastQC module statuses per library, or only the failing modules.",
		Parameters: []ParameterSchema{
			{Name: "sample", Type: "string", Description: "Restrict to one sample"},
			{Name: "failures_only", Type: "boolean", Description: "Only list failing modules"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	names := s.ListTools()
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case "gentrap_run":
		density, _ := args["density"].(string)
		return s.executeRun(density)

	case "gentrap_sample":
		sample, _ := args["name"].(string)
		if sample == "" {
			return "", fmt.Errorf("name parameter is required")
		}
		density, _ := args["density"].(string)
		return s.executeSample(sample, density)

	case "gentrap_library":
		sample, _ := args["sample"].(string)
		library, _ := args["library"].(string)
		if sample == "" || library == "" {
			return "", fmt.Errorf("sample and library parameters are required")
		}
		density, _ := args["density"].(string)
		return s.executeLibrary(sample, library, density)

	case "gentrap_qc":
		sample, _ := args["sample"].(string)
		failuresOnly, _ := args["failures_only"].(bool)
		return s.executeQC(sample, failuresOnly)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// handle adapts CallTool to an MCP tool handler.
func (s *Server) handle(name string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()
	s.logger.Debug("mcp tool call", zap.String("tool", name))

	result, err := s.CallTool(name, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handle("gentrap_run", req)
}

func (s *Server) handleSample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handle("gentrap_sample", req)
}

func (s *Server) handleLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handle("gentrap_library", req)
}

func (s *Server) handleQC(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handle("gentrap_qc", req)
}

func (s *Server) executeRun(density string) (string, error) {
	d, err := parseDensity(density, output.DensityMedium)
	if err != nil {
		return "", err
	}
	return toJSON(output.NewRunOutput(s.run, d))
}

func (s *Server) executeSample(name, density string) (string, error) {
	d, err := parseDensity(density, output.DensityMedium)
	if err != nil {
		return "", err
	}
	sample, ok := s.run.Sample(name)
	if !ok {
		return "", fmt.Errorf("sample not found: %s (samples: %v)", name, s.run.SampleNames)
	}
	return toJSON(output.NewSampleOutput(sample, d))
}

func (s *Server) executeLibrary(sample, library, density string) (string, error) {
	d, err := parseDensity(density, output.DensityDense)
	if err != nil {
		return "", err
	}
	lib, ok := s.run.Library(sample, library)
	if !ok {
		return "", fmt.Errorf("library not found: %s/%s", sample, library)
	}
	return toJSON(output.NewLibraryOutput(lib, d))
}

// qcResult is the gentrap_qc payload. Totals always cover the whole run.
type qcResult struct {
	Totals    report.Totals          `json:"totals"`
	Libraries []report.LibraryQC     `json:"libraries,omitempty"`
	Failures  []report.ModuleFailure `json:"failures"`
}

func (s *Server) executeQC(sample string, failuresOnly bool) (string, error) {
	qc := report.NewQCReport(s.run)

	if sample != "" {
		if _, ok := s.run.Sample(sample); !ok {
			return "", fmt.Errorf("sample not found: %s (samples: %v)", sample, s.run.SampleNames)
		}
		kept := qc.Libraries[:0]
		for _, lib := range qc.Libraries {
			if lib.Sample == sample {
				kept = append(kept, lib)
			}
		}
		qc.Libraries = kept
	}

	res := qcResult{
		Totals:   qc.Totals,
		Failures: qc.Failures(),
	}
	if res.Failures == nil {
		res.Failures = []report.ModuleFailure{}
	}
	if !failuresOnly {
		res.Libraries = qc.Libraries
	}
	return toJSON(res)
}

func parseDensity(s string, def output.Density) (output.Density, error) {
	if s == "" {
		return def, nil
	}
	return output.ParseDensity(s)
}

// Helper functions

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

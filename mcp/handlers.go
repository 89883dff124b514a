// Package mcp exposes the structuring pipeline over the Model Context
// Protocol: restructure_section runs S1-S6 on a fixture and returns the
// structured tree as JSON, dump_stage returns one intermediate stage as a
// Graphviz DOT document.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/debug"
	"github.com/ludo-technologies/cobscn/internal/fixture"
	"github.com/ludo-technologies/cobscn/internal/reporter"
	"github.com/ludo-technologies/cobscn/internal/structure"
	"github.com/ludo-technologies/cobscn/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// HandlerSet binds tool handlers to their shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet creates handlers backed by deps.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	return &HandlerSet{deps: deps}
}

// HandleRestructureSection handles the restructure_section tool
func (h *HandlerSet) HandleRestructureSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	base := h.deps.BaseRequest()
	override := &domain.StructureRequest{
		Paths:        []string{path},
		OutputFormat: domain.OutputFormatJSON,
		KeepRawGotos: base.KeepRawGotos,
	}
	if section, ok := args["section"].(string); ok && section != "" {
		override.Sections = []string{section}
	}
	if keep, ok := args["keep_raw_gotos"].(bool); ok {
		override.KeepRawGotos = keep
	}
	if budget, ok := args["budget"].(float64); ok {
		override.ReductionBudget = int(budget)
	}

	loader := service.NewStructureConfigurationLoader()
	req := *loader.MergeConfig(&base, override)
	// Stage dumps go through the dedicated dump_stage tool, never the
	// filesystem side effect the CLI flag implies.
	req.DumpStage = ""

	prog, err := fixture.Load(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load fixture: %v", err)), nil
	}

	driver := service.NewDriver(service.NewNoOpProgressReporter())
	resp, err := driver.Run(ctx, []*ast.Program{prog}, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("structuring failed: %v", err)), nil
	}

	jsonData, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// HandleDumpStage handles the dump_stage tool
func (h *HandlerSet) HandleDumpStage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	section, ok := args["section"].(string)
	if !ok || section == "" {
		return mcp.NewToolResultError("section parameter is required and must be a string"), nil
	}
	stage, ok := args["stage"].(string)
	if !ok || stage == "" {
		return mcp.NewToolResultError("stage parameter is required and must be a string"), nil
	}
	dumpReq := domain.DotDumpRequest{Path: path, Section: section, Stage: stage}

	prog, err := fixture.Load(dumpReq.Path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load fixture: %v", err)), nil
	}
	if prog.ProcedureDivision == nil {
		return mcp.NewToolResultError("fixture has no procedure division"), nil
	}
	sec := prog.ProcedureDivision.FindSection(dumpReq.Section)
	if sec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("section not found: %s", dumpReq.Section)), nil
	}

	base := h.deps.BaseRequest()
	opts := structure.Options{
		KeepRawGotos:    base.KeepRawGotos,
		LabelPrefix:     base.LabelPrefix,
		ReductionBudget: base.ReductionBudget,
	}

	collect := reporter.NewWarningCollector()
	_, snap, err := service.RunSection(sec, opts, collect)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("structuring failed: %v", err)), nil
	}

	dot, err := debug.Dump(debug.Stage(dumpReq.Stage), snap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dump failed: %v", err)), nil
	}

	jsonData, err := json.Marshal(domain.DotDumpResponse{Section: dumpReq.Section, Stage: dumpReq.Stage, Dot: dot})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

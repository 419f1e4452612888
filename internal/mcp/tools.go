package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/selenium-grid-go/internal/config"
	"github.com/wagiedev/selenium-grid-go/internal/supervisor"
)

// Tool names.
const (
	ToolStart  = "grid_start"
	ToolStop   = "grid_stop"
	ToolStatus = "grid_status"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "selenium-grid"

// Controller is the part of a supervisor the tools drive.
type Controller interface {
	Start(ctx context.Context, mode config.Mode, launch config.LaunchConfig) error
	Stop(ctx context.Context) error
	State() supervisor.State
	Handles() int
}

// Compile-time verification that the supervisor satisfies Controller.
var _ Controller = (*supervisor.Supervisor)(nil)

// Status is the grid_status payload.
type Status struct {
	State    string `json:"state"`
	Children int    `json:"children"`
	HubURL   string `json:"hub_url,omitempty"`
}

type startArgs struct {
	Mode       string  `json:"mode"`
	Host       *string `json:"host"`
	Port       *int    `json:"port"`
	Timeout    *int    `json:"timeout"`
	MaxSession *int    `json:"max_session"`
}

func (a *startArgs) apply(launch config.LaunchConfig) config.LaunchConfig {
	if a.Host != nil {
		launch.Host = *a.Host
	}

	if a.Port != nil {
		launch.Port = *a.Port
	}

	if a.Timeout != nil {
		launch.Timeout = *a.Timeout
	}

	if a.MaxSession != nil {
		launch.MaxSessions = *a.MaxSession
	}

	return launch
}

// NewGridServer registers the grid tools for ctrl. Arguments omitted from a
// grid_start call fall back to defaults.
func NewGridServer(ctrl Controller, defaults config.LaunchConfig, version string) *SDKServer {
	s := NewSDKServer(ServerName, version)
	tools := &gridTools{ctrl: ctrl, defaults: defaults}

	s.AddTool(NewTool(ToolStart,
		"Start a Selenium grid. mode is standalone or hub (hub also starts a headless PhantomJS client). "+
			"Blocks until the grid accepts sessions.",
		ObjectSchema(map[string]string{
			"mode":        "string",
			"host":        "string",
			"port":        "int",
			"timeout":     "int",
			"max_session": "int",
		}),
	), tools.start)

	s.AddTool(NewTool(ToolStop,
		"Stop the Selenium grid and wait for its processes to exit.",
		ObjectSchema(nil),
	), tools.stop)

	s.AddTool(NewTool(ToolStatus,
		"Report the grid lifecycle state and the number of running processes.",
		ObjectSchema(nil),
	), tools.status)

	return s
}

type gridTools struct {
	ctrl     Controller
	defaults config.LaunchConfig

	mu sync.Mutex
	// last is the hub URL of the most recent successful start.
	last string
}

func (g *gridTools) start(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args startArgs
	if err := ParseArguments(req, &args); err != nil {
		return ErrorResult(err.Error()), nil
	}

	mode, err := config.ParseMode(args.Mode)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	launch := args.apply(g.defaults)

	if err := g.ctrl.Start(ctx, mode, launch); err != nil {
		return ErrorResult(fmt.Sprintf("start %s grid: %v", mode, err)), nil
	}

	g.mu.Lock()
	g.last = launch.HubURL()
	g.mu.Unlock()

	return TextResult(fmt.Sprintf("%s grid ready at %s", mode, launch.HubURL())), nil
}

func (g *gridTools) stop(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := g.ctrl.Stop(ctx); err != nil {
		return ErrorResult("stop grid: " + err.Error()), nil
	}

	return TextResult("grid stopped"), nil
}

func (g *gridTools) status(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := g.ctrl.State()

	status := Status{
		State:    state.String(),
		Children: g.ctrl.Handles(),
	}

	if state == supervisor.StateReady {
		g.mu.Lock()
		status.HubURL = g.last
		g.mu.Unlock()
	}

	data, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}

	return TextResult(string(data)), nil
}

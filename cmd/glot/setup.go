package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// serverName is the key glot registers under in agent MCP configs.
const serverName = "glot"

// Scopes for agents that register servers through their own CLI.
const (
	scopeProject = "project"
	scopeUser    = "user"
)

// agent describes one coding agent glot can register with.
type agent struct {
	ID   string
	Name string
	// Binary is set for agents that register servers through `<binary> mcp add`.
	Binary string
	// Scoped agents accept --scope; the others always register per user.
	Scoped bool
	// Marker is a directory in the project whose presence reveals the agent.
	Marker string
	// File returns the agent's MCP config file for the project in dir.
	File       func(dir string) string
	ServersKey string
	Extra      map[string]any
	// Shared config files live in the project and are started from there.
	Shared bool
}

// Replaceable for testing.
var (
	lookPathFunc = exec.LookPath
	statFunc     = os.Stat
	runCommand   = func(w io.Writer, name string, args ...string) error {
		cmd := exec.Command(name, args...)
		cmd.Stdout = w
		cmd.Stderr = w
		return cmd.Run()
	}
)

func inProject(parts ...string) func(string) string {
	return func(dir string) string {
		return filepath.Join(append([]string{dir}, parts...)...)
	}
}

var agents = []agent{
	{
		ID: "claude_code", Name: "Claude Code", Binary: "claude", Scoped: true,
		File: inProject(".mcp.json"), ServersKey: "mcpServers", Shared: true,
	},
	{
		ID: "openai_codex", Name: "OpenAI Codex", Binary: "codex",
	},
	{
		ID: "vscode_copilot", Name: "VS Code Copilot", Marker: ".vscode",
		File: inProject(".vscode", "mcp.json"), ServersKey: "servers", Shared: true,
		Extra: map[string]any{"type": "stdio"},
	},
	{
		ID: "cursor", Name: "Cursor", Marker: ".cursor",
		File: inProject(".cursor", "mcp.json"), ServersKey: "mcpServers", Shared: true,
	},
	{
		ID: "claude_desktop", Name: "Claude Desktop",
		File:       func(string) string { return claudeDesktopConfigPath() },
		ServersKey: "mcpServers",
	},
}

func claudeDesktopConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// launch is the command an agent runs to start the server.
type launch struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

func (l launch) String() string {
	return strings.Join(append([]string{l.Command}, l.Args...), " ")
}

func (l launch) entry(extra map[string]any) map[string]any {
	args := make([]any, len(l.Args))
	for i, a := range l.Args {
		args[i] = a
	}
	e := map[string]any{"command": l.Command, "args": args}
	for k, v := range extra {
		e[k] = v
	}
	return e
}

// matches reports whether a decoded server entry starts the same server.
func (l launch) matches(entry any) bool {
	m, ok := entry.(map[string]any)
	if !ok || m["command"] != l.Command {
		return false
	}
	args, _ := m["args"].([]any)
	if len(args) != len(l.Args) {
		return false
	}
	for i, a := range args {
		if a != l.Args[i] {
			return false
		}
	}
	return true
}

type agentStatus int

const (
	statusMissing agentStatus = iota
	statusCurrent
	// statusStale is a glot entry that starts some other project or config.
	statusStale
)

func (s agentStatus) String() string {
	switch s {
	case statusCurrent:
		return "configured"
	case statusStale:
		return "outdated"
	default:
		return "not configured"
	}
}

type detectedAgent struct {
	agent agent
	// config is the resolved config file, "" when the agent keeps its own.
	config string
	status agentStatus
}

type setupOptions struct {
	auto  bool
	force bool
	scope string
}

// setup registers `glot serve --config <project config>` with agents found
// for one project.
type setup struct {
	// dir is the project directory, configPath its .glot/config.yaml.
	dir        string
	configPath string
	opts       setupOptions
	in         *bufio.Scanner
	out        io.Writer
}

func newSetupCmd(global *globalOptions) *cobra.Command {
	opts := setupOptions{}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register glot as an MCP server with detected coding agents",
		Long: `Detect installed coding agents (Claude Code, Codex, VS Code Copilot, Cursor,
Claude Desktop) and add "glot serve --config <project config>" to their MCP
server configuration. Run "glot init" first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.scope != scopeProject && opts.scope != scopeUser {
				return fmt.Errorf("unsupported scope %q (want %s or %s)", opts.scope, scopeProject, scopeUser)
			}
			pc, err := loadProjectConfig(global.configPath)
			if err != nil {
				return err
			}
			if pc == nil {
				return fmt.Errorf("no project config at %s (run \"glot init\" first)", global.configPath)
			}
			s := &setup{
				dir:        pc.dir,
				configPath: global.configPath,
				opts:       opts,
				in:         bufio.NewScanner(cmd.InOrStdin()),
				out:        cmd.OutOrStdout(),
			}
			return s.run()
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.auto, "auto", false, "Configure every detected agent without prompting")
	f.BoolVar(&opts.force, "force", false, "Replace glot entries that start a different config")
	f.StringVar(&opts.scope, "scope", scopeProject, "Scope for CLI agents in --auto mode: project or user")

	return cmd
}

// launch builds the server command. Shared configs are started from the
// project directory and take the config path relative to it.
func (s *setup) launch(shared bool) (launch, error) {
	abs, err := filepath.Abs(s.configPath)
	if err != nil {
		return launch{}, err
	}
	path := abs
	if shared {
		dir, err := filepath.Abs(s.dir)
		if err != nil {
			return launch{}, err
		}
		if rel, err := filepath.Rel(dir, abs); err == nil && !strings.HasPrefix(rel, "..") {
			path = filepath.ToSlash(rel)
		}
	}
	return launch{Command: "glot", Args: []string{"serve", "--config", path}}, nil
}

func (s *setup) detect() []detectedAgent {
	var found []detectedAgent
	for _, a := range agents {
		switch {
		case a.Binary != "":
			if _, err := lookPathFunc(a.Binary); err != nil {
				continue
			}
		case a.Marker != "":
			if _, err := statFunc(filepath.Join(s.dir, a.Marker)); err != nil {
				continue
			}
		default:
			if _, err := statFunc(filepath.Dir(a.File(s.dir))); err != nil {
				continue
			}
		}
		d := detectedAgent{agent: a}
		if a.File != nil {
			d.config = a.File(s.dir)
			d.status = s.status(d.config, a)
		}
		found = append(found, d)
	}
	return found
}

func (s *setup) status(path string, a agent) agentStatus {
	data, err := os.ReadFile(path)
	if err != nil {
		return statusMissing
	}
	var config map[string]any
	if json.Unmarshal(data, &config) != nil {
		return statusMissing
	}
	servers, _ := config[a.ServersKey].(map[string]any)
	entry, ok := servers[serverName]
	if !ok {
		return statusMissing
	}
	if l, err := s.launch(a.Shared); err == nil && l.matches(entry) {
		return statusCurrent
	}
	return statusStale
}

func (s *setup) run() error {
	found := s.detect()
	if len(found) == 0 {
		fmt.Fprintln(s.out, "No supported coding agents detected.")
		return nil
	}

	tw := newTable(s.out)
	fmt.Fprintln(tw, "AGENT\tSTATUS\tCONFIG")
	for _, d := range found {
		config := d.config
		if d.agent.Binary != "" {
			config = d.agent.Binary + " mcp"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.agent.Name, d.status, config)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(s.out)

	if !s.opts.auto && !promptYesNo(s.in, s.out, "Configure agents? [Y/n]") {
		return nil
	}
	for _, d := range found {
		switch {
		case d.status == statusCurrent:
			fmt.Fprintf(s.out, "  = %s: already configured\n", d.agent.Name)
		case d.status == statusStale && !s.opts.force:
			fmt.Fprintf(s.out, "  ! %s: has a different glot entry (use --force to replace it)\n", d.agent.Name)
		default:
			s.configure(d)
		}
	}
	return nil
}

func (s *setup) configure(d detectedAgent) {
	if d.agent.Binary != "" {
		scope := ""
		if d.agent.Scoped {
			scope = s.opts.scope
			if !s.opts.auto {
				if scope = promptScope(s.in, s.out, d.agent.Name); scope == "" {
					fmt.Fprintln(s.out, "  skipped")
					return
				}
			}
		}
		l, err := s.configureCLI(d, scope)
		if err != nil {
			fmt.Fprintf(s.out, "  ! %s: %v\n", d.agent.Name, err)
			return
		}
		fmt.Fprintf(s.out, "  + %s: %s\n", d.agent.Name, l)
		return
	}

	if !s.opts.auto && !promptYesNo(s.in, s.out, fmt.Sprintf("\n%s: add to %s? [Y/n]", d.agent.Name, d.config)) {
		fmt.Fprintln(s.out, "  skipped")
		return
	}
	l, err := s.configureFile(d)
	if err != nil {
		fmt.Fprintf(s.out, "  ! %s: %v\n", d.agent.Name, err)
		return
	}
	fmt.Fprintf(s.out, "  + %s: %s (%s)\n", d.agent.Name, l, d.config)
}

// configureCLI runs `<binary> mcp add`, removing an outdated entry first.
func (s *setup) configureCLI(d detectedAgent, scope string) (launch, error) {
	l, err := s.launch(scope == scopeProject)
	if err != nil {
		return l, err
	}
	var scopeArgs []string
	if scope != "" {
		scopeArgs = []string{"--scope", scope}
	}
	if d.status == statusStale {
		remove := append([]string{"mcp", "remove"}, scopeArgs...)
		_ = runCommand(s.out, d.agent.Binary, append(remove, serverName)...)
	}
	add := append([]string{"mcp", "add"}, scopeArgs...)
	add = append(add, serverName, "--", l.Command)
	if err := runCommand(s.out, d.agent.Binary, append(add, l.Args...)...); err != nil {
		return l, fmt.Errorf("%s mcp add: %w", d.agent.Binary, err)
	}
	return l, nil
}

func (s *setup) configureFile(d detectedAgent) (launch, error) {
	l, err := s.launch(d.agent.Shared)
	if err != nil {
		return l, err
	}
	existing, err := os.ReadFile(d.config)
	if err != nil && !os.IsNotExist(err) {
		return l, fmt.Errorf("read %s: %w", d.config, err)
	}
	merged, err := mergeServerEntry(existing, d.agent.ServersKey, l.entry(d.agent.Extra), s.opts.force)
	if err != nil || merged == nil {
		return l, err
	}
	if err := os.MkdirAll(filepath.Dir(d.config), 0o755); err != nil {
		return l, fmt.Errorf("create directory: %w", err)
	}
	return l, os.WriteFile(d.config, merged, 0o644)
}

// mergeServerEntry adds entry under serversKey and returns the new file
// contents. An existing glot entry is kept (nil, nil: nothing to write)
// unless replace is set.
func mergeServerEntry(existing []byte, serversKey string, entry map[string]any, replace bool) ([]byte, error) {
	config := map[string]any{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = map[string]any{}
	}
	if _, exists := servers[serverName]; exists && !replace {
		return nil, nil
	}
	servers[serverName] = entry
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// promptYesNo reads Y/n; an empty answer or EOF is yes.
func promptYesNo(scanner *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !scanner.Scan() {
		return true
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

// promptScope returns scopeProject, scopeUser, or "" to skip.
func promptScope(scanner *bufio.Scanner, w io.Writer, agentName string) string {
	fmt.Fprintf(w, "\n%s: register glot for\n", agentName)
	fmt.Fprintln(w, "  [1] this project (.mcp.json, shared with the team)")
	fmt.Fprintln(w, "  [2] your user (every project on this machine)")
	fmt.Fprintln(w, "  [3] skip")
	fmt.Fprint(w, "  > ")
	if !scanner.Scan() {
		return scopeProject
	}
	switch strings.TrimSpace(scanner.Text()) {
	case "1", "":
		return scopeProject
	case "2":
		return scopeUser
	default:
		return ""
	}
}

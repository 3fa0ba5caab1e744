package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/biopet/gentrap-report/internal/config"
	"github.com/biopet/gentrap-report/internal/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [summary]",
	Short: "Serve a pipeline run to AI agents over MCP",
	Long: `Start an MCP (Model Context Protocol) server over stdio that answers
questions about one assembled pipeline run.

The summary is loaded once at startup. Tools return JSON.

Available Tools:
  gentrap_run      Run overview with samples and executables
  gentrap_sample   One sample with its libraries
  gentrap_library  One library with its FastQC reports
  gentrap_qc       FastQC status counts and failing modules

Tool names may be given without the gentrap_ prefix in --tools.`,
	Example: `  gentrap-report serve --mcp summary.json
  gentrap-report serve --mcp summary.json --tools run,qc
  gentrap-report serve --mcp summary.json --timeout 0
  gentrap-report serve --status
  gentrap-report serve --stop
  gentrap-report serve --list-tools`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var (
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

// pidFileName is written into the .gentrap directory while serving.
const pidFileName = "serve.pid"

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if serveListTools {
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  gentrap_run      Run overview with samples and executables")
		fmt.Fprintln(out, "  gentrap_sample   One sample with its libraries")
		fmt.Fprintln(out, "  gentrap_library  One library with its FastQC reports")
		fmt.Fprintln(out, "  gentrap_qc       FastQC status counts and failing modules")
		return nil
	}

	if serveStatus {
		return checkServerStatus(cmd)
	}

	if serveStop {
		return stopServer(cmd)
	}

	if !serveMCP {
		return fmt.Errorf("use --mcp to start the MCP server, or --help for usage")
	}
	if len(args) == 0 {
		return fmt.Errorf("serve --mcp needs a summary file")
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	log := getLogger()
	server, err := mcp.New(run, mcp.Config{
		Tools:   parseTools(serveTools),
		Timeout: timeout,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := writePIDFile(); err != nil {
		log.Warn("could not write PID file", zap.Error(err))
	}
	defer removePIDFile()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		log.Sync()
		removePIDFile()
		os.Exit(0)
	}()

	// stdout carries the MCP protocol
	log.Info("starting MCP server",
		zap.String("summary", run.SummaryFile),
		zap.Strings("tools", server.ListTools()),
		zap.Duration("timeout", timeout),
	)

	return server.ServeStdio()
}

// parseTools splits a comma-separated tool list, adding the gentrap_ prefix
// to shorthand names.
func parseTools(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "gentrap_") {
			t = "gentrap_" + t
		}
		tools = append(tools, t)
	}
	return tools
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func getPIDFilePath() (string, error) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, pidFileName), nil
}

func writePIDFile() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return
	}
	os.Remove(pidPath)
}

// readPID returns the PID recorded in the PID file.
func readPID() (int, error) {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s", pidPath)
	}
	return pid, nil
}

func checkServerStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	if _, err := getPIDFilePath(); err != nil {
		fmt.Fprintln(out, "Status: not running (no .gentrap directory)")
		return nil
	}

	pid, err := readPID()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "Status: not running")
		} else {
			fmt.Fprintln(out, "Status: not running (invalid PID file)")
		}
		return nil
	}

	// On Unix, FindProcess always succeeds, so signal 0 checks liveness
	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.Signal(0))
	}
	if err != nil {
		fmt.Fprintln(out, "Status: not running (stale PID file)")
		removePIDFile()
		return nil
	}

	fmt.Fprintf(out, "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	if _, err := getPIDFilePath(); err != nil {
		return fmt.Errorf("no .gentrap directory found")
	}

	pid, err := readPID()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "No server running")
			return nil
		}
		removePIDFile()
		return err
	}

	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.SIGTERM)
	}
	if err != nil {
		removePIDFile()
		fmt.Fprintln(out, "Server already stopped")
		return nil
	}

	fmt.Fprintf(out, "Stopped server (PID %d)\n", pid)
	return nil
}

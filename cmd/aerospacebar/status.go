package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/eltribehou/AerospaceBar/internal/ipc"
)

var (
	statusLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	statusOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	statusBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aerospacebar status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		if *jsonOut {
			out, _ := json.Marshal(ipc.StatusData{DaemonRunning: false})
			fmt.Println(string(out))
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		out, err := json.Marshal(status)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	// Styled output only on a real terminal; plain key/value pairs keep
	// scripted invocations parseable.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
		fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
		fmt.Printf("workspaces:     %d\n", status.WorkspaceCount)
		fmt.Printf("bar_visible:    %v\n", status.BarVisible)
		fmt.Printf("config:         %s\n", status.ConfigPath)
		return 0
	}

	running := statusBadStyle.Render("stopped")
	if status.DaemonRunning {
		running = statusOKStyle.Render("running")
	}
	visible := statusBadStyle.Render("hidden")
	if status.BarVisible {
		visible = statusOKStyle.Render("visible")
	}

	fmt.Printf("%s %s\n", statusLabelStyle.Render("daemon:"), running)
	fmt.Printf("%s %s\n", statusLabelStyle.Render("uptime:"), (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Printf("%s %d\n", statusLabelStyle.Render("workspaces:"), status.WorkspaceCount)
	fmt.Printf("%s %s\n", statusLabelStyle.Render("bar:"), visible)
	fmt.Printf("%s %s\n", statusLabelStyle.Render("config:"), status.ConfigPath)
	return 0
}

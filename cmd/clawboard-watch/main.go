// clawboard-watch tails a Clawboard server from the terminal: it prints the
// current task board, then streams realtime events as they arrive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/clawboard/clawboard/pkg/client"
	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	dim    = color.New(color.Faint)
)

func main() {
	serverURL := os.Getenv("CLAWBOARD_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:3010"
	}
	apiKey := os.Getenv("CLAWBOARD_API_KEY")
	debug := os.Getenv("DEBUG") == "true" || os.Getenv("DEBUG") == "1"
	if debug {
		logger.SetLevel(logger.LevelDebug)
	}

	rest := client.NewREST(serverURL, apiKey)
	cache := client.NewCache()
	syncer := client.NewSyncer(rest, cache, 0)
	dispatcher := client.NewDispatcher(cache, syncer)

	ctx := context.Background()
	if err := syncer.Bootstrap(ctx); err != nil {
		red.Fprintf(os.Stderr, "failed to load board: %v\n", err)
		os.Exit(1)
	}

	printBoard(cache)

	manager := client.NewManager(client.Options{
		URL:        wsURL(serverURL),
		APIKey:     apiKey,
		Debug:      debug,
		OnEnvelope: func(env wire.Envelope) { printEvent(env); dispatcher.Dispatch(env) },
		OnStatus:   printStatus,
	})
	manager.Start()
	defer manager.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println()
}

// wsURL derives the realtime endpoint from the HTTP base URL.
func wsURL(serverURL string) string {
	ws := strings.Replace(serverURL, "http://", "ws://", 1)
	ws = strings.Replace(ws, "https://", "wss://", 1)
	return strings.TrimRight(ws, "/") + "/ws"
}

func printBoard(cache *client.Cache) {
	tasks := cache.Tasks()
	if len(tasks) == 0 {
		dim.Println("(no tasks)")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "STATUS", "TITLE", "AGENT")
	for _, t := range tasks {
		table.Append([]string{strconv.FormatInt(t.ID, 10), t.Status, t.Title, t.AgentID})
	}
	table.Render()
}

func printStatus(status client.Status) {
	stamp := time.Now().Format("15:04:05")
	switch status {
	case client.StatusConnected:
		green.Printf("%s ● connected\n", stamp)
	case client.StatusReconnecting:
		yellow.Printf("%s ● reconnecting\n", stamp)
	case client.StatusDisconnected:
		red.Printf("%s ● disconnected\n", stamp)
	default:
		dim.Printf("%s ● %s\n", stamp, status)
	}
}

func printEvent(env wire.Envelope) {
	stamp := time.Now().Format("15:04:05")
	switch {
	case strings.HasPrefix(env.Type, wire.PrefixTask):
		cyan.Printf("%s %s %s\n", stamp, env.Type, string(env.Data))
	case env.Type == wire.EventAgentStatusUpdated:
		yellow.Printf("%s %s %s\n", stamp, env.Type, string(env.Data))
	default:
		dim.Printf("%s %s %s\n", stamp, env.Type, string(env.Data))
	}
}

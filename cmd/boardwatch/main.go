package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"board-sync/internal/board"
	"board-sync/internal/remote"
	"board-sync/internal/view"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/board", "board API base URL")
	token := flag.String("token", "", "bearer token for the board API")
	team := flag.String("team", "", "team ID to watch")
	search := flag.String("search", "", "only show tasks matching this text")
	priority := flag.String("priority", "", "only show tasks with this priority (low|medium|high|urgent)")
	logLevel := flag.String("log-level", "warn", "log level (debug|info|warn|error)")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "missing required -token flag")
		os.Exit(1)
	}
	teamID, err := uuid.Parse(*team)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -team value %q: %v\n", *team, err)
		os.Exit(1)
	}

	logger, err := initLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := remote.NewClient(*apiURL, *token, logger)
	store := board.NewStore(board.NewClientStore(client), teamID, logger)
	defer store.Close()

	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load board: %v\n", err)
		os.Exit(1)
	}

	filter := view.Filter{Search: *search, Priority: *priority}

	var renderMu sync.Mutex
	render := func() {
		renderMu.Lock()
		defer renderMu.Unlock()
		renderBoard(store, filter)
	}
	render()

	if err := store.Start(ctx, render); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open change feed: %v\n", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func renderBoard(store *board.Store, filter view.Filter) {
	tasks := view.FilterTasks(store.Tasks(), filter, time.Now())
	columns := view.GroupByPlacement(tasks, store.Fields())

	fmt.Printf("\n=== board @ %s ===\n", time.Now().Format(time.TimeOnly))
	if len(columns) == 0 {
		fmt.Println("(no columns)")
		return
	}
	for _, column := range columns {
		fmt.Printf("\n[%d] %s (%d)\n", column.Field.Position, column.Field.Name, len(column.Tasks))
		for _, task := range column.Tasks {
			line := fmt.Sprintf("  - %-7s %s", task.Priority, task.Title)
			if task.Deadline != nil {
				line += " (due " + task.Deadline.Format("2006-01-02") + ")"
			}
			if task.CompletedAt != nil {
				line += " [done]"
			}
			fmt.Println(line)
		}
	}
}

func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.WarnLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

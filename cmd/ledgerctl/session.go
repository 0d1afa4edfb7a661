package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/subcommands"

	grpc_adapter "github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-fund-ledger/pkg/grpc"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

var (
	addr     = flag.String("addr", "localhost:50051", "ledger gRPC address")
	identity = flag.String("user", "", "switch to this user before running the command (empty keeps the current user)")
	timeout  = flag.Duration("timeout", 10*time.Second, "per command timeout")
	verbose  = flag.Bool("v", false, "log every RPC to stderr")
)

// action 一個子命令實際要做的事
type action func(ctx context.Context, c *grpc_adapter.Client) (any, error)

// execute 建立連線、切換使用者、執行 action 並把結果以 JSON 印出
func execute(ctx context.Context, do action) subcommands.ExitStatus {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	pool := grpc.NewPool(grpc.WithInterceptor(grpc.LoggingInterceptor(log)))
	defer pool.Close()

	conn, err := pool.GetConnection(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	client := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if *identity != "" {
		if _, err := client.SwitchUser(ctx, *identity); err != nil {
			log.Error("switch user failed", logger.FieldError, err)
			return subcommands.ExitFailure
		}
	}

	out, err := do(ctx, client)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if out == nil {
		return subcommands.ExitSuccess
	}
	if err := printJSON(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// oneArg 取出唯一的位置參數
func oneArg(f *flag.FlagSet, what string) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one %s\n", what)
		return "", false
	}
	return f.Arg(0), true
}

type changedResult struct {
	Changed bool `json:"changed"`
}

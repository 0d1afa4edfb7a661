package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/in/grpc"
	events_adapter "github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/out/events"
	file_adapter "github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/out/file"
	memory_adapter "github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-fund-ledger/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-fund-ledger/internal/config"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
	"github.com/JoeShih716/go-fund-ledger/pkg/mysql"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// .env 不存在時忽略
	_ = godotenv.Load()

	// 備份檔、快照檔的金額輸出為 JSON 數字 (e.g. "amount": 500)
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(*configPath); err != nil {
		slog.Error("fund ledger exited", logger.FieldError, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 1. 載入設定
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		// 反向關閉
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn("close failed", logger.FieldError, err)
			}
		}
	}()

	// 2. 初始化快照儲存 (Driven Adapter)
	repo, closer, err := newRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	// 3. 初始化事件發布
	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		return err
	}

	// 4. 初始化帳本核心；實際狀態由 SwitchUser 載入
	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()

	var ledger usecase.Ledger
	var engineDone <-chan struct{}
	switch cfg.Ledger.Engine {
	case config.EngineLMAX:
		lmax := memory_adapter.NewLMAXLedger(domain.DefaultSnapshot(), cfg.Ledger.QueueSize)
		lmax.Start(engineCtx)
		engineDone = lmax.Done()
		ledger = lmax
	default:
		ledger = memory_adapter.NewMutexLedger(domain.DefaultSnapshot())
	}

	opts := []usecase.Option{usecase.WithRepository(repo), usecase.WithLogger(log)}
	if publisher != nil {
		// broker 變慢不拖住指令
		async := events_adapter.NewAsyncPublisher(publisher, cfg.Events.Buffer, log)
		opts = append(opts, usecase.WithPublisher(async))
		closers = append(closers, async)
	}
	coreUseCase := usecase.NewCoreUseCase(ledger, opts...)

	snapshot, err := coreUseCase.SwitchUser(ctx, cfg.Ledger.Identity)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if drifts, err := coreUseCase.Verify(ctx); err == nil && len(drifts) > 0 {
		log.Warn("stored balances drift from transactions", "drifts", len(drifts))
	}
	log.Info("ledger loaded",
		logger.FieldUserKey, coreUseCase.CurrentUser(),
		"engine", cfg.Ledger.Engine,
		"storage", cfg.Storage.Driver,
		"transactions", len(snapshot.Transactions),
	)

	// 5. 啟動 gRPC Server (Driving Adapter)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc_adapter.LoggingInterceptor(log)))
	grpc_adapter.RegisterLedgerServiceServer(s, grpc_adapter.NewGrpcServer(coreUseCase, log))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpc_adapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)
	reflection.Register(s)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.Server.GRPCAddr)
		serveErr <- s.Serve(lis)
	}()

	// Graceful Shutdown
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down server...")
	}

	healthServer.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(cfg.Server.ShutdownTimeout):
		log.Warn("graceful stop timed out, forcing")
		s.Stop()
	}

	// 等核心處理完輸送帶上剩下的操作
	stopEngine()
	if engineDone != nil {
		<-engineDone
	}
	log.Info("server exited")
	return nil
}

// newRepository 依 storage.driver 建立 SnapshotRepository
func newRepository(ctx context.Context, cfg config.Config, log *slog.Logger) (usecase.SnapshotRepository, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return memory_adapter.NewSnapshotStore(), nil, nil
	case config.StorageMySQL:
		client, err := mysql.NewClient(ctx, cfg.MySQL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		repo := mysql_adapter.NewSnapshotRepository(client)
		if err := repo.Migrate(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("connected to MySQL successfully")
		return repo, client, nil
	default:
		opts := []file_adapter.Option{file_adapter.WithLogger(log)}
		if cfg.Storage.WAL.CompactEvery > 0 {
			opts = append(opts, file_adapter.WithCompactEvery(cfg.Storage.WAL.CompactEvery))
		}
		snapshotLog, err := file_adapter.Open(cfg.Storage.WAL.Path, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot log: %w", err)
		}
		return snapshotLog, snapshotLog, nil
	}
}

// newPublisher 依 events.driver 建立 EventPublisher，none 回傳 nil
func newPublisher(cfg config.EventsConfig) (usecase.EventPublisher, error) {
	switch cfg.Driver {
	case config.EventsKafka:
		return events_adapter.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	case config.EventsAMQP:
		return events_adapter.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	}
	return nil, nil
}

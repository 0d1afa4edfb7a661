package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

// LoggingInterceptor 記錄每個 unary 呼叫的方法、耗時與錯誤
//
// 參數:
//
//	log: 輸出位置，nil 時使用 slog.Default()
//
// 回傳:
//
//	grpc.UnaryServerInterceptor: 掛到 grpc.NewServer 的攔截器
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	log = logger.Component(log, "grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			logger.FieldMethod, info.FullMethod,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		}
		switch status.Code(err) {
		case codes.OK:
			log.DebugContext(ctx, "rpc", attrs...)
		case codes.InvalidArgument, codes.NotFound:
			log.InfoContext(ctx, "rpc rejected", append(attrs, logger.FieldError, err)...)
		default:
			log.ErrorContext(ctx, "rpc failed", append(attrs, logger.FieldError, err)...)
		}
		return resp, err
	}
}

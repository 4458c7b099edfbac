package errors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCError는 에러를 gRPC status 에러로 변환합니다
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	var appErr *AppError
	if As(err, &appErr) {
		_, code := GetCodeMapping(appErr.Code())
		return status.Error(code, appErr.Message())
	}

	return status.Error(codes.Internal, err.Error())
}

// UnaryServerInterceptor는 핸들러가 반환한 AppError를 gRPC status로 바꿉니다
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		return resp, ToGRPCError(err)
	}
}

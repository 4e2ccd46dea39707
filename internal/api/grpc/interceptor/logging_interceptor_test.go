package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnary(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("PassesThrough", func(t *testing.T) {
		resp, err := Unary()(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return "ok", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		resp, err := Unary()(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			panic("boom")
		})
		assert.Nil(t, resp)
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}

func TestStream_RecoversPanic(t *testing.T) {
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}
	err := Stream()(nil, nil, info, func(srv interface{}, stream grpc.ServerStream) error {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection/grpc_reflection_v1"

	"github.com/Belphemur/MediaDownloader/internal/ipc"
)

func TestNewGRPCServer_ReturnsNonNil(t *testing.T) {
	srv := NewGRPCServer(ipc.NewBridge(ipc.NewEventBus(0)))
	if srv == nil {
		t.Fatal("Expected non-nil gRPC server")
	}
}

func TestNewGRPCServer_HealthCheck(t *testing.T) {
	srv := NewGRPCServer(ipc.NewBridge(ipc.NewEventBus(0)))

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	go func() { _ = srv.Serve(lis) }()
	defer srv.GracefulStop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	healthClient := grpc_health_v1.NewHealthClient(conn)

	for _, service := range []string{"", ServiceName} {
		resp, err := healthClient.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("Health check for %q failed: %v", service, err)
		}
		if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("Expected SERVING status for %q, got %v", service, resp.Status)
		}
	}
}

func TestNewGRPCServer_ReflectionEnabled(t *testing.T) {
	srv := NewGRPCServer(ipc.NewBridge(ipc.NewEventBus(0)))

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	go func() { _ = srv.Serve(lis) }()
	defer srv.GracefulStop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	// Verify reflection is available by listing services
	reflectionClient := grpc_reflection_v1.NewServerReflectionClient(conn)
	stream, err := reflectionClient.ServerReflectionInfo(context.Background())
	if err != nil {
		t.Fatalf("Failed to create reflection stream: %v", err)
	}

	err = stream.Send(&grpc_reflection_v1.ServerReflectionRequest{
		MessageRequest: &grpc_reflection_v1.ServerReflectionRequest_ListServices{
			ListServices: "",
		},
	})
	if err != nil {
		t.Fatalf("Failed to send reflection request: %v", err)
	}

	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("Failed to receive reflection response: %v", err)
	}

	listResp := resp.GetListServicesResponse()
	if listResp == nil {
		t.Fatal("Expected list services response")
	}

	found := false
	for _, svc := range listResp.Service {
		if svc.Name == ServiceName {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected %s to be registered", ServiceName)
	}
}

func TestNewGRPCServer_CalledMultipleTimes(t *testing.T) {
	// Verify sync.Once prevents double-registration panics
	srv1 := NewGRPCServer(ipc.NewBridge(ipc.NewEventBus(0)))
	srv2 := NewGRPCServer(ipc.NewBridge(ipc.NewEventBus(0)))

	if srv1 == nil || srv2 == nil {
		t.Fatal("Expected both servers to be non-nil")
	}
}

func TestRecoveryHandler(t *testing.T) {
	err := recoveryHandler(zerolog.Nop())(struct{}{})
	if err == nil || err.Error() != "rpc error: code = Internal desc = internal error" {
		t.Errorf("Unexpected error %v", err)
	}
}

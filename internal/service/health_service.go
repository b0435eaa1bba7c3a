package service

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mmynk/tripsettle/internal/storage"
)

// pinger is satisfied by stores that can check their connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthService answers liveness probes.
type HealthService struct {
	store storage.Store
}

func NewHealthService(store storage.Store) *HealthService {
	return &HealthService{store: store}
}

// Ping returns "ok" when the store is reachable.
func (s *HealthService) Ping(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[wrapperspb.StringValue], error) {
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return nil, connect.NewError(connect.CodeUnavailable, err)
		}
	}
	return connect.NewResponse(wrapperspb.String("ok")), nil
}

package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// HealthServiceName is the fully-qualified name of the health service.
const HealthServiceName = "tripsettle.v1.HealthService"

// Procedure names, usable as http.ServeMux patterns and as
// connect.Spec().Procedure values in interceptors.
const (
	HealthServicePingProcedure = "/tripsettle.v1.HealthService/Ping"
)

// HealthServiceHandler is implemented by the server side of HealthService.
type HealthServiceHandler interface {
	Ping(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[wrapperspb.StringValue], error)
}

// NewHealthServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on. Codec is always registered; opts may add interceptors.
func NewHealthServiceHandler(svc HealthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(HealthServicePingProcedure, connect.NewUnaryHandler(HealthServicePingProcedure, svc.Ping, opts...))
	return "/" + HealthServiceName + "/", mux
}

// HealthServiceClient is a typed client for HealthService.
type HealthServiceClient interface {
	Ping(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[wrapperspb.StringValue], error)
}

// NewHealthServiceClient returns a client for the HealthService served at baseURL
// (for example http://localhost:8080).
func NewHealthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) HealthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &healthServiceClient{
		ping: connect.NewClient[emptypb.Empty, wrapperspb.StringValue](httpClient, baseURL+HealthServicePingProcedure, opts...),
	}
}

type healthServiceClient struct {
	ping *connect.Client[emptypb.Empty, wrapperspb.StringValue]
}

func (c *healthServiceClient) Ping(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[wrapperspb.StringValue], error) {
	return c.ping.CallUnary(ctx, req)
}

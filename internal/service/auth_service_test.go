package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsettle/internal/auth"
	"github.com/mmynk/tripsettle/internal/middleware"
	"github.com/mmynk/tripsettle/internal/storage/sqlite"
	"github.com/mmynk/tripsettle/pkg/api"
	"github.com/mmynk/tripsettle/pkg/api/apiconnect"
)

// setupAuthServer wires the auth and trip services with the real JWT
// interceptors, the way the server binary does.
func setupAuthServer(t *testing.T) (apiconnect.AuthServiceClient, apiconnect.TripServiceClient) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), store, jwtManager, nil)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(authSvc,
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(apiconnect.NewTripServiceHandler(NewTripService(store),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	))
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		apiconnect.NewTripServiceClient(http.DefaultClient, server.URL)
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthService_RegisterLoginAndUseToken(t *testing.T) {
	authClient, tripClient := setupAuthServer(t)
	ctx := context.Background()

	registered, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Ana@Example.com",
		DisplayName: "Ana",
		Password:    "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.Msg.Token == "" || registered.Msg.ExpiresAt <= time.Now().Unix() {
		t.Errorf("expected a token with a future expiry, got %+v", registered.Msg)
	}
	if registered.Msg.User.Email != "ana@example.com" {
		t.Errorf("expected normalized email, got %s", registered.Msg.User.Email)
	}

	login, err := authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "ana@example.com", Password: "correct-horse"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token := login.Msg.Token

	me, err := authClient.GetCurrentUser(ctx, withToken(token, &api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.ID != registered.Msg.User.ID || me.Msg.User.DisplayName != "Ana" {
		t.Errorf("GetCurrentUser = %+v", me.Msg.User)
	}

	trip, err := tripClient.CreateTrip(ctx, withToken(token, &api.CreateTripRequest{Name: "Porto", BaseCurrency: "EUR"}))
	if err != nil {
		t.Fatalf("CreateTrip with token failed: %v", err)
	}
	if trip.Msg.Participant.DisplayName != "Ana" || trip.Msg.Participant.UserID != registered.Msg.User.ID {
		t.Errorf("expected creator participant for Ana, got %+v", trip.Msg.Participant)
	}
}

func TestAuthService_Failures(t *testing.T) {
	authClient, tripClient := setupAuthServer(t)
	ctx := context.Background()

	_, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "bo@example.com", Password: "short"}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "bo@example.com", Password: "long-enough"}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err = authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "BO@example.com", Password: "long-enough"}))
	expectCode(t, err, connect.CodeAlreadyExists)

	_, err = authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "bo@example.com", Password: "wrong-password"}))
	expectCode(t, err, connect.CodeUnauthenticated)

	_, err = authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "bo@example.com"}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = authClient.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	expectCode(t, err, connect.CodeUnauthenticated)

	_, err = tripClient.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	expectCode(t, err, connect.CodeUnauthenticated)

	_, err = tripClient.ListTrips(ctx, withToken("not-a-token", &api.ListTripsRequest{}))
	expectCode(t, err, connect.CodeUnauthenticated)
}

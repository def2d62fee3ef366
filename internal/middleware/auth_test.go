package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/pkg/httpcontext"
)

type stubAuth struct {
	sessions map[string]*domain.Session
	err      error
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func run(auth Authenticator, authorization, spoofedUser string) (*fasthttp.RequestCtx, string) {
	var seen string
	handler := Auth(auth, 0, nil)(func(ctx *fasthttp.RequestCtx) {
		seen = string(ctx.Request.Header.Peek(httpcontext.HeaderUserID)) + "/" +
			string(ctx.Request.Header.Peek(httpcontext.HeaderSessionID))
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})

	ctx := &fasthttp.RequestCtx{}
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	if spoofedUser != "" {
		ctx.Request.Header.Set(httpcontext.HeaderUserID, spoofedUser)
	}
	handler(ctx)
	return ctx, seen
}

func TestAuthSetsVerifiedIdentity(t *testing.T) {
	auth := stubAuth{sessions: map[string]*domain.Session{
		"good": {ID: "s1", UserID: "u1"},
	}}

	ctx, seen := run(auth, "bearer good", "admin-spoof")
	if ctx.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Fatalf("expected handler to run, got %d", ctx.Response.StatusCode())
	}
	if seen != "u1/s1" {
		t.Fatalf("expected verified identity, got %q", seen)
	}
}

func TestAuthRejects(t *testing.T) {
	cases := []struct {
		name   string
		auth   stubAuth
		header string
		status int
	}{
		{name: "missing token", header: "", status: fasthttp.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: fasthttp.StatusUnauthorized},
		{name: "store failure", auth: stubAuth{err: errors.New("redis down")}, header: "Bearer x", status: fasthttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, seen := run(tc.auth, tc.header, "spoofed")
			if ctx.Response.StatusCode() != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, ctx.Response.StatusCode())
			}
			if seen != "" {
				t.Fatalf("handler must not run, saw %q", seen)
			}
			if ctx.Request.Header.Peek(httpcontext.HeaderUserID) != nil {
				t.Fatalf("spoofed user header must be removed")
			}
		})
	}
}

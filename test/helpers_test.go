//go:build integration_test

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/Latacz1/notatnik-treningowy/internal/auth"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

const testPassword = "tajne-haslo"

func newRequest(ctx context.Context, t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reqBody = bytes.NewBufferString(b)
		default:
			bodyJson, err := json.Marshal(b)
			require.NoError(t, err)
			reqBody = bytes.NewBuffer(bodyJson)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	return req
}

func (s *IntegrationTestSuite) do(req *http.Request) (int, []byte) {
	t := s.T()
	t.Helper()

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) doJSON(req *http.Request, expectedStatus int, dst any) {
	t := s.T()
	t.Helper()

	status, respBytes := s.do(req)
	require.Equal(t, expectedStatus, status, string(respBytes))
	if dst != nil {
		require.NoError(t, json.Unmarshal(respBytes, dst), string(respBytes))
	}
}

func randomEmail() string {
	return fmt.Sprintf("%d.%s", gofakeit.Number(1000, 9999), gofakeit.Email())
}

// signUp creates a fresh account and returns its session
func (s *IntegrationTestSuite) signUp(ctx context.Context, email string) auth.Session {
	var session auth.Session
	s.doJSON(
		newRequest(ctx, s.T(), http.MethodPost, "/a/signup", "", auth.Credentials{
			Email:           email,
			Password:        testPassword,
			ConfirmPassword: testPassword,
		}),
		http.StatusCreated,
		&session,
	)
	require.NotEmpty(s.T(), session.Token)
	return session
}

func (s *IntegrationTestSuite) login(ctx context.Context, email, password string) (int, auth.Session) {
	status, respBytes := s.do(newRequest(ctx, s.T(), http.MethodPost, "/a/login", "", auth.Credentials{
		Email:    email,
		Password: password,
	}))

	var session auth.Session
	if status == http.StatusOK {
		require.NoError(s.T(), json.Unmarshal(respBytes, &session))
	}
	return status, session
}

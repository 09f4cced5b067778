//go:build integration_test

package test

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/Latacz1/notatnik-treningowy/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestSignUpAndLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	email := randomEmail()
	session := s.signUp(ctx, email)
	require.NotNil(t, session.User)
	assert.Equal(t, strings.ToLower(email), session.User.Email)

	var storedEmail string
	require.NoError(t, s.DB.QueryRowContext(
		ctx, `SELECT email FROM app_user WHERE id = $1`, session.User.ID,
	).Scan(&storedEmail))
	assert.Equal(t, session.User.Email, storedEmail)

	cases := map[string]struct {
		email          string
		password       string
		expectedStatus int
	}{
		"good creds":       {email: email, password: testPassword, expectedStatus: http.StatusOK},
		"email uppercased": {email: strings.ToUpper(email), password: testPassword, expectedStatus: http.StatusOK},
		"bad password":     {email: email, password: "bad-password", expectedStatus: http.StatusUnauthorized},
		"unknown email":    {email: "nobody." + email, password: testPassword, expectedStatus: http.StatusUnauthorized},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			status, loginSession := s.login(ctx, tc.email, tc.password)
			require.Equal(t, tc.expectedStatus, status)
			if status == http.StatusOK {
				assert.NotEmpty(t, loginSession.Token)
				assert.NotEqual(t, session.Token, loginSession.Token)
			}
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		status, _ := s.do(newRequest(ctx, t, http.MethodPost, "/a/signup", "", auth.Credentials{
			Email:           email,
			Password:        testPassword,
			ConfirmPassword: testPassword,
		}))
		assert.Equal(t, http.StatusConflict, status)
	})
}

func (s *IntegrationTestSuite) TestMeAndLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := s.signUp(ctx, randomEmail())

	var me auth.User
	s.doJSON(newRequest(ctx, t, http.MethodGet, "/a/me", session.Token, nil), http.StatusOK, &me)
	assert.Equal(t, session.User.ID, me.ID)

	s.doJSON(newRequest(ctx, t, http.MethodGet, "/a/logout", session.Token, nil), http.StatusOK, nil)

	status, _ := s.do(newRequest(ctx, t, http.MethodGet, "/a/me", session.Token, nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.do(newRequest(ctx, t, http.MethodGet, "/trainings/document", session.Token, nil))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestPasswordReset() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	email := randomEmail()
	session := s.signUp(ctx, email)

	s.doJSON(
		newRequest(ctx, t, http.MethodPost, "/a/reset", "", map[string]string{"email": email}),
		http.StatusOK,
		nil,
	)

	// the mailer only logs, so the token is taken from redis
	var resetToken string
	iter := s.redisClient.Scan(ctx, 0, "trainings-password-reset||*", 100).Iterator()
	for iter.Next(ctx) {
		userID, err := s.redisClient.Get(ctx, iter.Val()).Result()
		require.NoError(t, err)
		if userID == session.User.ID {
			resetToken = strings.TrimPrefix(iter.Val(), "trainings-password-reset||")
		}
	}
	require.NoError(t, iter.Err())
	require.NotEmpty(t, resetToken)

	confirm := map[string]string{
		"token":           resetToken,
		"password":        "nowe-haslo",
		"confirmPassword": "nowe-haslo",
	}
	s.doJSON(newRequest(ctx, t, http.MethodPost, "/a/reset/confirm", "", confirm), http.StatusOK, nil)

	// a reset token works only once
	status, _ := s.do(newRequest(ctx, t, http.MethodPost, "/a/reset/confirm", "", confirm))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.login(ctx, email, testPassword)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.login(ctx, email, "nowe-haslo")
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(newRequest(ctx, t, http.MethodPost, "/a/reset", "", map[string]string{"email": "nobody." + email}))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(newRequest(ctx, t, http.MethodPost, "/a/reset/confirm", "", map[string]string{
		"token":           "not-a-reset-token",
		"password":        "nowe-haslo",
		"confirmPassword": "nowe-haslo",
	}))
	assert.Equal(t, http.StatusBadRequest, status)
}

func (s *IntegrationTestSuite) TestLoginRateLimiting() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// simulate a login brute force attack
	for i := 1; i <= testAuthRatePerMinute+5; i++ {
		req := newRequest(ctx, t, http.MethodPost, "/a/login", "", auth.Credentials{
			Email:    "brute@force.pl",
			Password: "zgadnij",
		})
		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		if i <= testAuthRatePerMinute {
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "iteration: %d", i)
			assert.Empty(t, resp.Header.Get("Retry-After"), "iteration: %d", i)
		} else {
			require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "iteration: %d", i)
			retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
			require.NoError(t, err, "iteration: %d", i)
			assert.Positive(t, retryAfter, "iteration: %d", i)
		}
	}

	// reads are never limited
	status, _ := s.do(newRequest(ctx, t, http.MethodGet, "/trainings/taxonomy", "", nil))
	assert.Equal(t, http.StatusOK, status)

	require.NoError(t, s.redisDataCleanup(ctx))
}

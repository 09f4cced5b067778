//go:build integration_test

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/notebook"
	"github.com/Latacz1/notatnik-treningowy/internal/stats"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squatTraining = `{
	"startTime": "18:30",
	"durationMinutes": "60",
	"note": "nogi",
	"exercises": [
		{"category": "strength", "subcategory": "nogi", "exerciseName": "Przysiad", "sets": 4, "reps": 8, "weightKg": "80,5"},
		{"category": "cardio", "subcategory": "bieganie", "exerciseName": "Bieg", "durationMinutes": 20, "distanceKm": 4}
	]
}`

// storedVersion reads the persisted document version, 0 when nothing is stored yet
func (s *IntegrationTestSuite) storedVersion(ctx context.Context, userID string) int64 {
	var version int64
	err := s.DB.QueryRowContext(ctx, `SELECT version FROM user_document WHERE user_id = $1`, userID).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

func (s *IntegrationTestSuite) waitSynced(ctx context.Context, token string) notebook.State {
	t := s.T()
	var state notebook.State
	require.Eventually(t, func() bool {
		s.doJSON(newRequest(ctx, t, http.MethodGet, "/trainings/document", token, nil), http.StatusOK, &state)
		return state.Sync.Status == notebook.StatusSynced
	}, 5*time.Second, 50*time.Millisecond)
	return state
}

func (s *IntegrationTestSuite) TestTrainingsRoundTrip() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	email := randomEmail()
	session := s.signUp(ctx, email)
	token := session.Token

	state := s.waitSynced(ctx, token)
	assert.Empty(t, state.Document.Trainings)
	assert.EqualValues(t, 0, s.storedVersion(ctx, session.User.ID))

	var added trainings.TrainingRecord
	s.doJSON(
		newRequest(ctx, t, http.MethodPost, "/trainings/day/2024-06-03", token, squatTraining),
		http.StatusCreated,
		&added,
	)
	require.NotZero(t, added.ID)
	require.Len(t, added.Exercises, 2)
	assert.InDelta(t, 80.5, added.Exercises[0].WeightKg.Value, 0.001)

	s.waitSynced(ctx, token)
	require.Eventually(t, func() bool {
		return s.storedVersion(ctx, session.User.ID) >= 1
	}, 5*time.Second, 50*time.Millisecond)

	var docJson []byte
	require.NoError(t, s.DB.QueryRowContext(
		ctx, `SELECT document FROM user_document WHERE user_id = $1`, session.User.ID,
	).Scan(&docJson))
	var stored trainings.Document
	require.NoError(t, json.Unmarshal(docJson, &stored))
	require.Len(t, stored.Trainings["2024-06-03"], 1)
	assert.Equal(t, added.ID, stored.Trainings["2024-06-03"][0].ID)

	s.Run("stats", func() {
		var summary stats.Summary
		s.doJSON(
			newRequest(ctx, t, http.MethodGet, "/trainings/stats?from=2024-06-01&to=2024-06-30", token, nil),
			http.StatusOK,
			&summary,
		)
		assert.Equal(t, 1, summary.TotalTrainings)
		assert.Equal(t, 2, summary.TotalExercises)
		assert.Equal(t, 4, summary.TotalSets)
		assert.Equal(t, 32, summary.TotalReps)
		assert.Equal(t, 60, summary.TotalDurationMinutes)
		assert.InDelta(t, 4.0, summary.TotalDistanceKm, 0.001)

		s.doJSON(
			newRequest(ctx, t, http.MethodGet, "/trainings/stats?from=2024-06-01&to=2024-06-30&category=cardio", token, nil),
			http.StatusOK,
			&summary,
		)
		assert.Equal(t, 1, summary.TotalExercises)
		assert.Equal(t, 0, summary.TotalSets)
	})

	s.Run("calendar", func() {
		var view notebook.CalendarView
		s.doJSON(
			newRequest(ctx, t, http.MethodGet, "/trainings/calendar/week?date=2024-06-05", token, nil),
			http.StatusOK,
			&view,
		)
		require.Len(t, view.Days, 7)
		assert.Equal(t, "2024-06-03", view.Days[0].Date)
		assert.Len(t, view.Days[0].Trainings, 1)
		assert.Empty(t, view.Days[1].Trainings)
	})

	s.Run("survives a new session", func() {
		s.doJSON(newRequest(ctx, t, http.MethodGet, "/a/logout", token, nil), http.StatusOK, nil)

		status, newSession := s.login(ctx, email, testPassword)
		require.Equal(t, http.StatusOK, status)
		token = newSession.Token

		var day []trainings.TrainingRecord
		s.doJSON(newRequest(ctx, t, http.MethodGet, "/trainings/day/2024-06-03", token, nil), http.StatusOK, &day)
		require.Len(t, day, 1)
		assert.Equal(t, added.ID, day[0].ID)
		assert.Equal(t, "18:30", day[0].StartTime)
	})

	s.Run("update and delete", func() {
		versionBefore := s.storedVersion(ctx, session.User.ID)

		var updated trainings.TrainingRecord
		s.doJSON(
			newRequest(ctx, t, http.MethodPut, fmt.Sprintf("/trainings/%d", added.ID), token, squatTraining),
			http.StatusOK,
			&updated,
		)
		assert.Equal(t, added.ID, updated.ID)

		s.doJSON(
			newRequest(ctx, t, http.MethodPut, "/trainings/viewmode", token, map[string]string{"viewMode": "month"}),
			http.StatusOK,
			nil,
		)

		status, _ := s.do(newRequest(ctx, t, http.MethodDelete, fmt.Sprintf("/trainings/day/2024-06-03/%d", added.ID), token, nil))
		require.Equal(t, http.StatusOK, status)
		status, _ = s.do(newRequest(ctx, t, http.MethodDelete, fmt.Sprintf("/trainings/day/2024-06-03/%d", added.ID), token, nil))
		assert.Equal(t, http.StatusNotFound, status)

		state := s.waitSynced(ctx, token)
		assert.Empty(t, state.Document.Trainings["2024-06-03"])
		assert.EqualValues(t, "month", state.Document.ViewMode)
		require.Eventually(t, func() bool {
			return s.storedVersion(ctx, session.User.ID) > versionBefore
		}, 5*time.Second, 50*time.Millisecond)
	})
}

func (s *IntegrationTestSuite) TestTrainingsValidation() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.signUp(ctx, randomEmail()).Token

	cases := map[string]struct {
		path string
		body string
	}{
		"no exercises":      {path: "/trainings/day/2024-06-03", body: `{"startTime": "10:00", "exercises": []}`},
		"bad date":          {path: "/trainings/day/2024-13-03", body: squatTraining},
		"bad start time":    {path: "/trainings/day/2024-06-03", body: `{"startTime": "25:99", "exercises": [{"category": "cardio", "exerciseName": "Bieg"}]}`},
		"malformed payload": {path: "/trainings/day/2024-06-03", body: `{"startTime": `},
	}
	for tn, tc := range cases {
		s.Run(tn, func() {
			status, _ := s.do(newRequest(ctx, t, http.MethodPost, tc.path, token, tc.body))
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}

	state := s.waitSynced(ctx, token)
	assert.Empty(t, state.Document.Trainings)
}

package notebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/auth"
	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
	"github.com/Latacz1/notatnik-treningowy/internal/stats"
	"github.com/Latacz1/notatnik-treningowy/internal/taxonomy"
	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/metrics"
	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/tracing"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"
	"github.com/Latacz1/notatnik-treningowy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const liveKeepAliveInterval = 25 * time.Second

type notebooks interface {
	Get(ctx context.Context, userID string) (*Notebook, error)
}

type Handler struct {
	notebooks      notebooks
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(notebooks notebooks, metricsManager *metrics.Manager, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		notebooks:      notebooks,
		metricsManager: metricsManager,
		now:            now,
	}
}

func (h *Handler) SetupRoutes(mainRouter *mux.Router) *mux.Router {
	router := mainRouter.PathPrefix("/trainings").Subrouter()
	router.HandleFunc("/document", h.handleGetDocument).Methods("GET").Name("document")
	router.HandleFunc("/day/{date}", h.handleGetDay).Methods("GET").Name("day")
	router.HandleFunc("/day/{date}", h.handleAddRecord).Methods("POST").Name("add-training")
	router.HandleFunc("/day/{date}/{id:[0-9]+}", h.handleDeleteRecord).Methods("DELETE").Name("delete-training")
	router.HandleFunc("/{id:[0-9]+}", h.handleUpdateRecord).Methods("PUT").Name("update-training")
	router.HandleFunc("/viewmode", h.handleSetViewMode).Methods("PUT").Name("view-mode")
	router.HandleFunc("/sync", h.handleRetrySync).Methods("POST").Name("sync")
	router.HandleFunc("/calendar/{mode}", h.handleCalendar).Methods("GET").Name("calendar")
	router.HandleFunc("/stats", h.handleStats).Methods("GET").Name("stats")
	router.HandleFunc("/taxonomy", h.handleTaxonomy).Methods("GET").Name("taxonomy")
	router.HandleFunc("/live", h.handleLive).Methods("GET").Name("live")
	return router
}

func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	resBytes, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "marshal response error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resBytes, statusCode)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, trainings.ErrNoExercises),
		errors.Is(err, trainings.ErrInvalidDateKey),
		errors.Is(err, trainings.ErrInvalidStartTime),
		errors.Is(err, trainings.ErrDuplicateID):
		return http.StatusBadRequest
	case errors.Is(err, trainings.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// notebook resolves the notebook of the signed in user, writing the error response if it cannot.
func (h *Handler) notebook(ctx context.Context, w http.ResponseWriter) (*Notebook, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	nb, err := h.notebooks.Get(ctx, userID)
	if err != nil {
		log.Errorf("open notebook for %s: %s", userID, err)
		http.Error(w, "notebook unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return nb, true
}

func decodeRecord(r *http.Request) (trainings.TrainingRecord, error) {
	var rec trainings.TrainingRecord
	if r.Header.Get("Content-Type") != "application/json" {
		return rec, errors.New("content type not json")
	}
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.getDocument")
	defer span.End()

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}
	writeJSON(w, nb.State(), http.StatusOK)
}

func (h *Handler) handleGetDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.getDay")
	defer span.End()

	dateKey := mux.Vars(r)["date"]
	if _, err := calendar.ParseDateKey(dateKey); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}
	writeJSON(w, nb.Day(dateKey), http.StatusOK)
}

func (h *Handler) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.addRecord")
	defer span.End()

	dateKey := mux.Vars(r)["date"]
	span.SetAttributes(attribute.String("date", dateKey))

	rec, err := decodeRecord(r)
	if err != nil {
		log.Errorf("add training: %s", err)
		http.Error(w, "invalid training", http.StatusBadRequest)
		return
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}

	added, err := nb.AddRecord(dateKey, rec)
	if err != nil {
		log.Debugf("add training [%s]: %s", dateKey, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, added, http.StatusCreated)
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.updateRecord")
	defer span.End()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int64("training.id", id))

	rec, err := decodeRecord(r)
	if err != nil {
		log.Errorf("update training: %s", err)
		http.Error(w, "invalid training", http.StatusBadRequest)
		return
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}

	updated, err := nb.UpdateRecord(id, rec)
	if err != nil {
		log.Debugf("update training [%d]: %s", id, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.deleteRecord")
	defer span.End()

	vars := mux.Vars(r)
	dateKey := vars["date"]
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}

	if err := nb.DeleteRecord(dateKey, id); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) handleSetViewMode(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.setViewMode")
	defer span.End()

	var req struct {
		ViewMode string `json:"viewMode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	mode, err := calendar.ParseViewMode(req.ViewMode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}
	if err := nb.SetViewMode(mode); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, map[string]string{"viewMode": string(mode)}, http.StatusOK)
}

func (h *Handler) handleRetrySync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.retrySync")
	defer span.End()

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}
	nb.Retry()
	writeJSON(w, nb.State().Sync, http.StatusAccepted)
}

type CalendarDay struct {
	Date           string                     `json:"date"`
	InCurrentMonth bool                       `json:"inCurrentMonth"`
	IsToday        bool                       `json:"isToday"`
	Trainings      []trainings.TrainingRecord `json:"trainings"`
}

type CalendarView struct {
	Mode  calendar.ViewMode `json:"mode"`
	Date  string            `json:"date"`
	Title string            `json:"title"`
	Prev  string            `json:"prev"`
	Next  string            `json:"next"`
	Today string            `json:"today"`
	Days  []CalendarDay     `json:"days"`
}

// BuildCalendarView lays the records of store onto the grid of the given view.
func BuildCalendarView(store trainings.Store, mode calendar.ViewMode, date, now time.Time) CalendarView {
	today := calendar.DateKey(now)
	grid := calendar.GridFor(mode, date)

	view := CalendarView{
		Mode:  mode,
		Date:  calendar.DateKey(date),
		Title: calendar.Title(mode, date),
		Prev:  calendar.DateKey(calendar.Navigate(mode, date, -1)),
		Next:  calendar.DateKey(calendar.Navigate(mode, date, 1)),
		Today: today,
		Days:  make([]CalendarDay, len(grid)),
	}
	for i, day := range grid {
		key := calendar.DateKey(day.Date)
		view.Days[i] = CalendarDay{
			Date:           key,
			InCurrentMonth: day.InCurrentMonth,
			IsToday:        key == today,
			Trainings:      trainings.Day(store, key),
		}
	}
	return view
}

func (h *Handler) dateParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		now := h.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return calendar.ParseDateKey(value)
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.calendar")
	defer span.End()

	mode, err := calendar.ParseViewMode(mux.Vars(r)["mode"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := h.dateParam(r, "date")
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}

	writeJSON(w, BuildCalendarView(nb.Document().Trainings, mode, date, h.now()), http.StatusOK)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.stats")
	defer span.End()

	query := r.URL.Query()
	filter := stats.Filter{
		Category:    query.Get("category"),
		Subcategory: query.Get("subcategory"),
	}

	top := 0
	if topParam := query.Get("top"); topParam != "" {
		var err error
		if top, err = strconv.Atoi(topParam); err != nil || top < 0 {
			http.Error(w, "invalid top", http.StatusBadRequest)
			return
		}
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}
	doc := nb.Document()

	var summary stats.Summary
	if query.Get("from") != "" || query.Get("to") != "" {
		from, errFrom := calendar.ParseDateKey(query.Get("from"))
		to, errTo := calendar.ParseDateKey(query.Get("to"))
		if errFrom != nil || errTo != nil {
			http.Error(w, "invalid date range", http.StatusBadRequest)
			return
		}
		summary = stats.Summarize(doc.Trainings, from, to, filter)
	} else {
		mode := doc.ViewMode
		if modeParam := query.Get("mode"); modeParam != "" {
			var err error
			if mode, err = calendar.ParseViewMode(modeParam); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		date, err := h.dateParam(r, "date")
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		summary = stats.SummarizeView(doc.Trainings, mode, date, filter)
	}

	if top > 0 {
		summary.Exercises = summary.Top(top)
	}
	writeJSON(w, summary, http.StatusOK)
}

func (h *Handler) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "notebookHandler.taxonomy")
	defer span.End()

	writeJSON(w, taxonomy.Categories(), http.StatusOK)
}

// handleLive streams the notebook state as server sent events, one event per change.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	nb, ok := h.notebook(ctx, w)
	if !ok {
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.GaugeLiveSubscribers.Inc()
		defer h.metricsManager.GaugeLiveSubscribers.Dec()
	}

	// the stream outlives the server write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debugf("live, clear write deadline: %s", err)
	}

	w.Header().Set("Content-Type", pkg.ContentType.EventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(liveKeepAliveInterval)
	defer keepAlive.Stop()

	states := nb.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case st, ok := <-states:
			if !ok {
				return
			}
			stateJson, err := json.Marshal(st)
			if err != nil {
				log.Errorf("live, marshal state: %s", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", stateJson); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

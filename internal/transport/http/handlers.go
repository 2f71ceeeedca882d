package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"okkstats/internal/calendar"
	"okkstats/internal/ingest"
	"okkstats/internal/kpi"
	"okkstats/internal/settings"
	"okkstats/internal/stats"
	"okkstats/pkg/platform/sentinel"
)

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handlePushRows(w http.ResponseWriter, r *http.Request) {
	var rows []ingest.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, "invalid row payload")
		return
	}
	h.core.SetRows(rows)
	writeJSON(w, http.StatusAccepted, map[string]int{"rows": len(rows)})
}

func (h *Handler) handleAggregates(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupName := r.URL.Query().Get("group")
	if groupName == "" {
		groupName = "day"
	}
	group, err := stats.ParseGroupBy(groupName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"buckets": h.core.Aggregates(period, group),
	})
}

func (h *Handler) handleWorkload(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.core.WorkloadSummary(period))
}

func (h *Handler) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	date, err := time.ParseInLocation("2006-01-02", chi.URLParam(r, "date"), time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, h.core.CalendarDay(date))
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.core.Settings())
}

// settingsPatch carries the patchable global fields. Absent fields keep
// their value; entries change through the kpi endpoints only.
type settingsPatch struct {
	Exceptions  *calendar.ExceptionSet `json:"exceptions"`
	Years       *[]int                 `json:"years"`
	Grade       *kpi.Grade             `json:"grade"`
	KPITargets  *kpi.Targets           `json:"kpiTargets"`
	Transitions *[]kpi.Transition      `json:"transitions"`
}

func (h *Handler) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings patch")
		return
	}
	err := h.core.MutateSettings(r.Context(), func(g *settings.Global) {
		if patch.Exceptions != nil {
			g.Exceptions = *patch.Exceptions
		}
		if patch.Years != nil {
			g.Years = *patch.Years
		}
		if patch.Grade != nil {
			g.Grade = *patch.Grade
		}
		if patch.KPITargets != nil {
			g.KPITargets = *patch.KPITargets
		}
		if patch.Transitions != nil {
			g.Transitions = *patch.Transitions
		}
	})
	if err != nil {
		h.log.Error("settings patch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "settings update failed")
		return
	}
	writeJSON(w, http.StatusOK, h.core.Settings())
}

func (h *Handler) handlePutPersonal(w http.ResponseWriter, r *http.Request) {
	var p settings.Personal
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid personal settings")
		return
	}
	if err := h.core.MutatePersonal(r.Context(), p); err != nil {
		h.log.Error("personal settings update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "personal settings update failed")
		return
	}
	writeJSON(w, http.StatusOK, h.core.Settings().Personal)
}

func (h *Handler) handleQuarterSummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	quarter, err := strconv.Atoi(chi.URLParam(r, "quarter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quarter")
		return
	}
	doc := h.core.Settings()
	summary, err := kpi.Summarize(doc.Global.KPITargets, doc.Global.Grade, doc.Global.Transitions, doc.Global.Entries, year, quarter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type createEntryRequest struct {
	Code        string `json:"code"`
	Period      string `json:"period"`
	Description string `json:"description"`
	Result      string `json:"result"`
}

func (h *Handler) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry payload")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	entry := kpi.NewEntry(req.Code, req.Period, req.Description, req.Result, h.identity, time.Now())
	err := h.core.MutateSettings(r.Context(), func(g *settings.Global) {
		g.Entries = append(g.Entries, entry)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "entry creation failed")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleEntryStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status kpi.EntryStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid status payload")
		return
	}
	switch req.Status {
	case kpi.StatusPending, kpi.StatusApproved, kpi.StatusRejected:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	h.mutateEntry(w, r, func(entries []kpi.Entry) error {
		return kpi.UpdateStatus(entries, chi.URLParam(r, "id"), req.Status, h.identity, time.Now())
	})
}

func (h *Handler) handleEntryComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "comment text is required")
		return
	}
	h.mutateEntry(w, r, func(entries []kpi.Entry) error {
		return kpi.AddComment(entries, chi.URLParam(r, "id"), h.identity, req.Text, time.Now())
	})
}

func (h *Handler) mutateEntry(w http.ResponseWriter, r *http.Request, op func([]kpi.Entry) error) {
	var opErr error
	err := h.core.MutateSettings(r.Context(), func(g *settings.Global) {
		opErr = op(g.Entries)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "entry update failed")
		return
	}
	if errors.Is(opErr, sentinel.ErrNotFound) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	if opErr != nil {
		writeError(w, http.StatusInternalServerError, "entry update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parsePeriod interprets the period query parameter: empty or "all" for the
// whole dataset, "YYYY" for a year, "YYYY-MM" for a month.
func parsePeriod(s string) (stats.Period, error) {
	if s == "" || s == "all" {
		return stats.AllTime(), nil
	}
	parts := strings.SplitN(s, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return stats.Period{}, fmt.Errorf("invalid period %q", s)
	}
	if len(parts) == 1 {
		return stats.YearOf(year), nil
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return stats.Period{}, fmt.Errorf("invalid period %q", s)
	}
	return stats.MonthOf(year, time.Month(month)), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

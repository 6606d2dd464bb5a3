package ui

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amira/domain/core"
	"amira/internal/report"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// webhookUpdate mirrors the Telegram update shape the poller consumes, so
// either ingress path feeds identical events.
type webhookUpdate struct {
	Message *struct {
		From *struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

func (a *App) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update webhookUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid update payload")
		return
	}

	// Telegram expects a prompt 200; processing runs on the per-user worker.
	switch {
	case update.CallbackQuery != nil:
		a.events.HandleChoice(r.Context(), update.CallbackQuery.From.ID, update.CallbackQuery.Data)
	case update.Message != nil && update.Message.Text != "":
		id := update.Message.Chat.ID
		if update.Message.From != nil {
			id = update.Message.From.ID
		}
		a.events.HandleText(r.Context(), id, update.Message.Text)
	}
	w.WriteHeader(http.StatusOK)
}

func (a *App) handleGenerateProgress(w http.ResponseWriter, r *http.Request) {
	patientID, err := core.ParsePatientID(chi.URLParam(r, "patientID"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := a.reports.GenerateProgressReport(r.Context(), patientID)
	if err != nil {
		a.reportError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, rep)
}

func (a *App) handleGenerateAssessment(w http.ResponseWriter, r *http.Request) {
	patientID, err := core.ParsePatientID(chi.URLParam(r, "patientID"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := a.reports.GenerateAssessmentReport(r.Context(), patientID)
	if err != nil {
		a.reportError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, rep)
}

func (a *App) handleListReports(w http.ResponseWriter, r *http.Request) {
	patientID, err := core.ParsePatientID(chi.URLParam(r, "patientID"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reports, err := a.repo.FindByPatient(r.Context(), patientID, 0)
	if err != nil {
		a.reportError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, reports)
}

func (a *App) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := core.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := a.repo.FindByID(r.Context(), reportID)
	if err != nil {
		a.reportError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rep)
}

func (a *App) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	reportID, err := core.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := a.repo.FindByID(r.Context(), reportID)
	if err != nil {
		a.reportError(w, err)
		return
	}

	data, err := report.ExportXLSX(rep)
	if err != nil {
		a.logger.Error("xlsx export for %s failed: %v", reportID, err)
		a.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.xlsx"`, reportID))
	if _, err := w.Write(data); err != nil {
		a.logger.Error("writing xlsx response failed: %v", err)
	}
}

func (a *App) reportError(w http.ResponseWriter, err error) {
	if core.IsNotFoundError(err) {
		a.writeError(w, http.StatusNotFound, "not found")
		return
	}
	a.logger.Error("report request failed: %v", err)
	a.writeError(w, http.StatusInternalServerError, "internal error")
}

func (a *App) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("encoding response failed: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}

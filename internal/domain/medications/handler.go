package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/domain/timespec"
	"medication-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Medicamentos (solo owner)
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))
		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Put("/{medicationID}", updateMedicationHandler(svc))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc))
	})
}

type medicationRequest struct {
	Name          string   `json:"name"`
	Dosage        string   `json:"dosage"`
	Frequency     string   `json:"frequency"` // once, twice, thrice, four-times, as-needed
	StartDate     string   `json:"startDate"` // YYYY-MM-DD opcional
	EndDate       string   `json:"endDate"`   // YYYY-MM-DD opcional
	Notes         string   `json:"notes"`
	ReminderTimes []string `json:"reminderTimes"` // HH:MM
	IsActive      *bool    `json:"isActive"`
}

type medicationResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	Frequency     Frequency  `json:"frequency"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Notes         string     `json:"notes"`
	ReminderTimes []string   `json:"reminderTimes"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type outcomeResponse struct {
	Scheduled []string `json:"scheduled"`
	Dropped   int      `json:"dropped"`
	Cancelled bool     `json:"cancelled"`
	Warnings  []string `json:"warnings,omitempty"`
}

type saveMedicationResponse struct {
	Medication medicationResponse `json:"medication"`
	Reminders  outcomeResponse    `json:"reminders"`
}

type deleteMedicationResponse struct {
	Success  bool     `json:"success"`
	Warnings []string `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Description Crea un medicamento y programa sus recordatorios. Horarios inválidos se descartan; si ninguno es válido responde 400 NoValidTimes.
// @Tags medications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body medicationRequest true "Datos del medicamento"
// @Success 201 {object} saveMedicationResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {string} string "unauthorized"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		m, outcome, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, saveMedicationResponse{
			Medication: toMedicationResponse(m),
			Reminders:  toOutcomeResponse(outcome),
		})
	}
}

// listMedicationsHandler godoc
// @Summary Listar mis medicamentos
// @Tags medications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Obtener medicamento
// @Tags medications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param medicationID path string true "Medication ID"
// @Success 200 {object} medicationResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Reemplazar medicamento
// @Description Reemplazo completo (horarios incluidos). Reprograma o cancela los recordatorios según el nuevo estado.
// @Tags medications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param medicationID path string true "Medication ID"
// @Param payload body medicationRequest true "Datos del medicamento"
// @Success 200 {object} saveMedicationResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [put]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		m, outcome, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, saveMedicationResponse{
			Medication: toMedicationResponse(m),
			Reminders:  toOutcomeResponse(outcome),
		})
	}
}

// deleteMedicationHandler godoc
// @Summary Borrar medicamento
// @Description Borra el medicamento, sus registros de recordatorio y sus timers.
// @Tags medications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param medicationID path string true "Medication ID"
// @Success 200 {object} deleteMedicationResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		warnings, err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteMedicationResponse{Success: true, Warnings: warnings})
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return Input{}, false
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		http.Error(w, "startDate must be YYYY-MM-DD", http.StatusBadRequest)
		return Input{}, false
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		http.Error(w, "endDate must be YYYY-MM-DD", http.StatusBadRequest)
		return Input{}, false
	}

	return Input{
		Name:          req.Name,
		Dosage:        req.Dosage,
		Frequency:     req.Frequency,
		StartDate:     start,
		EndDate:       end,
		Notes:         req.Notes,
		ReminderTimes: req.ReminderTimes,
		IsActive:      req.IsActive,
	}, true
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timespec.ErrNoValidTimes):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "NoValidTimes",
			Message: "no valid reminder times (expected HH:MM)",
		})
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Dosage:        m.Dosage,
		Frequency:     m.Frequency,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		Notes:         m.Notes,
		ReminderTimes: timespec.Strings(m.ReminderTimes),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toOutcomeResponse(o SaveOutcome) outcomeResponse {
	return outcomeResponse{
		Scheduled: timespec.Strings(o.Scheduled),
		Dropped:   o.Dropped,
		Cancelled: o.Cancelled,
		Warnings:  o.Warnings,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

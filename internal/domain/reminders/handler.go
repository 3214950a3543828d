package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/domain/timespec"
	"medication-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// ErrMedicationNotFound lo devuelve MedicationOwnerLookup cuando el medicamento no existe.
var ErrMedicationNotFound = errors.New("medication not found")

var errNotOwner = errors.New("not medication owner")

// MedicationOwnerLookup evita importar el paquete medications.
// Los registros pertenecen al medicamento: solo su dueño los reemplaza o cancela.
type MedicationOwnerLookup interface {
	OwnerOf(ctx context.Context, medicationID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, owners MedicationOwnerLookup) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Post("/", scheduleRemindersHandler(svc, owners))
		rr.Delete("/", cancelRemindersHandler(svc, owners))
		rr.Get("/", listRemindersHandler(svc))
	})
}

// scheduleRemindersRequest reemplaza los recordatorios en servidor de un medicamento.
type scheduleRemindersRequest struct {
	UserID         string   `json:"userId"`
	MedicationID   string   `json:"medicationId"`
	MedicationName string   `json:"medicationName"`
	Dosage         string   `json:"dosage"`
	ReminderTimes  []string `json:"reminderTimes"`
}

type scheduleRemindersResponse struct {
	Success bool     `json:"success"`
	Times   []string `json:"times,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type cancelRemindersRequest struct {
	MedicationID string `json:"medicationId"`
}

type recordResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	MedicationID   string     `json:"medicationId"`
	MedicationName string     `json:"medicationName"`
	Dosage         string     `json:"dosage"`
	Time           string     `json:"time"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastTriggered  *time.Time `json:"lastTriggered,omitempty"`
	NextTrigger    *time.Time `json:"nextTrigger,omitempty"`
}

// scheduleRemindersHandler godoc
// @Summary Reemplazar recordatorios de un medicamento
// @Description Valida los horarios (HH:MM) y reemplaza completo el espejo en servidor. Horarios inválidos se descartan; si no queda ninguno responde 400 NoValidTimes.
// @Tags reminders
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body scheduleRemindersRequest true "Medicamento y horarios"
// @Success 200 {object} scheduleRemindersResponse
// @Failure 400 {object} scheduleRemindersResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Failure 500 {object} scheduleRemindersResponse
// @Router /reminders [post]
func scheduleRemindersHandler(svc *Service, owners MedicationOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		userID := claims.UserID

		var req scheduleRemindersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if body := strings.TrimSpace(req.UserID); body != "" && body != userID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if strings.TrimSpace(req.MedicationID) == "" {
			writeJSON(w, http.StatusBadRequest, scheduleRemindersResponse{Error: "medicationId required"})
			return
		}

		switch err := checkOwner(r.Context(), owners, userID, req.MedicationID); {
		case err == nil:
		case errors.Is(err, ErrMedicationNotFound):
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		case errors.Is(err, errNotOwner):
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		times, dropped, err := timespec.ValidOrError(req.ReminderTimes)
		if err != nil || len(times) == 0 {
			writeJSON(w, http.StatusBadRequest, scheduleRemindersResponse{
				Error:   "NoValidTimes",
				Message: "no valid reminder times (expected HH:MM)",
			})
			return
		}

		created, err := svc.ReplaceForMedication(r.Context(), ReplaceInput{
			UserID:         userID,
			MedicationID:   req.MedicationID,
			MedicationName: req.MedicationName,
			Dosage:         req.Dosage,
			Times:          times,
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, scheduleRemindersResponse{Error: err.Error()})
			return
		}

		saved := make([]timespec.TimeSpec, 0, len(created))
		for _, rec := range created {
			saved = append(saved, rec.Time)
		}

		msg := fmt.Sprintf("%d reminder(s) scheduled", len(saved))
		if dropped > 0 {
			msg += fmt.Sprintf(", %d invalid time(s) ignored", dropped)
		}
		writeJSON(w, http.StatusOK, scheduleRemindersResponse{
			Success: true,
			Times:   timespec.Strings(saved),
			Message: msg,
		})
	}
}

// cancelRemindersHandler godoc
// @Summary Cancelar recordatorios de un medicamento
// @Description Borra todos los registros del medicamento. Idempotente: un medicamento que ya no existe responde 200 sin tocar nada.
// @Tags reminders
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body cancelRemindersRequest true "Medicamento"
// @Success 200 {object} scheduleRemindersResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {object} scheduleRemindersResponse
// @Router /reminders [delete]
func cancelRemindersHandler(svc *Service, owners MedicationOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req cancelRemindersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.MedicationID) == "" {
			http.Error(w, "medicationId required", http.StatusBadRequest)
			return
		}

		switch err := checkOwner(r.Context(), owners, claims.UserID, req.MedicationID); {
		case err == nil:
		case errors.Is(err, ErrMedicationNotFound):
			// Baja del medicamento ya canceló sus registros.
			writeJSON(w, http.StatusOK, scheduleRemindersResponse{Success: true, Message: "0 reminder(s) cancelled"})
			return
		case errors.Is(err, errNotOwner):
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		n, err := svc.CancelForMedication(r.Context(), req.MedicationID)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "medicationId required", http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusInternalServerError, scheduleRemindersResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, scheduleRemindersResponse{
			Success: true,
			Message: fmt.Sprintf("%d reminder(s) cancelled", n),
		})
	}
}

// listRemindersHandler godoc
// @Summary Listar recordatorios
// @Description Lista los registros del usuario autenticado, opcionalmente filtrados por medicationId.
// @Tags reminders
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param medicationId query string false "Filtrar por medicamento"
// @Success 200 {array} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /reminders [get]
func listRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var (
			items []Record
			err   error
		)
		if medID := strings.TrimSpace(r.URL.Query().Get("medicationId")); medID != "" {
			items, err = svc.ListByMedication(r.Context(), medID)
		} else {
			items, err = svc.ListByUser(r.Context(), claims.UserID)
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			// Solo los del usuario, aunque se filtre por medicamento ajeno.
			if rec.UserID != claims.UserID {
				continue
			}
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func checkOwner(ctx context.Context, owners MedicationOwnerLookup, userID, medicationID string) error {
	owner, err := owners.OwnerOf(ctx, strings.TrimSpace(medicationID))
	if err != nil {
		return err
	}
	if owner != userID {
		return errNotOwner
	}
	return nil
}

func toRecordResponse(r Record) recordResponse {
	return recordResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		MedicationID:   r.MedicationID,
		MedicationName: r.MedicationName,
		Dosage:         r.Dosage,
		Time:           r.Time.String(),
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
		LastTriggered:  r.LastTriggered,
		NextTrigger:    r.NextTrigger,
	}
}

// writeJSON se repite en cada módulo de handlers; todavía no hay paquete compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package coordinator

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/middleware"
	"medication-reminders/internal/scheduler"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, c *Coordinator, monitor *scheduler.LifecycleMonitor) {
	r.Route("/lifecycle", func(lr chi.Router) {
		lr.Post("/visibility", visibilityHandler(monitor))
		lr.Post("/focus", focusHandler(monitor))
	})

	r.Get("/scheduler/timers", listTimersHandler(c))
}

type visibilityRequest struct {
	State string `json:"state"` // hidden | visible
}

type lifecycleResponse struct {
	Success  bool `json:"success"`
	Resynced bool `json:"resynced"`
}

type timerResponse struct {
	MedicationID string    `json:"medicationId"`
	SlotIndex    int       `json:"slotIndex"`
	Time         string    `json:"time"`
	FireAt       time.Time `json:"fireAt"`
}

// visibilityHandler godoc
// @Summary Reportar visibilidad del cliente
// @Description hidden marca el paso a segundo plano; visible tras al menos el umbral configurado fuerza un resync de timers.
// @Tags lifecycle
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body visibilityRequest true "Estado"
// @Success 200 {object} lifecycleResponse
// @Failure 400 {string} string "state must be hidden or visible"
// @Failure 401 {string} string "unauthorized"
// @Router /lifecycle/visibility [post]
func visibilityHandler(monitor *scheduler.LifecycleMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req visibilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		switch strings.ToLower(strings.TrimSpace(req.State)) {
		case "hidden":
			monitor.Hidden(userID)
			writeJSON(w, http.StatusOK, lifecycleResponse{Success: true})
		case "visible":
			resynced := monitor.Visible(r.Context(), userID)
			writeJSON(w, http.StatusOK, lifecycleResponse{Success: true, Resynced: resynced})
		default:
			http.Error(w, "state must be hidden or visible", http.StatusBadRequest)
		}
	}
}

// focusHandler godoc
// @Summary Reportar foco del cliente
// @Description Agenda un resync con debounce.
// @Tags lifecycle
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 202 {object} lifecycleResponse
// @Failure 401 {string} string "unauthorized"
// @Router /lifecycle/focus [post]
func focusHandler(monitor *scheduler.LifecycleMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		monitor.Focus()
		writeJSON(w, http.StatusAccepted, lifecycleResponse{Success: true})
	}
}

// listTimersHandler godoc
// @Summary Listar timers locales
// @Description Timers armados para los medicamentos del usuario autenticado.
// @Tags lifecycle
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {array} timerResponse
// @Failure 401 {string} string "unauthorized"
// @Router /scheduler/timers [get]
func listTimersHandler(c *Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		handles, err := c.TimersForUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]timerResponse, 0, len(handles))
		for _, h := range handles {
			out = append(out, timerResponse{
				MedicationID: h.MedicationID,
				SlotIndex:    h.SlotIndex,
				Time:         h.Time.String(),
				FireAt:       h.FireAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package notifications

import (
	"encoding/json"
	"net/http"
	"strings"

	"medication-reminders/internal/middleware"
	"medication-reminders/internal/ports/contacts"

	"github.com/go-chi/chi/v5"
)

// RegisterContactRoutes expone el alta de contacto cuando el resolver acepta escrituras.
func RegisterContactRoutes(r chi.Router, registry contacts.Registry) {
	r.Put("/me/contact", putContactHandler(registry))
}

type putContactRequest struct {
	Email     string `json:"email"`
	PushToken string `json:"pushToken"`
	Name      string `json:"name"`
}

type contactResponse struct {
	Email     string `json:"email,omitempty"`
	PushToken string `json:"pushToken,omitempty"`
	Name      string `json:"name,omitempty"`
}

// putContactHandler godoc
// @Summary Guardar datos de contacto
// @Description Registra email y token push del usuario autenticado (modo dev, sin sistema de perfiles).
// @Tags notify
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body putContactRequest true "Contacto"
// @Success 200 {object} contactResponse
// @Failure 400 {string} string "invalid email"
// @Failure 401 {string} string "unauthorized"
// @Router /me/contact [put]
func putContactHandler(registry contacts.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req putContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		info := contacts.ContactInfo{
			Email:     strings.TrimSpace(req.Email),
			PushToken: strings.TrimSpace(req.PushToken),
			Name:      strings.TrimSpace(req.Name),
		}
		if info.Email != "" && !ValidAddress(info.Email) {
			http.Error(w, "invalid email", http.StatusBadRequest)
			return
		}

		if err := registry.SetContact(r.Context(), claims.UserID, info); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, contactResponse{Email: info.Email, PushToken: info.PushToken, Name: info.Name})
	}
}

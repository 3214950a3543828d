package notifications

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/middleware"
	"medication-reminders/internal/ports/contacts"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, push *PushChannel, email *EmailChannel, d *Dispatcher, resolver contacts.Resolver) {
	r.Route("/notify", func(nr chi.Router) {
		nr.Post("/push", sendPushHandler(push))
		nr.Post("/email", sendEmailHandler(email))
	})

	r.Post("/me/profile-changed", profileChangedHandler(d, resolver))
}

type sendPushRequest struct {
	Token string `json:"token"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendPushResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type sendEmailRequest struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	MedicationName string `json:"medicationName,omitempty"`
	Dosage         string `json:"dosage,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
	UserName       string `json:"userName,omitempty"`
}

type sendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type profileChangedRequest struct {
	Fields []string `json:"fields"`
}

type channelResultResponse struct {
	Status Status `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type reportResponse struct {
	Success  bool                  `json:"success"`
	Summary  string                `json:"summary"`
	Push     channelResultResponse `json:"push"`
	Email    channelResultResponse `json:"email"`
	Warnings []string              `json:"warnings,omitempty"`
}

// sendPushHandler godoc
// @Summary Enviar notificación push
// @Description Envía una notificación a un token de dispositivo. Responde 503 si el transporte push no está configurado (falla blanda para quien llama).
// @Tags notify
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body sendPushRequest true "Token, título y cuerpo"
// @Success 200 {object} sendPushResponse
// @Failure 400 {object} sendPushResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {object} sendPushResponse
// @Failure 503 {object} sendPushResponse
// @Router /notify/push [post]
func sendPushHandler(push *PushChannel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}
		if !push.Configured() {
			writeJSON(w, http.StatusServiceUnavailable, sendPushResponse{Error: "push transport not configured"})
			return
		}

		var req sendPushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, sendPushResponse{Error: "invalid json"})
			return
		}
		if strings.TrimSpace(req.Token) == "" || strings.TrimSpace(req.Title) == "" {
			writeJSON(w, http.StatusBadRequest, sendPushResponse{Error: "token and title required"})
			return
		}

		ack, err := push.Send(r.Context(), Message{Recipient: req.Token, Title: req.Title, Body: req.Body})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, sendPushResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, sendPushResponse{Success: true, Response: ack.ID})
	}
}

// sendEmailHandler godoc
// @Summary Enviar email
// @Description Envía un email (con detalle del medicamento opcional).
// @Tags notify
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body sendEmailRequest true "Destinatario, asunto y mensaje"
// @Success 200 {object} sendEmailResponse
// @Failure 400 {object} sendEmailResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {object} sendEmailResponse
// @Failure 503 {object} sendEmailResponse
// @Router /notify/email [post]
func sendEmailHandler(email *EmailChannel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireUser(w, r) {
			return
		}
		var req sendEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: "invalid json"})
			return
		}
		if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
			writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: "subject and message required"})
			return
		}

		_, err := email.Send(r.Context(), Message{
			Recipient: req.To,
			Title:     req.Subject,
			Body:      req.Message,
			Metadata: map[string]string{
				"medicationName": req.MedicationName,
				"dosage":         req.Dosage,
				"instructions":   req.Instructions,
				"userName":       req.UserName,
			},
		})
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, sendEmailResponse{Success: true, Message: "email sent"})
		case errors.Is(err, ErrInvalidRecipient):
			writeJSON(w, http.StatusBadRequest, sendEmailResponse{Error: err.Error()})
		case errors.Is(err, ErrNotConfigured):
			writeJSON(w, http.StatusServiceUnavailable, sendEmailResponse{Error: "email transport not configured"})
		default:
			writeJSON(w, http.StatusInternalServerError, sendEmailResponse{Error: err.Error()})
		}
	}
}

// profileChangedHandler godoc
// @Summary Confirmar cambio de perfil
// @Description Notifica al usuario por push y email que su perfil cambió. Siempre 200 si el usuario existe; el detalle por canal va en el reporte.
// @Tags notify
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body profileChangedRequest false "Campos cambiados"
// @Success 200 {object} reportResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "contact not found"
// @Router /me/profile-changed [post]
func profileChangedHandler(d *Dispatcher, resolver contacts.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req profileChangedRequest
		// body opcional
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		info, err := resolver.Contact(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, contacts.ErrNotFound) {
				http.Error(w, "contact not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if info.Email == "" {
			info.Email = claims.Email
		}

		rep := d.Dispatch(r.Context(), claims.UserID, ProfileChangeConfirmation{
			UserName:      info.Name,
			ChangedFields: req.Fields,
			ChangedAt:     time.Now(),
		}, info)

		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

// requireUser corta con 401 si no hay usuario: los envíos salen con la identidad del servicio.
func requireUser(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// toReportResponse es la forma JSON del reporte.
func toReportResponse(rep Report) reportResponse {
	return reportResponse{
		Success:  rep.Delivered(),
		Summary:  rep.Summary(),
		Push:     channelResultResponse{Status: rep.Push.Status, ID: rep.Push.ID, Error: rep.Push.Error},
		Email:    channelResultResponse{Status: rep.Email.Status, ID: rep.Email.ID, Error: rep.Email.Error},
		Warnings: rep.Warnings(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

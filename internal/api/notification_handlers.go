package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/telemed-scheduling/internal/appointment"
	"github.com/carelink/telemed-scheduling/internal/notification"
)

func listNotificationsHandler(svc *notification.Service, pollInterval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "actor_required", "missing caller identity")
			return
		}

		// Tell pollers how often to come back.
		w.Header().Set("X-Poll-Interval-Seconds", strconv.Itoa(int(pollInterval.Seconds())))

		var (
			items []notification.Notification
			err   error
		)
		if r.URL.Query().Get("unread") == "1" {
			since := time.Time{}
			if raw := r.URL.Query().Get("since"); raw != "" {
				since, err = time.Parse(time.RFC3339, raw)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_since", "since must be RFC 3339")
					return
				}
			}
			items, err = svc.FetchUnread(r.Context(), actor.ID, since)
		} else {
			items, err = svc.List(r.Context(), actor.ID)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]NotificationResponse, 0, len(items))
		for _, n := range items {
			resp = append(resp, toNotificationResponse(n))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func markNotificationReadHandler(svc *notification.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetActor(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "actor_required", "missing caller identity")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_notification_id", "id must be a valid UUID")
			return
		}

		if err := svc.MarkRead(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func markAllNotificationsReadHandler(svc *notification.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "actor_required", "missing caller identity")
			return
		}

		if err := svc.MarkAllRead(r.Context(), actor.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func broadcastHandler(svc *notification.Service, roster *notification.PgDirectory, typ notification.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		if !ok || actor.Role != appointment.RoleAdmin {
			writeError(w, http.StatusForbidden, "not_authorized", "admin identity required")
			return
		}

		var req BroadcastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "validation_failed", "message is required")
			return
		}

		role := ""
		switch req.Target {
		case "", "all":
		case "doctors":
			role = "doctor"
		case "patients":
			role = "patient"
		default:
			writeError(w, http.StatusBadRequest, "validation_failed", "target must be all, doctors or patients")
			return
		}

		ids, err := roster.RecipientIDs(r.Context(), role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		batchID := svc.Broadcast(r.Context(), ids, typ, req.Message)
		writeJSON(w, http.StatusOK, BroadcastResponse{BatchID: batchID, Recipients: len(ids)})
	}
}

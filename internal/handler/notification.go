package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/omarsabra/mahfaza/internal/context"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/response"
)

// unreadCountTTL bounds how stale the cached unread badge may get.
const unreadCountTTL = 30 * time.Second

type notificationView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func viewFromNotification(n *models.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (h *RouteHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	page, pageSize := pageParams(r)

	notifications, total, err := h.DB.Notification().ListByUser(user.ID, page, pageSize)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	views := make([]notificationView, len(notifications))
	for i := range notifications {
		views[i] = viewFromNotification(&notifications[i])
	}

	data := map[string]any{
		"notifications": views,
		"total":         total,
		"page":          page,
		"page_size":     pageSize,
	}
	err = response.JSONOkResponse(w, data, "Notifications retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	updated, err := h.DB.Notification().MarkRead(r.PathValue("id"), user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !updated {
		h.ErrHandler.NotFound(w, r)
		return
	}

	// Drop the cached badge so the next read reflects the change.
	if h.Cache != nil {
		if err := h.Cache.Delete(unreadCountKey(user.ID)); err != nil {
			log.Printf("Error invalidating unread count cache: %v", err)
		}
	}

	err = response.JSONOkResponse(w, nil, "Notification marked as read", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleUnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	count, err := h.unreadCount(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]int{"unread": count}
	err = response.JSONOkResponse(w, data, "Unread count retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) unreadCount(userID string) (int, error) {
	key := unreadCountKey(userID)

	if h.Cache != nil {
		cached, found, err := h.Cache.Get(key)
		if err != nil {
			log.Printf("Error reading unread count cache: %v", err)
		} else if found {
			if count, err := strconv.Atoi(cached); err == nil {
				return count, nil
			}
		}
	}

	count, err := h.DB.Notification().UnreadCount(userID)
	if err != nil {
		return 0, err
	}

	if h.Cache != nil {
		if err := h.Cache.Set(key, strconv.Itoa(count), unreadCountTTL); err != nil {
			log.Printf("Error writing unread count cache: %v", err)
		}
	}

	return count, nil
}

func unreadCountKey(userID string) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

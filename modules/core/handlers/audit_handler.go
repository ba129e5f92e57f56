// Package handlers subscribes core event listeners to the event bus.
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
)

// AuditHandler writes one structured log line per account and upload
// change.
type AuditHandler struct {
	logger *logrus.Entry
}

func RegisterAuditHandler(publisher eventbus.EventBus, logger *logrus.Logger) *AuditHandler {
	h := &AuditHandler{logger: logger.WithField("component", "audit")}
	publisher.Subscribe(h.onUserCreated)
	publisher.Subscribe(h.onUserUpdated)
	publisher.Subscribe(h.onUserDeleted)
	publisher.Subscribe(h.onLoggedIn)
	publisher.Subscribe(h.onUploadCreated)
	return h
}

func senderID(u user.User) string {
	if u == nil {
		return "system"
	}
	return u.ID().String()
}

func (h *AuditHandler) onUserCreated(e *user.CreatedEvent) {
	h.logger.WithFields(logrus.Fields{
		"event":   "user.created",
		"sender":  senderID(e.Sender),
		"user_id": e.Result.ID(),
		"role":    e.Result.Role(),
	}).Info("user created")
}

func (h *AuditHandler) onUserUpdated(e *user.UpdatedEvent) {
	h.logger.WithFields(logrus.Fields{
		"event":   "user.updated",
		"sender":  senderID(e.Sender),
		"user_id": e.Result.ID(),
		"role":    e.Result.Role(),
		"active":  e.Result.Active(),
	}).Info("user updated")
}

func (h *AuditHandler) onUserDeleted(e *user.DeletedEvent) {
	h.logger.WithFields(logrus.Fields{
		"event":   "user.deleted",
		"sender":  senderID(e.Sender),
		"user_id": e.Result.ID(),
	}).Warn("user deleted")
}

func (h *AuditHandler) onLoggedIn(e *user.LoggedInEvent) {
	h.logger.WithFields(logrus.Fields{
		"event":   "user.logged_in",
		"user_id": e.Result.ID(),
		"ip":      e.IP,
	}).Info("user logged in")
}

func (h *AuditHandler) onUploadCreated(e *upload.CreatedEvent) {
	fields := logrus.Fields{
		"event":    "upload.created",
		"hash":     e.Result.Hash,
		"mimetype": e.Result.Mimetype,
		"size":     e.Result.Size,
	}
	if e.Result.UploaderID != nil {
		fields["uploader_id"] = *e.Result.UploaderID
	}
	h.logger.WithFields(fields).Info("upload stored")
}

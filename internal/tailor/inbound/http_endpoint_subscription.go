package inbound

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/shared/event"
	"github.com/shandysiswandi/tailor/internal/tailor/usecase"
)

const maxPushBytes = 64 << 10

var errPushToken = goerror.NewBusiness("Invalid push token", goerror.CodeUnauthorized)

// SubscriptionRenew re-arms the Gmail watch on the signup mailbox.
// @Summary Renew Gmail subscription
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=SubscriptionResponse} "Watch state"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Failure 502 {object} router.errorResponse "Failed to renew subscription"
// @Router /subscriptions/renew [post]
func (h *HTTPEndpoint) SubscriptionRenew(r *router.Request) (any, error) {
	w, err := h.uc.SubscriptionRenew(r.Context())
	if err != nil {
		return nil, err
	}

	return SubscriptionResponse{HistoryID: w.HistoryID, Expiration: w.Expiration}, nil
}

// SubscriptionPush receives Gmail notifications pushed by Pub/Sub.
// @Summary Gmail push notification
// @Description Pub/Sub push endpoint. Authenticated by the token query parameter.
// @Tags Subscriptions
// @Accept json
// @Param token query string true "Push token"
// @Param request body event.PubSubPushEnvelope true "Pub/Sub push envelope"
// @Success 200 {object} router.successResponse{data=PushAckResponse} "Acknowledged"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid push token"
// @Failure 502 {object} router.errorResponse "Mailbox unavailable, Pub/Sub retries"
// @Router /subscriptions [post]
func (h *HTTPEndpoint) SubscriptionPush(r *router.Request) (any, error) {
	token := r.GetQuery("token")
	if h.pushToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.pushToken)) != 1 {
		return nil, errPushToken
	}

	// Pub/Sub sends both camelCase and snake_case copies of some fields, so
	// unknown fields are tolerated here.
	var env event.PubSubPushEnvelope
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPushBytes)).Decode(&env); err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	var msg event.GmailNotificationMessage
	if err := json.Unmarshal(env.Message.Data, &msg); err != nil {
		slog.WarnContext(r.Context(), "dropping malformed gmail notification",
			"message_id", env.Message.MessageID, "error", err)
		return PushAckResponse{MessageID: env.Message.MessageID}, nil
	}

	if err := h.uc.SubscriptionNotify(r.Context(), usecase.SubscriptionNotifyInput{
		EmailAddress: msg.EmailAddress,
		HistoryID:    msg.HistoryID,
	}); err != nil {
		return nil, err
	}

	return PushAckResponse{MessageID: env.Message.MessageID}, nil
}

package inbound

import (
	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"github.com/shandysiswandi/tailor/internal/tailor/usecase"
)

type HTTPEndpoint struct {
	uc        uc
	pushToken string
}

// ChannelList returns the caller's channels.
// @Summary List channels
// @Description Returns every notification channel of the API key owner.
// @Tags Channels
// @Security APIKeyAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=[]object} "Channel list"
// @Failure 401 {object} router.errorResponse "Invalid API key"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /channels [get]
func (h *HTTPEndpoint) ChannelList(r *router.Request) (any, error) {
	items, err := h.uc.ChannelList(r.Context())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.Channel{}
	}

	return items, nil
}

// ChannelGet returns one channel.
// @Summary Get channel
// @Tags Channels
// @Security APIKeyAuth
// @Produce json
// @Param id path string true "Channel ID"
// @Success 200 {object} router.successResponse{data=object} "Channel"
// @Failure 401 {object} router.errorResponse "Invalid API key"
// @Failure 404 {object} router.errorResponse "Channel not found"
// @Router /channels/{id} [get]
func (h *HTTPEndpoint) ChannelGet(r *router.Request) (any, error) {
	return h.uc.ChannelGet(r.Context(), usecase.ChannelGetInput{ID: r.GetParam("id")})
}

// ChannelCreate adds a channel of the type named in the path.
// @Summary Create channel
// @Description Creates a whatsapp, ifttt or webhook channel. The body carries the type specific settings and an optional event mask.
// @Tags Channels
// @Security APIKeyAuth
// @Accept json
// @Produce json
// @Param type path string true "Channel type" Enums(whatsapp, ifttt, webhook)
// @Param request body object true "Channel settings"
// @Success 201 {object} router.successResponse{data=object} "Created channel"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid API key"
// @Failure 409 {object} router.errorResponse "Channel conflicts with an existing one"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /channels/{type} [post]
func (h *HTTPEndpoint) ChannelCreate(r *router.Request) (any, error) {
	payload, err := r.DecodeMap()
	if err != nil {
		return nil, err
	}

	ch, err := h.uc.ChannelCreate(r.Context(), usecase.ChannelCreateInput{
		Type:    r.GetParam("id"),
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}

	return created{data: ch}, nil
}

// ChannelUpdate merges a partial document into a channel.
// @Summary Update channel
// @Tags Channels
// @Security APIKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Channel ID"
// @Param request body object true "Partial channel"
// @Success 200 {object} router.successResponse{data=object} "Updated channel"
// @Failure 400 {object} router.errorResponse "Nothing to update"
// @Failure 404 {object} router.errorResponse "Channel not found"
// @Failure 409 {object} router.errorResponse "Channel conflicts with an existing one"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /channels/{id} [patch]
func (h *HTTPEndpoint) ChannelUpdate(r *router.Request) (any, error) {
	patch, err := r.DecodeMap()
	if err != nil {
		return nil, err
	}

	return h.uc.ChannelUpdate(r.Context(), usecase.ChannelUpdateInput{ID: r.GetParam("id"), Patch: patch})
}

// ChannelDelete removes a channel.
// @Summary Delete channel
// @Tags Channels
// @Security APIKeyAuth
// @Param id path string true "Channel ID"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Channel not found"
// @Router /channels/{id} [delete]
func (h *HTTPEndpoint) ChannelDelete(r *router.Request) (any, error) {
	return nil, h.uc.ChannelDelete(r.Context(), usecase.ChannelDeleteInput{ID: r.GetParam("id")})
}

// ChannelEventEnable turns one event kind on for a channel.
// @Summary Enable channel event
// @Tags Channels
// @Security APIKeyAuth
// @Param id path string true "Channel ID"
// @Param event path string true "Event kind"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Channel not found"
// @Failure 409 {object} router.errorResponse "Event already enabled"
// @Failure 422 {object} router.errorResponse "Unknown event"
// @Router /channels/{id}/events/{event} [put]
func (h *HTTPEndpoint) ChannelEventEnable(r *router.Request) (any, error) {
	return nil, h.uc.ChannelEventEnable(r.Context(), usecase.ChannelEventInput{
		ID:    r.GetParam("id"),
		Event: r.GetParam("event"),
	})
}

// ChannelEventDisable turns one event kind off for a channel.
// @Summary Disable channel event
// @Tags Channels
// @Security APIKeyAuth
// @Param id path string true "Channel ID"
// @Param event path string true "Event kind"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Channel not found"
// @Failure 409 {object} router.errorResponse "Event already disabled"
// @Failure 422 {object} router.errorResponse "Unknown event"
// @Router /channels/{id}/events/{event} [delete]
func (h *HTTPEndpoint) ChannelEventDisable(r *router.Request) (any, error) {
	return nil, h.uc.ChannelEventDisable(r.Context(), usecase.ChannelEventInput{
		ID:    r.GetParam("id"),
		Event: r.GetParam("event"),
	})
}

// FilterList returns the caller's filters.
// @Summary List filters
// @Tags Filters
// @Security APIKeyAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=[]entity.Filter} "Filter list"
// @Failure 401 {object} router.errorResponse "Invalid API key"
// @Router /filters [get]
func (h *HTTPEndpoint) FilterList(r *router.Request) (any, error) {
	items, err := h.uc.FilterList(r.Context())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.Filter{}
	}

	return items, nil
}

// FilterGet returns one filter.
// @Summary Get filter
// @Tags Filters
// @Security APIKeyAuth
// @Produce json
// @Param id path string true "Filter ID"
// @Success 200 {object} router.successResponse{data=entity.Filter} "Filter"
// @Failure 404 {object} router.errorResponse "Filter not found"
// @Router /filters/{id} [get]
func (h *HTTPEndpoint) FilterGet(r *router.Request) (any, error) {
	return h.uc.FilterGet(r.Context(), usecase.FilterGetInput{ID: r.GetParam("id")})
}

// FilterCreate adds a filter.
// @Summary Create filter
// @Tags Filters
// @Security APIKeyAuth
// @Accept json
// @Produce json
// @Param request body entity.Filter true "Filter criteria"
// @Success 201 {object} router.successResponse{data=entity.Filter} "Created filter"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Filter already exists"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Max amount of filters reached"
// @Router /filters [post]
func (h *HTTPEndpoint) FilterCreate(r *router.Request) (any, error) {
	payload, err := r.DecodeMap()
	if err != nil {
		return nil, err
	}

	f, err := h.uc.FilterCreate(r.Context(), usecase.FilterCreateInput{Payload: payload})
	if err != nil {
		return nil, err
	}

	return created{data: f}, nil
}

// FilterUpdate merges a partial document into a filter.
// @Summary Update filter
// @Tags Filters
// @Security APIKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Filter ID"
// @Param request body object true "Partial filter"
// @Success 200 {object} router.successResponse{data=entity.Filter} "Updated filter"
// @Failure 400 {object} router.errorResponse "Nothing to update"
// @Failure 404 {object} router.errorResponse "Filter not found"
// @Failure 409 {object} router.errorResponse "The updated Filter already exists"
// @Router /filters/{id} [patch]
func (h *HTTPEndpoint) FilterUpdate(r *router.Request) (any, error) {
	patch, err := r.DecodeMap()
	if err != nil {
		return nil, err
	}

	return h.uc.FilterUpdate(r.Context(), usecase.FilterUpdateInput{ID: r.GetParam("id"), Patch: patch})
}

// FilterDelete removes a filter.
// @Summary Delete filter
// @Tags Filters
// @Security APIKeyAuth
// @Param id path string true "Filter ID"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Filter not found"
// @Router /filters/{id} [delete]
func (h *HTTPEndpoint) FilterDelete(r *router.Request) (any, error) {
	return nil, h.uc.FilterDelete(r.Context(), usecase.FilterDeleteInput{ID: r.GetParam("id")})
}

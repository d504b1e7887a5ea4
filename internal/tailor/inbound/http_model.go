package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type CredentialsRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"s3cret"`
}

type UserCreateRequest struct {
	Email string `json:"email" example:"jane@example.com"`
	Name  string `json:"name" example:"Jane"`
}

type CredentialsResponse struct {
	Email    string `json:"email" example:"jane@example.com"`
	CumploID string `json:"cumplo_id" example:"1"`
}

// UserResponse never carries the stored Cumplo password.
type UserResponse struct {
	ID          string               `json:"id" example:"0199d0c5-5f0e-7a4b-9d55-3c1c2f0e8a11"`
	Email       string               `json:"email" example:"jane@example.com"`
	Name        string               `json:"name" example:"Jane"`
	APIKey      string               `json:"api_key" example:"AIzaSy..."`
	Credentials *CredentialsResponse `json:"credentials,omitempty"`
	Channels    []entity.Channel     `json:"channels" swaggertype:"array,object"`
	Filters     []entity.Filter      `json:"filters"`
}

func toUserResponse(u entity.User) UserResponse {
	resp := UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		APIKey:   u.APIKey,
		Channels: u.ChannelList(),
		Filters:  u.FilterList(),
	}
	if resp.Channels == nil {
		resp.Channels = []entity.Channel{}
	}
	if resp.Filters == nil {
		resp.Filters = []entity.Filter{}
	}
	if u.Credentials != nil {
		resp.Credentials = &CredentialsResponse{Email: u.Credentials.Email, CumploID: u.Credentials.CumploID}
	}
	return resp
}

type SubscriptionResponse struct {
	HistoryID  uint64    `json:"history_id" example:"912345"`
	Expiration time.Time `json:"expiration" example:"2026-10-21T10:00:00Z"`
}

type PushAckResponse struct {
	MessageID string `json:"message_id" example:"1234567890"`
}

// created answers 201 with data as the payload.
type created struct {
	data any
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "resource has been created" }
func (c created) Payload() any  { return c.data }

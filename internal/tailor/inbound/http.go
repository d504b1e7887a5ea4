package inbound

import (
	"context"

	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"github.com/shandysiswandi/tailor/internal/tailor/usecase"
)

type uc interface {
	ResolveAPIKey(ctx context.Context, apiKey string) (string, error)

	ChannelList(ctx context.Context) ([]entity.Channel, error)
	ChannelGet(ctx context.Context, in usecase.ChannelGetInput) (*entity.Channel, error)
	ChannelCreate(ctx context.Context, in usecase.ChannelCreateInput) (*entity.Channel, error)
	ChannelUpdate(ctx context.Context, in usecase.ChannelUpdateInput) (*entity.Channel, error)
	ChannelDelete(ctx context.Context, in usecase.ChannelDeleteInput) error
	ChannelEventEnable(ctx context.Context, in usecase.ChannelEventInput) error
	ChannelEventDisable(ctx context.Context, in usecase.ChannelEventInput) error

	FilterList(ctx context.Context) ([]entity.Filter, error)
	FilterGet(ctx context.Context, in usecase.FilterGetInput) (*entity.Filter, error)
	FilterCreate(ctx context.Context, in usecase.FilterCreateInput) (*entity.Filter, error)
	FilterUpdate(ctx context.Context, in usecase.FilterUpdateInput) (*entity.Filter, error)
	FilterDelete(ctx context.Context, in usecase.FilterDeleteInput) error

	CredentialsUpsert(ctx context.Context, in usecase.CredentialsUpsertInput) error
	CredentialsDelete(ctx context.Context) error

	Profile(ctx context.Context) (*entity.User, error)
	ProfileDelete(ctx context.Context) error
	ProfileDisable(ctx context.Context) error

	UserList(ctx context.Context) ([]entity.User, error)
	UserGet(ctx context.Context, in usecase.UserGetInput) (*entity.User, error)
	UserCreate(ctx context.Context, in usecase.UserCreateInput) (*entity.User, error)
	UserUpdate(ctx context.Context, in usecase.UserUpdateInput) (*entity.User, error)
	UserDelete(ctx context.Context, in usecase.UserDeleteInput) error
	UserDisable(ctx context.Context, in usecase.UserDeleteInput) error
	UserEnable(ctx context.Context, in usecase.UserDeleteInput) error

	SubscriptionRenew(ctx context.Context) (*entity.MailWatch, error)
	SubscriptionNotify(ctx context.Context, in usecase.SubscriptionNotifyInput) error
}

// PublicRoutes are served without bearer or API-key credentials. Pub/Sub
// push deliveries authenticate with the shared token query parameter.
var PublicRoutes = []string{
	"POST /subscriptions",
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, pushToken string) {
	end := &HTTPEndpoint{uc: uc, pushToken: pushToken}
	key := middlewareAPIKey(uc)

	// End user resources (X-API-Key)
	r.GET("/channels", end.ChannelList, key)
	r.GET("/channels/:id", end.ChannelGet, key)
	r.POST("/channels/:id", end.ChannelCreate, key) // :id is the channel type here
	r.PATCH("/channels/:id", end.ChannelUpdate, key)
	r.DELETE("/channels/:id", end.ChannelDelete, key)
	r.PUT("/channels/:id/events/:event", end.ChannelEventEnable, key)
	r.DELETE("/channels/:id/events/:event", end.ChannelEventDisable, key)

	r.GET("/filters", end.FilterList, key)
	r.GET("/filters/:id", end.FilterGet, key)
	r.POST("/filters", end.FilterCreate, key)
	r.PATCH("/filters/:id", end.FilterUpdate, key)
	r.DELETE("/filters/:id", end.FilterDelete, key)

	r.PUT("/credentials", end.CredentialsUpsert, key)
	r.DELETE("/credentials", end.CredentialsDelete, key)

	r.GET("/users/me", end.Profile, key)
	r.DELETE("/users/me", end.ProfileDelete, key)
	r.PUT("/users/me/disable", end.ProfileDisable, key)

	// Administration (bearer, admin role)
	r.GET("/admin/users", end.UserList)
	r.GET("/admin/users/:id", end.UserGet)
	r.POST("/admin/users", end.UserCreate)
	r.PATCH("/admin/users/:id", end.UserUpdate)
	r.DELETE("/admin/users/:id", end.UserDelete)
	r.PATCH("/admin/users/:id/disable", end.UserDisable)
	r.PATCH("/admin/users/:id/enable", end.UserEnable)

	// Gmail signup subscription
	r.POST("/subscriptions/renew", end.SubscriptionRenew)
	r.POST("/subscriptions", end.SubscriptionPush)
}

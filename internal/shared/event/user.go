package event

// Topics that carry a full user snapshot after a committed mutation. The
// message key is the user id.
const (
	UserChannelsUpdatedDestination    string = "user_channels_updated"
	UserFiltersUpdatedDestination     string = "user_filters_updated"
	UserCredentialsUpdatedDestination string = "user_credentials_updated"
	UserDeletedDestination            string = "user_deleted"
)

// EventTypePrefix prefixes the CloudEvents type of every user event, e.g.
// "cl.cumplo.tailor.user_filters_updated".
const EventTypePrefix string = "cl.cumplo.tailor."

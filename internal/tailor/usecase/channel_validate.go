package usecase

import (
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

var (
	errWhatsAppExists    = goerror.NewBusiness("Only one WhatsApp channel is allowed", goerror.CodeConflict)
	errIFTTTKeyMismatch  = goerror.NewBusiness("Only one IFTTT key is allowed per user", goerror.CodeInvalidFormat)
	errIFTTTEventExists  = goerror.NewBusiness("This IFTTT event already exists", goerror.CodeConflict)
	errMaxWebhooks       = goerror.NewBusiness("Max amount of webhooks reached", goerror.CodeConflict)
	errWebhookURLExists  = goerror.NewBusiness("This webhook URL already exists", goerror.CodeConflict)
	errChannelNotFound   = goerror.NewBusiness("Channel not found", goerror.CodeNotFound)
	errNothingToUpdate   = goerror.NewBusiness("Nothing to update", goerror.CodeInvalidFormat)
	errEventEnabled      = goerror.NewBusiness("Event already enabled", goerror.CodeConflict)
	errEventDisabled     = goerror.NewBusiness("Event already disabled", goerror.CodeConflict)
	errChannelTypeChange = goerror.NewInvalidInput(nil, "type", "channel type cannot change")
)

// validateChannel checks candidate against the other channels of user. The
// candidate's own ID is never compared against itself, so an update of a
// stored channel passes through the same rules as a create.
func validateChannel(user entity.User, candidate entity.Channel, maxWebhooks int) error {
	others := user.OtherChannels(candidate.Type(), candidate.ID)

	switch s := candidate.Settings.(type) {
	case entity.WhatsApp:
		if len(others) > 0 {
			return errWhatsAppExists
		}

	case entity.IFTTT:
		for _, o := range others {
			other := o.Settings.(entity.IFTTT)
			if other.Key != s.Key {
				return errIFTTTKeyMismatch
			}
			if other.Event == s.Event {
				return errIFTTTEventExists
			}
		}

	case entity.Webhook:
		if len(others) >= maxWebhooks {
			return errMaxWebhooks
		}
		for _, o := range others {
			if o.Settings.(entity.Webhook).URL == s.URL {
				return errWebhookURLExists
			}
		}
	}

	return nil
}

package event

// GmailNotificationMessage is the payload Gmail publishes to the watch
// topic whenever the mailbox changes.
type GmailNotificationMessage struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// PubSubPushEnvelope is the body of a Pub/Sub push delivery.
type PubSubPushEnvelope struct {
	Message struct {
		// Data is base64 encoded; encoding/json decodes it into bytes.
		Data        []byte            `json:"data"`
		MessageID   string            `json:"messageId"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		PublishTime string            `json:"publishTime,omitempty"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// EmailAddress is a single address entry in an ACS send payload.
type EmailAddress struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName,omitempty"`
}

// EmailRecipients groups the recipient lists of an ACS send payload.
type EmailRecipients struct {
	To []EmailAddress `json:"to"`
}

// EmailContent is the rendered body of a message.
type EmailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailMessage is the JSON body of an ACS emails:send request.
type EmailMessage struct {
	SenderAddress string          `json:"senderAddress"`
	Recipients    EmailRecipients `json:"recipients"`
	Content       EmailContent    `json:"content"`
	ReplyTo       []EmailAddress  `json:"replyTo,omitempty"`
}

// SigningContext holds the inputs of one request signature. It lives only for the
// duration of a single send and must never be persisted or logged.
type SigningContext struct {
	Method       string
	PathAndQuery string
	Host         string
	Timestamp    string
	ContentHash  string
	Secret       []byte
}

// SignedHeaders are the values attached to an authenticated ACS request.
type SignedHeaders struct {
	Timestamp     string
	ContentHash   string
	Authorization string
}

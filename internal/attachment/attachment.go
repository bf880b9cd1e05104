// Package attachment talks to the remote attachment store. The client wraps
// every transport call in bounded exponential-backoff retry; the service fans
// operations out concurrently across all attachments of one message.
package attachment

import "strings"

// ID identifies an attachment in the remote store. It is the final path
// segment of the attachment's reference URL.
type ID string

// IDFromRef extracts the attachment id from a reference URL.
func IDFromRef(ref string) ID {
	trimmed := strings.TrimSuffix(ref, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return ID(trimmed[idx+1:])
	}
	return ID(trimmed)
}

// Owner is the identity asserted as the rightful controller of an
// attachment. The remote store checks it; the client never does.
type Owner struct {
	NationalID string `json:"eiers_fødselsnummer"`
}

// Attachment is the stored document.
type Attachment struct {
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Owner       *Owner `json:"eier,omitempty"`
}

package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "mobi_"

const (
	TABLE_CHAT_SESSION            = TableName("chat_session")
	TABLE_CHAT_MESSAGE            = TableName("chat_message")
	TABLE_CONTEXT_DATA            = TableName("context_data")
	TABLE_NEWSLETTER_SUBSCRIPTION = TableName("newsletter_subscription")
	TABLE_CONTACT_REQUEST         = TableName("contact_request")
)

// Package notify builds transfer notifications and delivers them through a
// push gateway without blocking the caller.
package notify

import (
	"github.com/ishihatta/HamiotFirebase/internal/directory"
	"github.com/ishihatta/HamiotFirebase/internal/transfer"
)

// MessageType tells the app which side of a transfer the recipient is on.
type MessageType string

const (
	TypeSentAsset    MessageType = "SentAsset"
	TypeReceiveAsset MessageType = "ReceiveAsset"
)

// Message is a notification about a transfer addressed to one device.
type Message struct {
	Type                MessageType
	Amount              string
	OpponentAccountID   string
	OpponentDisplayName string
	Token               string
}

// Push is what a gateway delivers: string data addressed to a device token.
type Push struct {
	Token string            `json:"token"`
	Data  map[string]string `json:"data"`
}

// Push converts the message to its wire form.
func (m Message) Push() Push {
	return Push{
		Token: m.Token,
		Data: map[string]string{
			"type":                string(m.Type),
			"amount":              m.Amount,
			"opponentAccountId":   m.OpponentAccountID,
			"opponentDisplayName": m.OpponentDisplayName,
		},
	}
}

// BuildMessages returns the notifications whose required attributes are all
// present. The receiver needs a token and the sender's display name; the
// sender needs a token and the receiver's display name.
func BuildMessages(params transfer.Parameters, p directory.Parties) []Message {
	var msgs []Message

	if p.DestFcmToken.Present && p.SrcDisplayName.Present {
		msgs = append(msgs, Message{
			Type:                TypeReceiveAsset,
			Amount:              params.Amount,
			OpponentAccountID:   params.SrcAccountID,
			OpponentDisplayName: p.SrcDisplayName.Value,
			Token:               p.DestFcmToken.Value,
		})
	}

	if p.SrcFcmToken.Present && p.DestDisplayName.Present {
		msgs = append(msgs, Message{
			Type:                TypeSentAsset,
			Amount:              params.Amount,
			OpponentAccountID:   params.DestAccountID,
			OpponentDisplayName: p.DestDisplayName.Value,
			Token:               p.SrcFcmToken.Value,
		})
	}

	return msgs
}

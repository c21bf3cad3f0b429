package realtime

import (
	"encoding/json"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
)

const (
	TypeConnectionEstablished = "connection_established"
	TypeHeartbeat             = "heartbeat"
	TypeHeartbeatConfirmed    = "heartbeat_confirmed"
	TypeTicketCreated         = "ticket_created"
	TypeStatusUpdate          = "status_update"
	TypeTurnCreated           = "turn_created"
	TypeTurnCalled            = "turn_called"
	TypeError                 = "error"
)

type inboundMessage struct {
	Type string `json:"type"`
}

type connectionEstablished struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	KioskID   string `json:"kiosk_id,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
}

type heartbeatConfirmed struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type turnEvent struct {
	Type     string      `json:"type"`
	Category string      `json:"category"`
	Ticket   turnTicket  `json:"ticket"`
	Turn     turnDetails `json:"turn"`
	SentAt   time.Time   `json:"sent_at"`
}

type turnTicket struct {
	TicketID string `json:"ticket_id"`
	Code     string `json:"code"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

type turnDetails struct {
	TurnID         string     `json:"turn_id"`
	TurnNumber     int        `json:"turn_number"`
	DisplayMessage string     `json:"display_message"`
	IsCalled       bool       `json:"is_called"`
	CalledAt       *time.Time `json:"called_at,omitempty"`
}

func marshalTurnEvent(eventType, categoryName string, ticket models.Ticket, turn models.TicketTurn) []byte {
	payload, _ := json.Marshal(turnEvent{
		Type:     eventType,
		Category: categoryName,
		Ticket: turnTicket{
			TicketID: ticket.TicketID,
			Code:     ticket.Code,
			Status:   ticket.Status,
			Priority: ticket.Priority,
		},
		Turn: turnDetails{
			TurnID:         turn.TurnID,
			TurnNumber:     turn.TurnNumber,
			DisplayMessage: turn.DisplayMessage,
			IsCalled:       turn.IsCalled,
			CalledAt:       turn.CalledAt,
		},
		SentAt: time.Now().UTC(),
	})
	return payload
}

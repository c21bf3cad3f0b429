package realtime

import (
	"github.com/danielsct56bm/cerro-service/internal/models"
)

// Broadcaster is the pub/sub surface the HTTP layer publishes through;
// hub.Hub implements it, tests substitute a recorder.
type Broadcaster interface {
	Publish(group string, payload []byte)
}

func KioskGroup(kioskID string) string {
	return "kiosk_" + kioskID
}

func TechniciansGroup(companyID string) string {
	return "technicians_" + companyID
}

func DisplayGroup(companyID string) string {
	return "display_" + companyID
}

// Events fans turn lifecycle events out to the technician and display
// groups of a company.
type Events struct {
	broadcaster Broadcaster
}

func NewEvents(broadcaster Broadcaster) *Events {
	return &Events{broadcaster: broadcaster}
}

func (e *Events) TurnCreated(companyID, categoryName string, ticket models.Ticket, turn models.TicketTurn) {
	payload := marshalTurnEvent(TypeTurnCreated, categoryName, ticket, turn)
	e.broadcaster.Publish(TechniciansGroup(companyID), payload)
	e.broadcaster.Publish(DisplayGroup(companyID), payload)
}

func (e *Events) TurnCalled(companyID, categoryName string, ticket models.Ticket, turn models.TicketTurn) {
	payload := marshalTurnEvent(TypeTurnCalled, categoryName, ticket, turn)
	e.broadcaster.Publish(TechniciansGroup(companyID), payload)
	e.broadcaster.Publish(DisplayGroup(companyID), payload)
}

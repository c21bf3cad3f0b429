package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/hub"
	"github.com/danielsct56bm/cerro-service/internal/models"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
)

const (
	closeMissingID    = 4001
	closeUnknownKiosk = 4004
)

// KioskStore is the persistence slice the channels need.
type KioskStore interface {
	GetKiosk(ctx context.Context, kioskID string) (models.Kiosk, error)
	UpdateKioskHeartbeat(ctx context.Context, kioskID string, at time.Time) error
}

// channelSession is the slice of sockjs.Session the serve loops use.
type channelSession interface {
	Request() *http.Request
	Send(msg string) error
	Recv() (string, error)
	Close(status uint32, reason string) error
}

// Channels serves the three sockjs endpoints. The subscriber
// identifier travels as a query parameter on the sockjs handshake
// (the transport owns the path suffix).
type Channels struct {
	hub   *hub.Hub
	store KioskStore
}

func NewChannels(h *hub.Hub, store KioskStore) *Channels {
	return &Channels{hub: h, store: store}
}

func (c *Channels) KioskHandler() http.Handler {
	return sockjs.NewHandler("/ws/kiosk", sockjs.DefaultOptions, func(s sockjs.Session) { c.serveKiosk(s) })
}

func (c *Channels) TechniciansHandler() http.Handler {
	return sockjs.NewHandler("/ws/technicians", sockjs.DefaultOptions, func(s sockjs.Session) { c.serveTechnicians(s) })
}

func (c *Channels) DisplayHandler() http.Handler {
	return sockjs.NewHandler("/ws/display", sockjs.DefaultOptions, func(s sockjs.Session) { c.serveDisplay(s) })
}

func (c *Channels) serveKiosk(session channelSession) {
	kioskID := identifierFromRequest(session.Request(), "kiosk_id")
	if kioskID == "" {
		_ = session.Close(closeMissingID, "missing kiosk id")
		return
	}
	kiosk, err := c.store.GetKiosk(context.Background(), kioskID)
	if err != nil {
		_ = session.Close(closeUnknownKiosk, "unknown kiosk")
		return
	}

	client := hub.NewClient(uuid.NewString(), 16)
	group := KioskGroup(kiosk.KioskID)
	c.hub.Subscribe(group, client)
	defer c.hub.Unsubscribe(group, client)
	go pump(session, client)

	c.sendEstablished(session, connectionEstablished{
		Type:    TypeConnectionEstablished,
		Message: "Connected to kiosk channel",
		KioskID: kiosk.KioskID,
	})

	for {
		msg, err := session.Recv()
		if err != nil {
			return
		}
		if reply := HandleKioskMessage(context.Background(), c.store, kiosk.KioskID, []byte(msg), time.Now().UTC()); reply != nil {
			_ = session.Send(string(reply))
		}
	}
}

func (c *Channels) serveTechnicians(session channelSession) {
	companyID := identifierFromRequest(session.Request(), "company_id")
	if companyID == "" {
		_ = session.Close(closeMissingID, "missing company id")
		return
	}

	client := hub.NewClient(uuid.NewString(), 16)
	group := TechniciansGroup(companyID)
	c.hub.Subscribe(group, client)
	defer c.hub.Unsubscribe(group, client)
	go pump(session, client)

	c.sendEstablished(session, connectionEstablished{
		Type:      TypeConnectionEstablished,
		Message:   "Connected as technician",
		CompanyID: companyID,
	})

	for {
		msg, err := session.Recv()
		if err != nil {
			return
		}
		if reply := HandleTechnicianMessage(companyID, []byte(msg)); reply != nil {
			_ = session.Send(string(reply))
		}
	}
}

func (c *Channels) serveDisplay(session channelSession) {
	companyID := identifierFromRequest(session.Request(), "company_id")
	if companyID == "" {
		_ = session.Close(closeMissingID, "missing company id")
		return
	}

	client := hub.NewClient(uuid.NewString(), 16)
	group := DisplayGroup(companyID)
	c.hub.Subscribe(group, client)
	defer c.hub.Unsubscribe(group, client)
	go pump(session, client)

	c.sendEstablished(session, connectionEstablished{
		Type:      TypeConnectionEstablished,
		Message:   "Connected to turn display",
		CompanyID: companyID,
	})

	// Displays only receive; inbound frames are read to detect close
	// and otherwise dropped.
	for {
		if _, err := session.Recv(); err != nil {
			return
		}
	}
}

// HandleKioskMessage dispatches one inbound kiosk frame and returns
// the reply payload, or nil when no reply is due. Malformed JSON gets
// an error reply; the connection stays open.
func HandleKioskMessage(ctx context.Context, store KioskStore, kioskID string, raw []byte, now time.Time) []byte {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return marshalError("invalid JSON payload")
	}

	switch msg.Type {
	case TypeHeartbeat:
		if err := store.UpdateKioskHeartbeat(ctx, kioskID, now); err != nil {
			log.Printf("kiosk heartbeat kiosk=%s error=%v", kioskID, err)
			return marshalError("heartbeat not recorded")
		}
		payload, _ := json.Marshal(heartbeatConfirmed{
			Type:      TypeHeartbeatConfirmed,
			Timestamp: now.Format(time.RFC3339),
		})
		return payload
	case TypeTicketCreated:
		log.Printf("kiosk ticket_created kiosk=%s", kioskID)
		return nil
	case TypeStatusUpdate:
		log.Printf("kiosk status_update kiosk=%s", kioskID)
		return nil
	default:
		return nil
	}
}

// HandleTechnicianMessage dispatches one inbound technician frame.
func HandleTechnicianMessage(companyID string, raw []byte) []byte {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return marshalError("invalid JSON payload")
	}
	if msg.Type == TypeStatusUpdate {
		log.Printf("technician status_update company=%s", companyID)
	}
	return nil
}

func marshalError(message string) []byte {
	payload, _ := json.Marshal(errorMessage{Type: TypeError, Message: message})
	return payload
}

func (c *Channels) sendEstablished(session channelSession, msg connectionEstablished) {
	payload, _ := json.Marshal(msg)
	_ = session.Send(string(payload))
}

func pump(session channelSession, client *hub.Client) {
	for msg := range client.Send {
		_ = session.Send(string(msg))
	}
}

func identifierFromRequest(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get(key))
}

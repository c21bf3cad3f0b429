package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/hub"
	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

type fakeKioskStore struct {
	getFn       func(ctx context.Context, kioskID string) (models.Kiosk, error)
	heartbeatFn func(ctx context.Context, kioskID string, at time.Time) error
}

func (f fakeKioskStore) GetKiosk(ctx context.Context, kioskID string) (models.Kiosk, error) {
	if f.getFn == nil {
		return models.Kiosk{KioskID: kioskID}, nil
	}
	return f.getFn(ctx, kioskID)
}

func (f fakeKioskStore) UpdateKioskHeartbeat(ctx context.Context, kioskID string, at time.Time) error {
	if f.heartbeatFn == nil {
		return nil
	}
	return f.heartbeatFn(ctx, kioskID, at)
}

func TestHandleKioskMessageHeartbeat(t *testing.T) {
	var gotKiosk string
	var gotAt time.Time
	store := fakeKioskStore{heartbeatFn: func(_ context.Context, kioskID string, at time.Time) error {
		gotKiosk = kioskID
		gotAt = at
		return nil
	}}

	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	reply := HandleKioskMessage(context.Background(), store, "k1", []byte(`{"type":"heartbeat"}`), now)
	if reply == nil {
		t.Fatal("expected heartbeat_confirmed reply")
	}
	if gotKiosk != "k1" || !gotAt.Equal(now) {
		t.Fatalf("heartbeat persisted kiosk=%s at=%v", gotKiosk, gotAt)
	}

	var confirmed heartbeatConfirmed
	if err := json.Unmarshal(reply, &confirmed); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if confirmed.Type != TypeHeartbeatConfirmed {
		t.Fatalf("reply type %q", confirmed.Type)
	}
	if confirmed.Timestamp != now.Format(time.RFC3339) {
		t.Fatalf("reply timestamp %q", confirmed.Timestamp)
	}
}

func TestHandleKioskMessageHeartbeatStoreError(t *testing.T) {
	store := fakeKioskStore{heartbeatFn: func(context.Context, string, time.Time) error {
		return errors.New("db down")
	}}
	reply := HandleKioskMessage(context.Background(), store, "k1", []byte(`{"type":"heartbeat"}`), time.Now())
	var msg errorMessage
	if err := json.Unmarshal(reply, &msg); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if msg.Type != TypeError {
		t.Fatalf("expected error reply, got %q", msg.Type)
	}
}

func TestHandleKioskMessageMalformedJSON(t *testing.T) {
	reply := HandleKioskMessage(context.Background(), fakeKioskStore{}, "k1", []byte("{not json"), time.Now())
	var msg errorMessage
	if err := json.Unmarshal(reply, &msg); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if msg.Type != TypeError || msg.Message == "" {
		t.Fatalf("unexpected reply %+v", msg)
	}
}

func TestHandleKioskMessageSilentTypes(t *testing.T) {
	for _, raw := range []string{
		`{"type":"ticket_created","code":"20260601-AAAA"}`,
		`{"type":"status_update","state":"idle"}`,
		`{"type":"something_else"}`,
	} {
		if reply := HandleKioskMessage(context.Background(), fakeKioskStore{}, "k1", []byte(raw), time.Now()); reply != nil {
			t.Fatalf("expected no reply for %s, got %s", raw, reply)
		}
	}
}

func TestHandleTechnicianMessage(t *testing.T) {
	if reply := HandleTechnicianMessage("c1", []byte(`{"type":"status_update"}`)); reply != nil {
		t.Fatalf("expected no reply, got %s", reply)
	}
	reply := HandleTechnicianMessage("c1", []byte("oops"))
	var msg errorMessage
	if err := json.Unmarshal(reply, &msg); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if msg.Type != TypeError {
		t.Fatalf("expected error reply, got %q", msg.Type)
	}
}

// fakeSession scripts the inbound side of a channel connection and
// records everything sent or closed on it.
type fakeSession struct {
	mu      sync.Mutex
	url     string
	inbound []string

	sent       []string
	closeCode  uint32
	closeValue string
	closed     bool
}

func (s *fakeSession) Request() *http.Request {
	return httptest.NewRequest(http.MethodGet, s.url, nil)
}

func (s *fakeSession) Send(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSession) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inbound) == 0 {
		return "", io.EOF
	}
	msg := s.inbound[0]
	s.inbound = s.inbound[1:]
	return msg, nil
}

func (s *fakeSession) Close(status uint32, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closeCode = status
	s.closeValue = reason
	return nil
}

func (s *fakeSession) sentMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func TestServeKioskClosesOnMissingID(t *testing.T) {
	channels := NewChannels(hub.New(), fakeKioskStore{})
	session := &fakeSession{url: "/ws/kiosk/123/abc/websocket"}

	channels.serveKiosk(session)

	if !session.closed || session.closeCode != closeMissingID {
		t.Fatalf("expected close %d, got closed=%v code=%d", closeMissingID, session.closed, session.closeCode)
	}
	if len(session.sentMessages()) != 0 {
		t.Fatalf("expected nothing sent, got %v", session.sentMessages())
	}
}

func TestServeKioskClosesOnUnknownKiosk(t *testing.T) {
	kioskStore := fakeKioskStore{getFn: func(context.Context, string) (models.Kiosk, error) {
		return models.Kiosk{}, store.ErrKioskNotFound
	}}
	channels := NewChannels(hub.New(), kioskStore)
	session := &fakeSession{url: "/ws/kiosk/123/abc/websocket?kiosk_id=nope"}

	channels.serveKiosk(session)

	if !session.closed || session.closeCode != closeUnknownKiosk {
		t.Fatalf("expected close %d, got closed=%v code=%d", closeUnknownKiosk, session.closed, session.closeCode)
	}
}

func TestServeKioskEstablishesAndHandlesMessages(t *testing.T) {
	h := hub.New()
	channels := NewChannels(h, fakeKioskStore{})
	session := &fakeSession{
		url:     "/ws/kiosk/123/abc/websocket?kiosk_id=k1",
		inbound: []string{`{"type":"heartbeat"}`},
	}

	channels.serveKiosk(session)

	if session.closed {
		t.Fatalf("connection closed with code %d", session.closeCode)
	}
	sent := session.sentMessages()
	if len(sent) != 2 {
		t.Fatalf("expected established + heartbeat reply, got %v", sent)
	}
	var established connectionEstablished
	if err := json.Unmarshal([]byte(sent[0]), &established); err != nil {
		t.Fatalf("unmarshal established: %v", err)
	}
	if established.Type != TypeConnectionEstablished || established.KioskID != "k1" {
		t.Fatalf("established payload %+v", established)
	}
	var confirmed heartbeatConfirmed
	if err := json.Unmarshal([]byte(sent[1]), &confirmed); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if confirmed.Type != TypeHeartbeatConfirmed {
		t.Fatalf("reply type %q", confirmed.Type)
	}
	if h.GroupSize(KioskGroup("k1")) != 0 {
		t.Fatal("expected unsubscribe after the receive loop ends")
	}
}

func TestServeTechniciansClosesOnMissingCompanyID(t *testing.T) {
	channels := NewChannels(hub.New(), fakeKioskStore{})
	session := &fakeSession{url: "/ws/technicians/123/abc/websocket"}

	channels.serveTechnicians(session)

	if !session.closed || session.closeCode != closeMissingID {
		t.Fatalf("expected close %d, got closed=%v code=%d", closeMissingID, session.closed, session.closeCode)
	}
}

func TestServeDisplayEstablishesAndUnsubscribes(t *testing.T) {
	h := hub.New()
	channels := NewChannels(h, fakeKioskStore{})
	session := &fakeSession{url: "/ws/display/123/abc/websocket?company_id=c1"}

	channels.serveDisplay(session)

	sent := session.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected established message, got %v", sent)
	}
	var established connectionEstablished
	if err := json.Unmarshal([]byte(sent[0]), &established); err != nil {
		t.Fatalf("unmarshal established: %v", err)
	}
	if established.CompanyID != "c1" {
		t.Fatalf("established payload %+v", established)
	}
	if h.GroupSize(DisplayGroup("c1")) != 0 {
		t.Fatal("expected unsubscribe after the receive loop ends")
	}
}

func TestEventsFanOutToBothGroups(t *testing.T) {
	h := hub.New()
	tech := hub.NewClient("tech", 4)
	display := hub.NewClient("display", 4)
	kiosk := hub.NewClient("kiosk", 4)
	h.Subscribe(TechniciansGroup("c1"), tech)
	h.Subscribe(DisplayGroup("c1"), display)
	h.Subscribe(KioskGroup("k1"), kiosk)

	events := NewEvents(h)
	ticket := models.Ticket{TicketID: "t1", Code: "20260601-AB12", Status: models.StatusOpen, Priority: models.PriorityNormal}
	turn := models.TicketTurn{TurnID: "turn1", TicketID: "t1", TurnNumber: 3, DisplayMessage: "Turn 003 - Printers"}
	events.TurnCreated("c1", "Printers", ticket, turn)

	for _, c := range []*hub.Client{tech, display} {
		select {
		case payload := <-c.Send:
			var event turnEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			if event.Type != TypeTurnCreated {
				t.Fatalf("event type %q", event.Type)
			}
			if event.Turn.TurnNumber != 3 || event.Turn.DisplayMessage != "Turn 003 - Printers" {
				t.Fatalf("turn payload %+v", event.Turn)
			}
			if event.Category != "Printers" || event.Ticket.Code != "20260601-AB12" {
				t.Fatalf("event payload %+v", event)
			}
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}

	select {
	case payload := <-kiosk.Send:
		t.Fatalf("kiosk group received turn event %s", payload)
	default:
	}
}

func TestGroupNames(t *testing.T) {
	if KioskGroup("7") != "kiosk_7" {
		t.Fatalf("kiosk group %q", KioskGroup("7"))
	}
	if TechniciansGroup("9") != "technicians_9" {
		t.Fatalf("technicians group %q", TechniciansGroup("9"))
	}
	if DisplayGroup("9") != "display_9" {
		t.Fatalf("display group %q", DisplayGroup("9"))
	}
}

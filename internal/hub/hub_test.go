package hub

import "testing"

func recvOrNil(c *Client) []byte {
	select {
	case msg := <-c.Send:
		return msg
	default:
		return nil
	}
}

func TestPublishReachesGroupMembers(t *testing.T) {
	h := New()
	a := NewClient("a", 4)
	b := NewClient("b", 4)
	other := NewClient("c", 4)
	h.Subscribe("display_1", a)
	h.Subscribe("display_1", b)
	h.Subscribe("display_2", other)

	h.Publish("display_1", []byte("turn"))

	if got := recvOrNil(a); string(got) != "turn" {
		t.Fatalf("client a got %q", got)
	}
	if got := recvOrNil(b); string(got) != "turn" {
		t.Fatalf("client b got %q", got)
	}
	if got := recvOrNil(other); got != nil {
		t.Fatalf("client in other group got %q", got)
	}
}

func TestLateJoinerMissesEarlierEvents(t *testing.T) {
	h := New()
	h.Publish("display_1", []byte("before"))

	late := NewClient("late", 4)
	h.Subscribe("display_1", late)
	if got := recvOrNil(late); got != nil {
		t.Fatalf("late joiner received replayed event %q", got)
	}

	h.Publish("display_1", []byte("after"))
	if got := recvOrNil(late); string(got) != "after" {
		t.Fatalf("late joiner missed live event, got %q", got)
	}
}

func TestUnsubscribeStopsDeliveryAndClosesSend(t *testing.T) {
	h := New()
	c := NewClient("a", 4)
	h.Subscribe("technicians_1", c)
	h.Unsubscribe("technicians_1", c)

	h.Publish("technicians_1", []byte("event"))
	if h.GroupSize("technicians_1") != 0 {
		t.Fatal("group membership leaked after unsubscribe")
	}
	if _, open := <-c.Send; open {
		t.Fatal("expected Send closed after last unsubscribe")
	}
}

func TestUnsubscribeKeepsSendOpenWhileInOtherGroups(t *testing.T) {
	h := New()
	c := NewClient("a", 4)
	h.Subscribe("kiosk_1", c)
	h.Subscribe("technicians_1", c)

	h.Unsubscribe("kiosk_1", c)
	h.Publish("technicians_1", []byte("still here"))
	if got := recvOrNil(c); string(got) != "still here" {
		t.Fatalf("expected delivery via remaining group, got %q", got)
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	h := New()
	c := NewClient("slow", 1)
	h.Subscribe("display_1", c)

	h.Publish("display_1", []byte("one"))
	h.Publish("display_1", []byte("two"))

	if got := recvOrNil(c); string(got) != "one" {
		t.Fatalf("expected first message kept, got %q", got)
	}
	if got := recvOrNil(c); got != nil {
		t.Fatalf("expected overflow dropped, got %q", got)
	}
}

func TestUnsubscribeUnknownGroupIsNoop(t *testing.T) {
	h := New()
	c := NewClient("a", 4)
	h.Unsubscribe("missing", c)
	h.Subscribe("g", c)
	h.Unsubscribe("g", c)
	h.Unsubscribe("g", c)
}

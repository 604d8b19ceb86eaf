package store

import "testing"

func newTestClient(s *Store, fd int) *Client {
	c := NewClient(fd, "127.0.0.1", func(string) error { return nil })
	s.AddClient(c)
	return c
}

func TestJoinThenPartReturnsToPreJoinState(t *testing.T) {
	s := New()
	c := newTestClient(s, 1)
	s.SetNick(c, "alice")
	c.User = "alice"
	c.Authenticated = true
	c.RecomputeRegistered()

	if _, ok := s.ChannelByName("#x"); ok {
		t.Fatalf("channel should not exist yet")
	}

	ch := s.CreateChannel("#x")
	ch.AddMember(c)
	ch.SetOperator(c, true)

	if !ch.HasMember(c) || !ch.IsOperator(c) {
		t.Fatalf("expected membership and operator status after join")
	}

	ch.RemoveMember(c)
	s.RemoveChannelIfEmpty(ch)

	if _, ok := s.ChannelByName("#x"); ok {
		t.Fatalf("empty channel should have been removed")
	}
}

func TestNicknameLookupIsCaseSensitive(t *testing.T) {
	s := New()
	a := newTestClient(s, 1)
	b := newTestClient(s, 2)
	s.SetNick(a, "bob")

	if _, ok := s.ClientByNick("bob"); !ok {
		t.Fatalf("expected to find bob")
	}
	if _, ok := s.ClientByNick("BOB"); ok {
		t.Fatalf("nickname lookup must be case-sensitive")
	}
	_ = b
}

func TestRemoveClientPrunesChannelMembership(t *testing.T) {
	s := New()
	a := newTestClient(s, 1)
	b := newTestClient(s, 2)
	s.SetNick(a, "alice")
	s.SetNick(b, "bob")

	ch := s.CreateChannel("#x")
	ch.AddMember(a)
	ch.AddMember(b)

	affected := s.RemoveClient(a)
	if len(affected) != 1 || affected[0] != ch {
		t.Fatalf("expected #x to be reported as affected")
	}
	if ch.HasMember(a) {
		t.Fatalf("a should no longer be a member")
	}
	if ch.MemberCount() != 1 {
		t.Fatalf("expected one remaining member, got %d", ch.MemberCount())
	}

	s.RemoveClient(b)
	if _, ok := s.ChannelByName("#x"); ok {
		t.Fatalf("channel should be gone once empty")
	}
}

func TestValidNicknameAndChannelName(t *testing.T) {
	valid := []string{"alice", "_bob", "[nick]", "a-b_c99"}
	for _, n := range valid {
		if !ValidNickname(n) {
			t.Errorf("expected %q to be a valid nickname", n)
		}
	}
	invalid := []string{"", "9alice", "nick name", string(make([]byte, 31))}
	for _, n := range invalid {
		if ValidNickname(n) {
			t.Errorf("expected %q to be an invalid nickname", n)
		}
	}

	if !ValidChannelName("#general") {
		t.Errorf("#general should be valid")
	}
	for _, n := range []string{"general", "#", "#has space", "#has,comma"} {
		if ValidChannelName(n) {
			t.Errorf("expected %q to be an invalid channel name", n)
		}
	}
}

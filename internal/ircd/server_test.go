package ircd_test

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ircserv/internal/config"
	"ircserv/internal/ircd"
)

// testClient is a minimal IRC dial-and-expect harness over a real TCP
// connection to a running Server.
type testClient struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err, "should connect to the server")
	return &testClient{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *testClient) send(line string) {
	_, _ = c.conn.Write([]byte(line + "\r\n"))
}

// expect reads lines until one contains want, or the deadline passes.
func (c *testClient) expect(t *testing.T, want string, timeout time.Duration) string {
	t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	defer c.conn.SetReadDeadline(time.Time{})
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.Contains(line, want) {
			return line
		}
	}
}

func (c *testClient) close() { _ = c.conn.Close() }

func startTestServer(t *testing.T) *ircd.Server {
	t.Helper()
	srv := ircd.New(ircd.Config{
		Password: "right",
		Bans:     config.NewBanList(nil),
		Log:      zerolog.Nop(),
	})
	require.NoError(t, srv.Listen(0))
	go func() { _ = srv.Run() }()
	t.Cleanup(func() {
		srv.RequestShutdown()
		time.Sleep(1100 * time.Millisecond)
	})
	// give the loop a moment to start polling before any client dials
	time.Sleep(50 * time.Millisecond)
	return srv
}

func addrOf(srv *ircd.Server) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(srv.Port()))
}

func register(t *testing.T, c *testClient, nick string) {
	t.Helper()
	c.send("PASS right")
	c.send("NICK " + nick)
	c.send("USER " + nick + " 0 * :" + nick + " Real Name")
	c.expect(t, " 001 "+nick+" ", 2*time.Second)
}

func TestWrongThenRightPassword(t *testing.T) {
	srv := startTestServer(t)
	c := dial(t, addrOf(srv))
	defer c.close()

	c.send("PASS wrong")
	c.expect(t, " 464 ", 2*time.Second)

	c.send("PASS right")
	c.send("NICK a")
	c.send("USER a 0 * :A")
	c.expect(t, " 001 ", 2*time.Second)
	c.expect(t, " 002 ", 2*time.Second)
	c.expect(t, " 003 ", 2*time.Second)
	c.expect(t, " 004 ", 2*time.Second)
}

func TestCaseSensitiveCommandUnknown(t *testing.T) {
	srv := startTestServer(t)
	c := dial(t, addrOf(srv))
	defer c.close()

	register(t, c, "alice")
	c.send("join #x")
	line := c.expect(t, " 421 ", 2*time.Second)
	assert.Contains(t, line, "join")
}

func TestNicknameCollision(t *testing.T) {
	srv := startTestServer(t)
	a := dial(t, addrOf(srv))
	defer a.close()
	register(t, a, "bob")

	b := dial(t, addrOf(srv))
	defer b.close()
	b.send("PASS right")
	b.send("NICK bob")
	line := b.expect(t, " 433 ", 2*time.Second)
	assert.Contains(t, line, "bob")
}

func TestInviteOnlyBypass(t *testing.T) {
	srv := startTestServer(t)
	op := dial(t, addrOf(srv))
	defer op.close()
	register(t, op, "opguy")

	op.send("JOIN #p")
	op.expect(t, " 353 ", 2*time.Second)
	op.expect(t, " 366 ", 2*time.Second)

	op.send("MODE #p +i")

	carol := dial(t, addrOf(srv))
	defer carol.close()
	register(t, carol, "carol")

	op.send("INVITE carol #p")
	carol.expect(t, "INVITE", 2*time.Second)

	carol.send("JOIN #p")
	carol.expect(t, " 353 ", 2*time.Second)
	carol.expect(t, " 366 ", 2*time.Second)
}

func TestKickPermissionDenied(t *testing.T) {
	srv := startTestServer(t)
	op := dial(t, addrOf(srv))
	defer op.close()
	register(t, op, "owner")
	op.send("JOIN #q")
	op.expect(t, " 366 ", 2*time.Second)

	carol := dial(t, addrOf(srv))
	defer carol.close()
	register(t, carol, "carol2")
	carol.send("JOIN #q")
	carol.expect(t, " 366 ", 2*time.Second)

	other := dial(t, addrOf(srv))
	defer other.close()
	register(t, other, "mallory")
	other.send("JOIN #q")
	other.expect(t, " 366 ", 2*time.Second)

	other.send("KICK #q carol2")
	line := other.expect(t, " 482 ", 2*time.Second)
	assert.Contains(t, line, "#q")
}

func TestEmptyChannelCollection(t *testing.T) {
	srv := startTestServer(t)
	c := dial(t, addrOf(srv))
	defer c.close()
	register(t, c, "lonely")
	c.send("JOIN #r")
	c.expect(t, " 366 ", 2*time.Second)

	c.send("PART #r")

	c2 := dial(t, addrOf(srv))
	defer c2.close()
	register(t, c2, "checker")
	c2.send("MODE #r")
	line := c2.expect(t, " 403 ", 2*time.Second)
	assert.Contains(t, line, "#r")
}

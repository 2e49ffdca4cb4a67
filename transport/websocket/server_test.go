package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
)

const testCookie = "ttt_session"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(ctx, time.Hour))
	conf := &config.Config{Session: config.Session{CookieName: testCookie, TTL: time.Hour}}

	restServer := rest.New(logger, conf, manager)
	restServer.Handle("/ws", New(ctx, logger, manager).Handle)

	srv := httptest.NewServer(restServer)
	t.Cleanup(srv.Close)

	return srv
}

// sessionCookie - what a browser holds after loading the page.
func sessionCookie(t *testing.T, srv *httptest.Server) *http.Cookie {
	t.Helper()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == testCookie {
			return cookie
		}
	}

	t.Fatal("no session cookie issued")
	return nil
}

func dial(t *testing.T, srv *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set("Cookie", cookie.String())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.CloseNow()
	})

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload *Payload) {
	t.Helper()

	msg := Message{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, msg))
}

// receive - reads until a message with the wanted action arrives.
func receive(t *testing.T, conn *websocket.Conn, action string) Payload {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		var msg Message
		require.NoError(t, wsjson.Read(ctx, conn, &msg))

		if msg.Action != action {
			continue
		}

		var payload Payload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))

		return payload
	}
}

func cell(i int) *Payload {
	return &Payload{Cell: &i}
}

func TestServer_GameState(t *testing.T) {
	// Given: a connected browser
	srv := newTestServer(t)
	conn := dial(t, srv, sessionCookie(t, srv))

	// When: it asks for the state
	send(t, conn, actionGameState, nil)

	// Then: an empty board with X to move comes back
	payload := receive(t, conn, actionGameState)
	require.NotNil(t, payload.Board)
	assert.Equal(t, "Next: X", payload.Board.Status)
	assert.Len(t, payload.Board.Cells, 9)
}

func TestServer_GameTurn(t *testing.T) {
	t.Run("Moves alternate and X wins on the top row", func(t *testing.T) {
		// Given: a connected browser
		srv := newTestServer(t)
		conn := dial(t, srv, sessionCookie(t, srv))

		// When: 0,3,1,4,2 are played
		var board *view.Board
		for _, i := range []int{0, 3, 1, 4, 2} {
			send(t, conn, actionGameTurn, cell(i))
			board = receive(t, conn, actionGameTurn).Board
		}

		// Then: X is the winner
		require.NotNil(t, board)
		assert.Equal(t, "Winner: X", board.Status)
		assert.Equal(t, entity.PlayerX, board.Winner)
	})

	t.Run("Occupied cell answers with the unchanged board", func(t *testing.T) {
		// Given: X on cell 4
		srv := newTestServer(t)
		conn := dial(t, srv, sessionCookie(t, srv))
		send(t, conn, actionGameTurn, cell(4))
		before := receive(t, conn, actionGameTurn).Board

		// When: cell 4 is sent again
		send(t, conn, actionGameTurn, cell(4))
		after := receive(t, conn, actionGameTurn).Board

		// Then: nothing changed
		assert.Equal(t, before, after)
	})

	t.Run("Missing cell is an error message", func(t *testing.T) {
		// Given: a connected browser
		srv := newTestServer(t)
		conn := dial(t, srv, sessionCookie(t, srv))

		// When: a turn without a cell is sent
		send(t, conn, actionGameTurn, &Payload{})

		// Then: an error comes back
		payload := receive(t, conn, actionError)
		assert.Contains(t, payload.Message, ErrCellRequired.Error())
	})
}

func TestServer_UnknownAction(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, sessionCookie(t, srv))

	send(t, conn, "game:fly", nil)

	payload := receive(t, conn, actionError)
	assert.Contains(t, payload.Message, "game:fly")
}

func TestServer_PushesToOtherTabs(t *testing.T) {
	// Given: two tabs of the same session
	srv := newTestServer(t)
	cookie := sessionCookie(t, srv)
	first := dial(t, srv, cookie)
	second := dial(t, srv, cookie)

	// make sure both sockets are subscribed before playing
	send(t, first, actionGameState, nil)
	receive(t, first, actionGameState)
	send(t, second, actionGameState, nil)
	receive(t, second, actionGameState)

	// When: the first tab plays and then restarts
	send(t, first, actionGameTurn, cell(8))
	pushed := receive(t, second, actionGameUpdate).Board

	// Then: the second tab sees the move
	require.NotNil(t, pushed)
	assert.Equal(t, entity.PlayerX, pushed.Cells[8].Mark)
	assert.Equal(t, "Next: O", pushed.Status)

	send(t, first, actionGameRestart, nil)
	pushed = receive(t, second, actionGameUpdate).Board
	assert.Equal(t, "Next: X", pushed.Status)
}

func TestServer_CloseStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Client closed normally", func(t *testing.T) {
		status, _, ok := New(context.Background(), logger, nil).closeStatus(nil)

		assert.True(t, ok)
		assert.Equal(t, websocket.StatusNormalClosure, status)
	})

	t.Run("Lost update stream while the server runs is an internal error", func(t *testing.T) {
		// Given: a running server
		server := New(context.Background(), logger, nil)

		// When: the connection context was cancelled by a failed push
		status, _, ok := server.closeStatus(context.Canceled)

		// Then: the socket is not reported as a shutdown
		assert.True(t, ok)
		assert.Equal(t, websocket.StatusInternalError, status)
	})

	t.Run("Server shutdown is going away", func(t *testing.T) {
		// Given: a stopped server
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		server := New(ctx, logger, nil)

		// When: the read loop ends
		status, reason, ok := server.closeStatus(context.Canceled)

		// Then: the client is told the server is going away
		assert.True(t, ok)
		assert.Equal(t, websocket.StatusGoingAway, status)
		assert.Equal(t, "server shutting down", reason)
	})

	t.Run("Broken connections are not closed gracefully", func(t *testing.T) {
		_, _, ok := New(context.Background(), logger, nil).closeStatus(io.ErrUnexpectedEOF)

		assert.False(t, ok)
	})
}

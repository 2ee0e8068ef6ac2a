package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
)

// newEmptyServer creates a Server over an engine with no entries.
func newEmptyServer() *Server {
	engine := analyzer.NewEngine(&memSource{})
	return NewServer(engine, "tester", "test", zerolog.Nop())
}

// session drives a running Server over in-memory pipes.
type session struct {
	t      *testing.T
	in     *io.PipeWriter
	out    *bufio.Reader
	cancel context.CancelFunc
	done   chan error
}

func startSession(t *testing.T, s *Server) *session {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	sess := &session{t: t, in: inW, out: bufio.NewReader(outR), cancel: cancel, done: make(chan error, 1)}
	go func() { sess.done <- s.Run(ctx, inR, outW) }()

	t.Cleanup(func() {
		cancel()
		_ = inW.Close()
		_ = outR.Close()
	})
	return sess
}

// send writes one request line.
func (s *session) send(line string) {
	s.t.Helper()
	_, err := io.WriteString(s.in, line+"\n")
	require.NoError(s.t, err)
}

// roundTrip sends a request and returns the raw response line.
func (s *session) roundTrip(line string) string {
	s.t.Helper()
	s.send(line)
	resp, err := s.out.ReadString('\n')
	require.NoError(s.t, err)
	return strings.TrimSuffix(resp, "\n")
}

// wait returns Run's result or fails after a timeout.
func (s *session) wait() error {
	s.t.Helper()
	select {
	case err := <-s.done:
		return err
	case <-time.After(2 * time.Second):
		s.t.Fatal("Run did not return")
		return nil
	}
}

func TestRun_Initialize(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	var parsed struct {
		Result struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp), &parsed), resp)
	assert.Equal(t, protocolVersion, parsed.Result.ProtocolVersion)
	assert.Equal(t, "mindlens", parsed.Result.ServerInfo.Name)
	assert.Equal(t, "test", parsed.Result.ServerInfo.Version)
}

func TestRun_ToolsListIncludesLateRegistrations(t *testing.T) {
	s := newEmptyServer()
	s.registerTool(toolDef{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(context.Context, json.RawMessage) (any, error) {
			return map[string]string{"ok": "true"}, nil
		},
	})

	sess := startSession(t, s)
	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	var parsed struct {
		Result struct {
			Tools []toolListEntry `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp), &parsed), resp)
	require.Len(t, parsed.Result.Tools, 9)
	assert.Equal(t, "test_tool", parsed.Result.Tools[8].Name)
	for _, tool := range parsed.Result.Tools {
		assert.NotEmpty(t, tool.Name)
		assert.True(t, json.Valid(tool.InputSchema), "schema of %s", tool.Name)
	}
}

func TestRegisterTool_ReplacesByName(t *testing.T) {
	s := newEmptyServer()
	n := len(s.tools)
	s.registerTool(toolDef{
		Name:        "get_writing_streak",
		InputSchema: json.RawMessage(`{}`),
		Handler: func(context.Context, json.RawMessage) (any, error) {
			return StreakResult{UserID: "x", Streak: 42}, nil
		},
	})
	assert.Len(t, s.tools, n)

	res := s.callTool(context.Background(), toolsCallParams{Name: "get_writing_streak"})
	require.Len(t, res.Content, 1)
	assert.Contains(t, res.Content[0].Text, `"streak":42`)
}

func TestRun_UnknownMethod(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":3,"method":"nonexistent/method"}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"Method not found"}}`, resp)
}

func TestRun_ParseError(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	resp := sess.roundTrip(`{not json`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"}}`, resp)
}

func TestRun_InvalidCallParams(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":"oops"}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":4,"error":{"code":-32602,"message":"Invalid params"}}`, resp)
}

func TestRun_ToolsCall(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"get_writing_streak"}}`)

	var parsed struct {
		Result toolsCallResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp), &parsed), resp)
	assert.False(t, parsed.Result.IsError)
	require.Len(t, parsed.Result.Content, 1)
	assert.Equal(t, "text", parsed.Result.Content[0].Type)
	assert.JSONEq(t, `{"user_id":"tester","streak":0}`, parsed.Result.Content[0].Text)
}

func TestRun_ToolErrorsAreResults(t *testing.T) {
	sess := startSession(t, newEmptyServer())

	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"nope"}}`)
	assert.Contains(t, resp, `"isError":true`)
	assert.Contains(t, resp, "unknown tool: nope")

	resp = sess.roundTrip(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_mood_trend","arguments":{"days":-3}}}`)
	assert.Contains(t, resp, `"isError":true`)
	assert.NotContains(t, resp, `"error":`)
}

func TestRun_Ping(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":8,"method":"ping"}`)
	assert.Equal(t, `{"jsonrpc":"2.0","id":8,"result":{}}`, resp)
}

func TestRun_NotificationGetsNoReply(t *testing.T) {
	sess := startSession(t, newEmptyServer())

	// The ping answer must be the first line written.
	sess.send(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	resp := sess.roundTrip(`{"jsonrpc":"2.0","id":9,"method":"ping"}`)
	assert.Equal(t, `{"jsonrpc":"2.0","id":9,"result":{}}`, resp)
}

func TestRun_ContextCancel(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	sess.cancel()
	assert.NoError(t, sess.wait())
}

func TestRun_EOFClean(t *testing.T) {
	sess := startSession(t, newEmptyServer())
	_ = sess.in.Close()
	assert.NoError(t, sess.wait())
}

func TestRun_OversizedLine(t *testing.T) {
	s := newEmptyServer()
	err := s.Run(context.Background(), strings.NewReader(strings.Repeat("x", maxLineBytes+1)+"\n"), io.Discard)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/buger/jsonparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTools() []Tool {
	return []Tool{
		{
			Name:        "echo",
			Description: "Echo the text argument back",
			InputSchema: map[string]any{"type": "object"},
			Handler: func(ctx context.Context, arguments json.RawMessage) (string, error) {
				text, err := jsonparser.GetString(arguments, "text")
				if err != nil {
					return "", fmt.Errorf("missing text argument")
				}
				return "echo: " + text, nil
			},
		},
		{
			Name:        "whoami",
			Description: "Report a fixed identity",
			InputSchema: map[string]any{"type": "object"},
			ReadOnly:    true,
			Handler: func(ctx context.Context, arguments json.RawMessage) (string, error) {
				return "tester", nil
			},
		},
		{
			Name:        "flaky",
			Description: "Fail after partial output",
			InputSchema: map[string]any{"type": "object"},
			Handler: func(ctx context.Context, arguments json.RawMessage) (string, error) {
				return "posted 2/4", errors.New("tweet 3 of 4 failed: boom")
			},
		},
	}
}

const initializeLine = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test-client"}}}`

// runSession feeds newline-delimited requests through the server and
// returns one decoded response per output line.
func runSession(t *testing.T, lines ...string) []map[string]any {
	t.Helper()
	server := NewServer("testserver", "0.1.0", "test instructions", testTools())

	var output bytes.Buffer
	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, server.Run(context.Background(), input, &output))

	var responses []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &decoded))
		responses = append(responses, decoded)
	}
	return responses
}

func errorCode(t *testing.T, resp map[string]any) float64 {
	t.Helper()
	errObj, ok := resp["error"].(map[string]any)
	require.True(t, ok, "expected an error response, got %v", resp)
	return errObj["code"].(float64)
}

func TestInitialize(t *testing.T) {
	responses := runSession(t, initializeLine)
	require.Len(t, responses, 1)

	resp := responses[0]
	assert.Equal(t, "2.0", resp["jsonrpc"])
	assert.Equal(t, float64(1), resp["id"])

	result := resp["result"].(map[string]any)
	assert.Equal(t, "2025-06-18", result["protocolVersion"])
	assert.Equal(t, "test instructions", result["instructions"])

	info := result["serverInfo"].(map[string]any)
	assert.Equal(t, "testserver", info["name"])
	assert.Equal(t, "0.1.0", info["version"])

	capabilities := result["capabilities"].(map[string]any)
	_, hasTools := capabilities["tools"]
	assert.True(t, hasTools)
}

func TestPing(t *testing.T) {
	responses := runSession(t, `{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	require.Len(t, responses, 1)
	assert.Equal(t, float64(7), responses[0]["id"])
	assert.NotNil(t, responses[0]["result"])
}

func TestToolsListBeforeInitialize(t *testing.T) {
	responses := runSession(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Len(t, responses, 1)
	assert.Equal(t, float64(-32600), errorCode(t, responses[0]))
}

func TestToolsList(t *testing.T) {
	responses := runSession(t,
		initializeLine,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	)
	require.Len(t, responses, 2)

	result := responses[1]["result"].(map[string]any)
	tools := result["tools"].([]any)
	require.Len(t, tools, 3)

	echo := tools[0].(map[string]any)
	assert.Equal(t, "echo", echo["name"])
	assert.Equal(t, "Echo the text argument back", echo["description"])
	assert.Nil(t, echo["annotations"])

	whoami := tools[1].(map[string]any)
	annotations := whoami["annotations"].(map[string]any)
	assert.Equal(t, true, annotations["readOnlyHint"])
	assert.Equal(t, false, annotations["destructiveHint"])
	assert.Equal(t, true, annotations["idempotentHint"])
}

func TestToolsCall(t *testing.T) {
	responses := runSession(t,
		initializeLine,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}}}`,
	)
	require.Len(t, responses, 2)

	result := responses[1]["result"].(map[string]any)
	_, hasIsError := result["isError"]
	assert.False(t, hasIsError)

	content := result["content"].([]any)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	assert.Equal(t, "text", block["type"])
	assert.Equal(t, "echo: hi", block["text"])
}

func TestToolsCall_HandlerError(t *testing.T) {
	responses := runSession(t,
		initializeLine,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"echo","arguments":{}}}`,
	)
	require.Len(t, responses, 2)

	// Handler failures are isError tool results, never protocol errors.
	_, hasError := responses[1]["error"]
	assert.False(t, hasError)

	result := responses[1]["result"].(map[string]any)
	assert.Equal(t, true, result["isError"])
	content := result["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "missing text argument", content[0].(map[string]any)["text"])
}

func TestToolsCall_PartialOutputWithError(t *testing.T) {
	responses := runSession(t,
		initializeLine,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"flaky","arguments":{}}}`,
	)
	require.Len(t, responses, 2)

	result := responses[1]["result"].(map[string]any)
	assert.Equal(t, true, result["isError"])

	content := result["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "posted 2/4", content[0].(map[string]any)["text"])
	assert.Equal(t, "tweet 3 of 4 failed: boom", content[1].(map[string]any)["text"])
}

func TestToolsCall_UnknownTool(t *testing.T) {
	responses := runSession(t,
		initializeLine,
		`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"nope","arguments":{}}}`,
	)
	require.Len(t, responses, 2)
	assert.Equal(t, float64(-32602), errorCode(t, responses[1]))
}

func TestUnknownMethod(t *testing.T) {
	responses := runSession(t, `{"jsonrpc":"2.0","id":8,"method":"resources/list"}`)
	require.Len(t, responses, 1)
	assert.Equal(t, float64(-32601), errorCode(t, responses[0]))
}

func TestParseError(t *testing.T) {
	responses := runSession(t, `{not json`)
	require.Len(t, responses, 1)
	assert.Equal(t, float64(-32700), errorCode(t, responses[0]))
	assert.Nil(t, responses[0]["id"])
}

func TestWrongVersion(t *testing.T) {
	responses := runSession(t, `{"jsonrpc":"1.0","id":9,"method":"ping"}`)
	require.Len(t, responses, 1)
	assert.Equal(t, float64(-32600), errorCode(t, responses[0]))
}

func TestNotificationProducesNoResponse(t *testing.T) {
	responses := runSession(t,
		initializeLine,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":10,"method":"ping"}`,
	)
	// Two requests with ids, one notification without: two responses.
	require.Len(t, responses, 2)
	assert.Equal(t, float64(10), responses[1]["id"])
}

func TestBuildToolResult_EmptyOutput(t *testing.T) {
	result := buildToolResult("", nil)
	require.Len(t, result.Content, 1)
	assert.False(t, result.IsError)
}

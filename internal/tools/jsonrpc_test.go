package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.Register(&Tool{
		Name:        "echo",
		Description: "Echo the message back.",
		InputSchema: objectSchema(map[string]string{"message": "Text to echo"}, []string{"message"}),
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			var req struct {
				Message string `json:"message"`
			}
			if err := decodeArgs(args, &req); err != nil {
				return "", err
			}
			return "echo: " + req.Message, nil
		},
	})
	r.Register(&Tool{
		Name:        "boom",
		Description: "Always fails.",
		InputSchema: objectSchema(nil, nil),
		Handler: func(_ context.Context, _ json.RawMessage) (string, error) {
			return "", fmt.Errorf("it broke")
		},
	})
	return r
}

func runRequests(t *testing.T, requests ...string) []rpcResponse {
	t.Helper()
	server := NewServer(testRegistry(), nil)

	var out strings.Builder
	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	if err := server.Run(context.Background(), in, &out); err != nil {
		t.Fatal(err)
	}

	var responses []rpcResponse
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp rpcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestServerInitialize(t *testing.T) {
	responses := runRequests(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if len(responses) != 1 {
		t.Fatalf("got %d responses", len(responses))
	}
	if responses[0].Error != nil {
		t.Fatalf("error: %+v", responses[0].Error)
	}
	result := responses[0].Result.(map[string]any)
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
}

func TestServerToolsList(t *testing.T) {
	responses := runRequests(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	result := responses[0].Result.(map[string]any)
	tools := result["tools"].([]any)
	if len(tools) != 2 {
		t.Fatalf("tools = %v", tools)
	}
	first := tools[0].(map[string]any)
	// Sorted by name: boom before echo.
	if first["name"] != "boom" {
		t.Errorf("first tool = %v", first["name"])
	}
	if _, ok := first["inputSchema"]; !ok {
		t.Error("inputSchema missing")
	}
}

func TestServerToolsCall(t *testing.T) {
	responses := runRequests(t,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}`)
	result := responses[0].Result.(map[string]any)
	content := result["content"].([]any)[0].(map[string]any)
	if content["text"] != "echo: hi" {
		t.Errorf("text = %v", content["text"])
	}
	if result["isError"] != nil && result["isError"].(bool) {
		t.Error("unexpected isError")
	}
}

func TestServerToolFailureIsResult(t *testing.T) {
	responses := runRequests(t,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"boom","arguments":{}}}`)
	resp := responses[0]
	if resp.Error != nil {
		t.Fatal("tool failure must not be a protocol error")
	}
	result := resp.Result.(map[string]any)
	if result["isError"] != true {
		t.Errorf("isError = %v", result["isError"])
	}
	content := result["content"].([]any)[0].(map[string]any)
	if !strings.Contains(content["text"].(string), "it broke") {
		t.Errorf("text = %v", content["text"])
	}
}

func TestServerUnknownMethod(t *testing.T) {
	responses := runRequests(t, `{"jsonrpc":"2.0","id":5,"method":"nope"}`)
	if responses[0].Error == nil || responses[0].Error.Code != codeMethodNotFound {
		t.Errorf("error = %+v", responses[0].Error)
	}
}

func TestServerNotificationGetsNoResponse(t *testing.T) {
	responses := runRequests(t,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":6,"method":"ping"}`)
	if len(responses) != 1 {
		t.Fatalf("notifications must not be answered, got %d responses", len(responses))
	}
	if string(responses[0].ID) != "6" {
		t.Errorf("id = %s", responses[0].ID)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := testRegistry()
	if _, err := r.Call(context.Background(), "missing", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r := testRegistry()
	r.Register(&Tool{Name: "echo", InputSchema: objectSchema(nil, nil)})
}

func TestFlexInt(t *testing.T) {
	var req struct {
		Limit flexInt `json:"limit"`
	}
	for _, tt := range []struct {
		in   string
		want flexInt
	}{
		{`{"limit": 25}`, 25},
		{`{"limit": "10"}`, 10},
		{`{}`, 0},
		{`{"limit": null}`, 0},
	} {
		req.Limit = 0
		if err := json.Unmarshal([]byte(tt.in), &req); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if req.Limit != tt.want {
			t.Errorf("%s: limit = %d, want %d", tt.in, req.Limit, tt.want)
		}
	}
}

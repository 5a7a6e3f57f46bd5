package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"coffeebot/internal/invoker"
	"coffeebot/internal/repository"
	"coffeebot/internal/service"
)

func TestRunChat_ConversationAndClear(t *testing.T) {
	mock := &invoker.MockInvoker{Response: []byte(`{"statusCode":200,"body":{"content":"Our Black Gold blend.","memory":{"agent":"MenuAgent"}}}`)}
	chatSvc := service.NewChatService(mock, 0, zap.NewNop())
	sess := service.NewSession("", repository.NewMemoryTranscriptRepository())

	in := strings.NewReader("strongest espresso?\n\n/clear\nexit\n")
	var out bytes.Buffer
	if err := runChat(context.Background(), in, &out, chatSvc, sess); err != nil {
		t.Fatalf("run chat: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "CoffeeBot > Our Black Gold blend.") {
		t.Fatalf("expected reply in output, got %s", text)
	}
	if !strings.Contains(text, "🧠 Agent used: MenuAgent") {
		t.Fatalf("expected agent caption, got %s", text)
	}
	if strings.Count(text, "===== Merry's Way") != 2 {
		t.Fatalf("expected banner to be reprinted after /clear, got %s", text)
	}
	if turns, _ := sess.Snapshot(context.Background()); len(turns) != 0 {
		t.Fatalf("expected empty transcript after /clear, got %d", len(turns))
	}
	if len(mock.Payloads()) != 1 {
		t.Fatalf("blank lines and commands must not invoke the function")
	}
}

func TestRunChat_FaultShownWithoutCaption(t *testing.T) {
	mock := &invoker.MockInvoker{Err: errors.New("timeout")}
	chatSvc := service.NewChatService(mock, 0, zap.NewNop())
	sess := service.NewSession("", repository.NewMemoryTranscriptRepository())

	var out bytes.Buffer
	if err := runChat(context.Background(), strings.NewReader("hola"), &out, chatSvc, sess); err != nil {
		t.Fatalf("run chat: %v", err)
	}
	if !strings.Contains(out.String(), "CoffeeBot > ⚠️ Error: timeout") {
		t.Fatalf("expected error bubble, got %s", out.String())
	}
	if strings.Contains(out.String(), "Agent used") {
		t.Fatalf("error turns must not show an agent caption")
	}
}

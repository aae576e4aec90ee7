package gateway

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// ConsoleGateway is a stdin/stdout fallback used when no chat gateway is
// configured. Everything typed is attributed to a single local user.
type ConsoleGateway struct {
	Responder Responder
	UserID    string
}

func NewConsoleGateway(responder Responder) *ConsoleGateway {
	return &ConsoleGateway{
		Responder: responder,
		UserID:    "local",
	}
}

func (cg *ConsoleGateway) Start() error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}
		if line != "" {
			reply := cg.Responder.Handle(context.Background(), cg.UserID, line)
			fmt.Println(reply)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func (cg *ConsoleGateway) Send(chatID string, text string) error {
	fmt.Printf("[%s] %s\n", chatID, text)
	return nil
}

func (cg *ConsoleGateway) Stop() error {
	return nil
}

package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeParse       EventType = "parse"
	EventTypeStep        EventType = "step"
	EventTypeBridge      EventType = "bridge"
	EventTypeState       EventType = "state"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeHeartbeat   EventType = "heartbeat"
	EventTypeCommand     EventType = "command"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	CommandID string    `json:"command_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	commandLogPath string
	maxSize        int64
}

func NewLogger() *Logger {
	return &Logger{
		commandLogPath: filepath.Join("logs", "commands.jsonl"),
		maxSize:        10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeCommand {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.commandLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.commandLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.commandLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.commandLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.commandLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogParse(userID, intent string, confidence float64, multiStep bool) {
	l.Log(Event{
		Type:   EventTypeParse,
		UserID: userID,
		Data: map[string]any{
			"intent":     intent,
			"confidence": confidence,
			"multi_step": multiStep,
		},
	})
}

func (l *Logger) LogStep(commandID, stepID, action, status string) {
	l.Log(Event{
		Type:      EventTypeStep,
		CommandID: commandID,
		Data: map[string]string{
			"step":   stepID,
			"action": action,
			"status": status,
		},
	})
}

func (l *Logger) LogBridge(userID, action string, success bool, detail string) {
	l.Log(Event{
		Type:   EventTypeBridge,
		UserID: userID,
		Data: map[string]any{
			"action":  action,
			"success": success,
			"detail":  detail,
		},
	})
}

func (l *Logger) LogState(commandID string, status, errMsg string) {
	l.Log(Event{
		Type:      EventTypeState,
		CommandID: commandID,
		Data: map[string]string{
			"status": status,
			"error":  errMsg,
		},
	})
}

func (l *Logger) LogPolicyDenial(userID, action, reason string) {
	l.Log(Event{
		Type:   EventTypePolicyCheck,
		UserID: userID,
		Data: map[string]string{
			"action": action,
			"effect": "deny",
			"reason": reason,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

// LogCommand records a full command transcript; these also go to the jsonl
// transcript file.
func (l *Logger) LogCommand(userID, commandID, input, intent string, success bool, message string) {
	l.Log(Event{
		Type:      EventTypeCommand,
		UserID:    userID,
		CommandID: commandID,
		Data: map[string]any{
			"input":   input,
			"intent":  intent,
			"success": success,
			"message": message,
		},
	})
}

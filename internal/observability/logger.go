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
	EventTypePlan      EventType = "plan"
	EventTypeStep      EventType = "step"
	EventTypeVerify    EventType = "verify"
	EventTypeProvider  EventType = "provider"
	EventTypeRequest   EventType = "request"
	EventTypeLLM       EventType = "llm"
	EventTypeHeartbeat EventType = "heartbeat"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	PlanID    string    `json:"plan_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
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

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
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
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(planID string, stepCount int, intent string) {
	l.Log(Event{
		Type:   EventTypePlan,
		PlanID: planID,
		Data: map[string]any{
			"steps":       stepCount,
			"user_intent": intent,
		},
	})
}

func (l *Logger) LogStep(planID, stepID string, action string, status string, errMsg string) {
	data := map[string]string{
		"step_id": stepID,
		"action":  action,
		"status":  status,
	}
	if errMsg != "" {
		data["error"] = errMsg
	}
	l.Log(Event{
		Type:   EventTypeStep,
		PlanID: planID,
		Data:   data,
	})
}

func (l *Logger) LogVerify(planID string, approved bool, confidence float64, issueCount int) {
	l.Log(Event{
		Type:   EventTypeVerify,
		PlanID: planID,
		Data: map[string]any{
			"approved":   approved,
			"confidence": confidence,
			"issues":     issueCount,
		},
	})
}

func (l *Logger) LogRequest(requestID, city string, durationSeconds float64, success bool) {
	l.Log(Event{
		Type:      EventTypeRequest,
		RequestID: requestID,
		Data: map[string]any{
			"city":     city,
			"duration": durationSeconds,
			"success":  success,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(planID string, prompt any, response string) {
	l.Log(Event{
		Type:   EventTypeLLM,
		PlanID: planID,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}

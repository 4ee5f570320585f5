package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/dining-concierge/internal/domain"
	"github.com/seu-repo/dining-concierge/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestSubmit_EnqueuesStringifiedPayload(t *testing.T) {
	// Arrange
	mockQueue := mocks.NewMockMessageQueue()
	submitter := NewSubmitter(mockQueue, "", newTestLogger())

	order := domain.NewOrderRecord(domain.NewSlots(map[domain.SlotName]string{
		domain.SlotLocation:       "New York",
		domain.SlotCuisine:        "italian",
		domain.SlotDate:           "2030-05-01",
		domain.SlotTime:           "19:00",
		domain.SlotPhoneNumber:    "+12125551234",
		domain.SlotNumberOfPeople: "4",
	}))

	// Act
	receipt, err := submitter.Submit(context.Background(), order)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if receipt.Queue != DefaultQueueName {
		t.Errorf("expected queue %s, got %s", DefaultQueueName, receipt.Queue)
	}

	messages := mockQueue.GetPublishedMessages(DefaultQueueName)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message published, got %d", len(messages))
	}
	if receipt.Bytes != len(messages[0]) {
		t.Errorf("expected receipt size %d, got %d", len(messages[0]), receipt.Bytes)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(messages[0], &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}

	want := map[string]string{
		"Location":     "New York",
		"Cuisine":      "italian",
		"Date":         "2030-05-01",
		"time":         "19:00",
		"Phone_Number": "+12125551234",
		"No_of_people": "4",
	}
	if len(payload) != len(want) {
		t.Errorf("expected %d fields, got %d", len(want), len(payload))
	}
	for key, value := range want {
		got, ok := payload[key].(string)
		if !ok {
			t.Errorf("field %s is not a string: %v", key, payload[key])
			continue
		}
		if got != value {
			t.Errorf("field %s: expected %q, got %q", key, value, got)
		}
	}
}

func TestSubmit_EmptySlotsAreEmptyStrings(t *testing.T) {
	mockQueue := mocks.NewMockMessageQueue()
	submitter := NewSubmitter(mockQueue, "orders", newTestLogger())

	_, err := submitter.Submit(context.Background(), domain.NewOrderRecord(domain.Slots{"Location": nil}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var payload map[string]interface{}
	json.Unmarshal(mockQueue.GetPublishedMessages("orders")[0], &payload)
	if payload["No_of_people"] != "" {
		t.Errorf("expected empty string for unset slot, got %#v", payload["No_of_people"])
	}
	if payload["Location"] != "" {
		t.Errorf("expected empty string for null slot, got %#v", payload["Location"])
	}
}

func TestSubmit_RetriedCallEnqueuesDuplicate(t *testing.T) {
	mockQueue := mocks.NewMockMessageQueue()
	submitter := NewSubmitter(mockQueue, "orders", newTestLogger())
	order := domain.OrderRecord{Location: "new york"}

	submitter.Submit(context.Background(), order)
	submitter.Submit(context.Background(), order)

	if n := len(mockQueue.GetPublishedMessages("orders")); n != 2 {
		t.Errorf("expected 2 messages, got %d", n)
	}
}

func TestSubmit_PublishFailure(t *testing.T) {
	brokerErr := errors.New("connection refused")
	mockQueue := mocks.NewMockMessageQueue()
	mockQueue.PublishFunc = func(ctx context.Context, topic string, data []byte) error {
		return brokerErr
	}
	submitter := NewSubmitter(mockQueue, "orders", newTestLogger())

	receipt, err := submitter.Submit(context.Background(), domain.OrderRecord{})

	if receipt != nil {
		t.Error("expected no receipt on failure")
	}
	if !errors.Is(err, ErrSubmission) {
		t.Errorf("expected ErrSubmission, got %v", err)
	}
	if !errors.Is(err, brokerErr) {
		t.Errorf("expected broker error to be wrapped, got %v", err)
	}
}

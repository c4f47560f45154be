package amqp

import (
	"testing"
	"time"
)

func TestNewTransactionEvent(t *testing.T) {
	event := NewTransactionEvent("7f3d0c9a-1b2c-4d5e-8f90-a1b2c3d4e5f6", "chase_brian", OperationInsert)

	if event.GUID != "7f3d0c9a-1b2c-4d5e-8f90-a1b2c3d4e5f6" {
		t.Errorf("GUID = %v, want the supplied guid", event.GUID)
	}
	if event.AccountNameOwner != "chase_brian" {
		t.Errorf("AccountNameOwner = %v, want chase_brian", event.AccountNameOwner)
	}
	if event.Operation != OperationInsert {
		t.Errorf("Operation = %v, want %v", event.Operation, OperationInsert)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestTransactionEventJSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	event := &TransactionEvent{
		GUID:             "7f3d0c9a-1b2c-4d5e-8f90-a1b2c3d4e5f6",
		AccountNameOwner: "chase_brian",
		Operation:        OperationUpdate,
		Timestamp:        timestamp,
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON() error = %v", err)
	}

	if parsed.GUID != event.GUID {
		t.Errorf("Parsed GUID = %v, want %v", parsed.GUID, event.GUID)
	}
	if parsed.AccountNameOwner != event.AccountNameOwner {
		t.Errorf("Parsed AccountNameOwner = %v, want %v", parsed.AccountNameOwner, event.AccountNameOwner)
	}
	if parsed.Operation != event.Operation {
		t.Errorf("Parsed Operation = %v, want %v", parsed.Operation, event.Operation)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, event.Timestamp)
	}
}

func TestTransactionEventInvalidJSON(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte(`{"guid": 42}`)); err == nil {
		t.Error("TransactionEventFromJSON() should fail with invalid JSON")
	}
}

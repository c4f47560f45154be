package amqp

import (
	"encoding/json"
	"time"
)

// Event operations carried on transaction event messages.
const (
	OperationInsert = "insert"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// TransactionEvent is the lightweight message published after every
// transaction mutation. It carries only the GUID and the affected account;
// the worker reads the current rows from the database, so a stale or
// duplicated event is harmless.
type TransactionEvent struct {
	GUID             string    `json:"guid"`
	AccountNameOwner string    `json:"accountNameOwner"`
	Operation        string    `json:"operation"`
	Timestamp        time.Time `json:"timestamp"`
}

func NewTransactionEvent(guid, accountNameOwner, operation string) *TransactionEvent {
	return &TransactionEvent{
		GUID:             guid,
		AccountNameOwner: accountNameOwner,
		Operation:        operation,
		Timestamp:        time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

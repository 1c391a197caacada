package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestOrderStatus_Validate(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		wantErr bool
	}{
		{"", false},
		{OrderStatusDraft, false},
		{OrderStatusShipped, false},
		{OrderStatusCanceled, false},
		{"shipped", true},
		{"LOST", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := tt.status.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.status, err, tt.wantErr)
			}
		})
	}
}

func TestNewHandlers(t *testing.T) {
	handlers := NewHandlers[*Color]("name")

	record := handlers.NewRecord()
	if record == nil {
		t.Fatal("expected a fresh record")
	}

	id := uuid.New()
	handlers.SetID(record, id)
	if got := handlers.GetID(record); got != id {
		t.Errorf("GetID() = %v, want %v", got, id)
	}
	if got := handlers.GetID(nil); got != uuid.Nil {
		t.Errorf("GetID(nil) = %v, want nil uuid", got)
	}
	if got := handlers.GetIdentifier(); got != "name" {
		t.Errorf("GetIdentifier() = %q, want name", got)
	}
}

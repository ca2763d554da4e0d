package models

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPendente, StatusWhatsEnviado, StatusConfirmado, StatusInstalado, StatusCancelado} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Status("Arquivado").Valid() {
		t.Error("expected unknown status to be invalid")
	}
	if Status("").Valid() {
		t.Error("expected empty status to be invalid")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPendente, StatusWhatsEnviado, true},
		{StatusPendente, StatusConfirmado, true},
		{StatusWhatsEnviado, StatusConfirmado, true},
		{StatusConfirmado, StatusInstalado, true},
		{StatusPendente, StatusPendente, true},
		{StatusWhatsEnviado, StatusCancelado, true},
		{StatusCancelado, StatusPendente, true},
		// skipping confirmation and reopening finished work are outside the flow
		{StatusPendente, StatusInstalado, false},
		{StatusInstalado, StatusPendente, false},
		{StatusInstalado, StatusCancelado, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v; want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

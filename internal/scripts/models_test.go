package scripts

import (
	"context"
	"testing"
)

func TestInstructionTextPrefersSystemMessage(t *testing.T) {
	s := Script{SystemMessage: "Be brief.", Content: "Long sales script"}
	if got := s.InstructionText(); got != "Be brief." {
		t.Fatalf("unexpected instruction text %q", got)
	}

	s = Script{Content: "Long sales script"}
	if got := s.InstructionText(); got != "Long sales script" {
		t.Fatalf("unexpected instruction text %q", got)
	}
}

func TestMemoryRepoFindByID(t *testing.T) {
	repo := NewMemoryRepo(Script{ID: "s1", Name: "Greeting", Content: "Hello"})

	s, ok, err := repo.FindByID(context.Background(), "s1")
	if err != nil || !ok {
		t.Fatalf("FindByID: ok=%v err=%v", ok, err)
	}
	if s.Name != "Greeting" {
		t.Fatalf("unexpected script %+v", s)
	}

	if _, ok, err := repo.FindByID(context.Background(), "missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

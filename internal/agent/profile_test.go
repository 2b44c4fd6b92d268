package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadProfile_Missing(t *testing.T) {
	p := LoadProfile(filepath.Join(t.TempDir(), "AGENT.yaml"))
	if p != DefaultProfile() {
		t.Fatalf("missing file: got %+v, want defaults", p)
	}
}

func TestLoadProfile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AGENT.yaml")
	if err := os.WriteFile(path, []byte("name: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := LoadProfile(path); p != DefaultProfile() {
		t.Fatalf("malformed file: got %+v, want defaults", p)
	}
}

func TestLoadProfile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AGENT.yaml")
	data := "name: friday\nmodel: openai/gpt-4o-mini\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	p := LoadProfile(path)
	if p.Name != "friday" || p.Model != "openai/gpt-4o-mini" {
		t.Fatalf("got %+v", p)
	}
	if p.Instruction != DefaultProfile().Instruction {
		t.Fatalf("instruction not defaulted: %q", p.Instruction)
	}
}

func TestSaveProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "AGENT.yaml")
	want := DefaultProfile()
	want.Instruction = "Be brief."
	if err := SaveProfile(want, path); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if got := LoadProfile(path); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestBuildInstruction(t *testing.T) {
	now := time.Date(2025, 1, 6, 18, 5, 0, 0, time.UTC)
	got := BuildInstruction(Profile{Instruction: "  Be kind.  "}, now, "/ws")
	want := "Be kind.\n\nToday's date is Monday, 2025-01-06 18:05 UTC.\nYour workspace for files is /ws; relative paths resolve there."
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if strings.Contains(BuildInstruction(Profile{}, now, ""), "workspace") {
		t.Fatal("workspace line without a workspace")
	}
}

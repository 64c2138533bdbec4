package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
)

// --- generate command tests ---

func TestGenerate_DefaultSingleID(t *testing.T) {
	cmd := NewGenerateCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if _, err := ksuid.Parse(line); err != nil {
		t.Fatalf("output %q is not a valid id: %v", line, err)
	}
}

func TestGenerate_CountEmitsDistinctIDs(t *testing.T) {
	cmd := NewGenerateCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-n", "5"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	seen := map[string]bool{}
	for _, line := range lines {
		if _, err := ksuid.Parse(line); err != nil {
			t.Fatalf("output %q is not a valid id: %v", line, err)
		}
		if seen[line] {
			t.Fatalf("duplicate id in output: %s", line)
		}
		seen[line] = true
	}
}

func TestGenerate_InspectFormat(t *testing.T) {
	cmd := NewGenerateCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-n", "2", "-f", "inspect"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	dec := json.NewDecoder(buf)
	count := 0
	for dec.More() {
		var d idDetails
		if err := dec.Decode(&d); err != nil {
			t.Fatalf("decode entry %d: %v", count, err)
		}
		if _, err := ksuid.Parse(d.ID); err != nil {
			t.Fatalf("entry %d id %q invalid: %v", count, d.ID, err)
		}
		if len(d.Raw) != 40 || len(d.Payload) != 32 {
			t.Fatalf("entry %d has bad hex lengths: raw=%d payload=%d", count, len(d.Raw), len(d.Payload))
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 entries, got %d", count)
	}
}

func TestGenerate_RawFormat(t *testing.T) {
	cmd := NewGenerateCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-n", "2", "-f", "raw"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.Len() != 40 {
		t.Fatalf("expected 40 raw bytes for 2 ids, got %d", buf.Len())
	}
	if _, err := ksuid.FromBytes(buf.Bytes()[:20]); err != nil {
		t.Fatalf("first 20 bytes are not a valid id: %v", err)
	}
}

func TestGenerate_TemplateFormat(t *testing.T) {
	cmd := NewGenerateCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-f", "template", "-t", "{{.Timestamp}}|{{.String}}"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	parts := strings.SplitN(strings.TrimSpace(buf.String()), "|", 2)
	if len(parts) != 2 {
		t.Fatalf("expected two template fields, got %q", buf.String())
	}
	id, err := ksuid.Parse(parts[1])
	if err != nil {
		t.Fatalf("template String field %q invalid: %v", parts[1], err)
	}
	if want := id.String(); parts[1] != want {
		t.Fatalf("expected %q, got %q", want, parts[1])
	}
}

func TestGenerate_FlagValidation(t *testing.T) {
	for _, args := range [][]string{
		{"-n", "0"},
		{"-f", "yaml"},
		{"-f", "template"},
		{"-f", "template", "-t", "{{.Broken"},
	} {
		cmd := NewGenerateCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Fatalf("expected error for args %v, got nil", args)
		}
	}
}

// --- inspect command tests ---

func TestInspect_KnownID(t *testing.T) {
	cmd := NewInspectCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"0ujtsYcgvSTl8PAuAdqWYSMnLOv"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var d idDetails
	if err := json.Unmarshal(buf.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Raw != "0669f7efb5a1cd34b5f99d1154fb6853345c9735" {
		t.Fatalf("unexpected raw: %s", d.Raw)
	}
	if d.Timestamp != 107608047 {
		t.Fatalf("unexpected timestamp: %d", d.Timestamp)
	}
	if d.Time != "2017-10-10T04:00:47Z" {
		t.Fatalf("unexpected time: %s", d.Time)
	}
	if d.Payload != "b5a1cd34b5f99d1154fb6853345c9735" {
		t.Fatalf("unexpected payload: %s", d.Payload)
	}
}

func TestInspect_MultipleIDs(t *testing.T) {
	id1, err := ksuid.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	id2 := id1.Next()

	cmd := NewInspectCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{id1.String(), id2.String()})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	dec := json.NewDecoder(buf)
	var got []string
	for dec.More() {
		var d idDetails
		if err := dec.Decode(&d); err != nil {
			t.Fatalf("decode: %v", err)
		}
		got = append(got, d.ID)
	}
	if len(got) != 2 || got[0] != id1.String() || got[1] != id2.String() {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestInspect_Validation(t *testing.T) {
	cmd := NewInspectCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing args, got nil")
	}

	cmd = NewInspectCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"not-an-id"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for bad id, got nil")
	}
}

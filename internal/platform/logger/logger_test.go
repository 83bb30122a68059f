package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(salt string) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), redact: &redactor{salt: salt}}, logs
}

func TestRedactsSecretsAndHashesOwners(t *testing.T) {
	log, logs := observed("pepper")
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJvd25lciJ9.c2ln"

	log.With("service", "pages").Info("saved",
		"owner_id", "0b9b5f1e-0000-4000-8000-000000000001",
		"authorization", "Bearer abc",
		"note", jwtish,
		"slug", "alice",
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: got %d want 1", len(entries))
	}
	got := entries[0].ContextMap()
	if got["authorization"] != "[REDACTED]" || got["note"] != "[REDACTED]" {
		t.Fatalf("secrets leaked: %#v", got)
	}
	owner, _ := got["owner_id"].(string)
	if !strings.HasPrefix(owner, "hash:") || len(owner) != len("hash:")+12 {
		t.Fatalf("owner not pseudonymized: %q", owner)
	}
	if got["slug"] != "alice" || got["service"] != "pages" {
		t.Fatalf("plain fields changed: %#v", got)
	}
}

func TestHashDependsOnSalt(t *testing.T) {
	a := (&redactor{salt: "a"}).hash("owner")
	b := (&redactor{salt: "b"}).hash("owner")
	if a == b {
		t.Fatalf("salt ignored: %s", a)
	}
	if (&redactor{}).hash("") != "" {
		t.Fatalf("empty value should hash to empty")
	}
}

func TestNilRedactorPassesThrough(t *testing.T) {
	var r *redactor
	kv := []interface{}{"password", "hunter2"}
	if out := r.kvs(kv); out[1] != "hunter2" {
		t.Fatalf("nil redactor rewrote values: %#v", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q): got %v want %v", in, got, want)
		}
	}
}

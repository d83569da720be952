package cache

import (
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c, err := New(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := "openai:gpt-4o:system:review this"
	if _, ok := c.Get(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.Put(key, `{"risk_level": "low"}`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("want hit after Put")
	}
	if got != `{"risk_level": "low"}` {
		t.Errorf("Get = %q", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	c, err := New(true, t.TempDir(), 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := "openai:gpt-4o:s:u"
	if err := c.Put(key, "response"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := c.Get(key); !ok {
		t.Fatal("want hit before expiry")
	}

	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Error("want miss after TTL expiry")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Put("k", "v"); err != nil {
		t.Fatalf("Put on disabled cache: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("disabled cache must always miss")
	}
	if c.Enabled() {
		t.Error("Enabled() = true for disabled cache")
	}
}

func TestCache_Clear(t *testing.T) {
	c, err := New(true, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Put("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Put("b", "2"); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Clear")
	}
}

func TestHashKey_DistinctInputs(t *testing.T) {
	if HashKey("openai:gpt-4o:s:u") == HashKey("openai:gpt-4o:s:other") {
		t.Error("distinct prompts must produce distinct keys")
	}
}

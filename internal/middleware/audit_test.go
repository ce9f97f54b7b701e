package middleware

import (
	"encoding/json"
	"testing"
)

func TestRedactAuditBodyAdmin(t *testing.T) {
	body := []byte(`{"principal":"0xabc","amount":100,"auth":{"api_key":"k","admin_key":"a"}}`)
	out := redactAuditBody("/v1/admin/fund", body)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if auth, ok := data["auth"].(map[string]interface{}); ok {
		if auth["api_key"] == "k" || auth["admin_key"] == "a" {
			t.Fatalf("credentials not redacted")
		}
	}
	if data["principal"] != "0xabc" {
		t.Fatalf("non-sensitive field should survive redaction")
	}
}

func TestRedactAuditBodyNonSensitivePath(t *testing.T) {
	body := []byte(`{"ok":true}`)
	out := redactAuditBody("/health", body)
	if out != string(body) {
		t.Fatalf("unexpected redaction on non-sensitive path")
	}
}

func TestRedactAuditBodyInvalidJSON(t *testing.T) {
	body := []byte("not-json")
	out := redactAuditBody("/v1/admin/fund", body)
	if out != "[redacted]" {
		t.Fatalf("expected redacted placeholder for invalid json")
	}
}

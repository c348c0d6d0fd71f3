package domain

import "testing"

func TestEnvelope_Header(t *testing.T) {
	e := NewEnvelope("admin@example.com",
		[]string{"ops@example.com", "dev@example.com"}, "nightly errors")

	want := "From: admin@example.com\r\n" +
		"To: ops@example.com,dev@example.com\r\n" +
		"Subject: nightly errors\r\n\r\n"
	if e.Header() != want {
		t.Errorf("Header() = %q, want %q", e.Header(), want)
	}
	if e.Recipients() != "ops@example.com,dev@example.com" {
		t.Errorf("Recipients() = %q", e.Recipients())
	}
}

func TestEnvelope_CopiesRecipients(t *testing.T) {
	to := []string{"a@example.com"}
	e := NewEnvelope("from@example.com", to, "s")

	to[0] = "mutated@example.com"
	if e.To[0] != "a@example.com" {
		t.Error("envelope shares the caller's recipient slice")
	}
}

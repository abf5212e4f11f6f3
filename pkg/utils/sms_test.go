package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSMSClientSendsForm(t *testing.T) {
	var gotKey, gotTo, gotMessage, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotKey = r.Header.Get("apiKey")
		gotUser = r.PostForm.Get("username")
		gotTo = r.PostForm.Get("to")
		gotMessage = r.PostForm.Get("message")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewSMSClient("sandbox", "secret")
	c.BaseURL = srv.URL

	if err := c.SendPaymentCodeSMS(context.Background(), "+254700000001", "482913", 5*time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotKey != "secret" || gotUser != "sandbox" {
		t.Fatalf("credentials not forwarded: key=%q user=%q", gotKey, gotUser)
	}
	if gotTo != "+254700000001" {
		t.Fatalf("unexpected recipient %q", gotTo)
	}
	if !strings.Contains(gotMessage, "482913") {
		t.Fatalf("message does not carry the code: %q", gotMessage)
	}
	if !strings.Contains(gotMessage, "expires in 5 minutes") {
		t.Fatalf("message does not state the configured lifetime: %q", gotMessage)
	}
}

func TestSMSClientRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewSMSClient("sandbox", "wrong")
	c.BaseURL = srv.URL

	if err := c.SendRideRequestDecisionSMS(context.Background(), "+254700000001", "Berlin", "Munich", true); err == nil {
		t.Fatalf("expected error on 401 response")
	}
}

func TestSMSClientRequiresCredentials(t *testing.T) {
	c := NewSMSClient("", "")
	if c.Configured() {
		t.Fatalf("client without credentials must not report configured")
	}
	if err := c.SendPaymentCodeSMS(context.Background(), "+1", "123456", 0); err == nil {
		t.Fatalf("expected error without username")
	}
}

package nlu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestQuery_DecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("v"); got != apiVersion {
			t.Errorf("version = %q, want %q", got, apiVersion)
		}

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Query != "give me the artist role" {
			t.Errorf("query = %q", req.Query)
		}
		if req.SessionID != "sess-1" {
			t.Errorf("sessionId = %q", req.SessionID)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": {
				"action": "skill.role.set",
				"actionIncomplete": false,
				"parameters": {"role": "artist"},
				"contexts": [{"name": "greeting"}],
				"fulfillment": {"speech": "Sure thing!"}
			},
			"status": {"code": 200}
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", srv.URL)
	res, err := c.Query(context.Background(), "give me the artist role", "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"skill", "role", "set"}; !reflect.DeepEqual(res.ActionPath, want) {
		t.Errorf("ActionPath = %v, want %v", res.ActionPath, want)
	}
	if res.SkillKey() != "role.set" {
		t.Errorf("SkillKey() = %q", res.SkillKey())
	}
	if res.Param("role") != "artist" {
		t.Errorf("Param(role) = %q", res.Param("role"))
	}
	if !res.HasContext("greeting") {
		t.Error("greeting context lost in decode")
	}
	if res.FallbackText != "Sure thing!" {
		t.Errorf("FallbackText = %q", res.FallbackText)
	}
	if res.Incomplete {
		t.Error("Incomplete = true, want false")
	}
}

func TestQuery_ServiceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": {}, "status": {"code": 401, "errorDetails": "bad token"}}`))
	}))
	defer srv.Close()

	c := NewClient("bad", srv.URL)
	if _, err := c.Query(context.Background(), "hello", "sess-1"); err == nil {
		t.Fatal("want error on non-ok service status")
	}
}

func TestQuery_TransportErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("t", srv.URL)
	if _, err := c.Query(context.Background(), "hello", "sess-1"); err == nil {
		t.Fatal("want error on HTTP 502")
	}
}

func TestQuery_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient("t", srv.URL)
	if _, err := c.Query(context.Background(), "hello", "sess-1"); err == nil {
		t.Fatal("want error on undecodable body")
	}
}

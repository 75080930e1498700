package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]int{"n": 1})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	var got map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got["n"] != 1 {
		t.Errorf("body = %s (%v)", rec.Body.String(), err)
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "not_found", "post not found")

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != 404 || body.Error != "not_found" || body.Message != "post not found" {
		t.Errorf("got %d %+v", rec.Code, body)
	}
}

func TestDecode(t *testing.T) {
	type in struct {
		Name string `json:"name"`
	}
	cases := []struct {
		body string
		ok   bool
	}{
		{`{"name":"x"}`, true},
		{`{"name":"x","extra":1}`, false},
		{`{"name":"x"}{"name":"y"}`, false},
		{`not json`, false},
		{``, false},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(c.body))
		r.Header.Set("Content-Type", "application/json")
		var v in
		err := Decode(httptest.NewRecorder(), r, &v)
		if c.ok && err != nil {
			t.Errorf("Decode(%q) err = %v", c.body, err)
		}
		if !c.ok && !errors.Is(err, ErrBadJSON) {
			t.Errorf("Decode(%q) err = %v, want ErrBadJSON", c.body, err)
		}
	}
}

func TestNewPage(t *testing.T) {
	id := func(s string) string { return s }

	p := NewPage([]string{"a", "b"}, true, id)
	if p.Next != "b" || !p.HasMore {
		t.Errorf("page = %+v", p)
	}
	p = NewPage[string](nil, false, id)
	if p.Items == nil || p.Next != "" {
		t.Errorf("empty page = %+v", p)
	}
}

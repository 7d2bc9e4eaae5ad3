package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSynthesizeMissingCredential(t *testing.T) {
	p := NewElevenLabsTTSProvider("", "")
	_, err := p.Synthesize(context.Background(), &SpeechRequest{Text: "hello", VoiceID: "v1"})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestSynthesizeRejectsEmptyInput(t *testing.T) {
	p := NewElevenLabsTTSProvider("key", "")
	if _, err := p.Synthesize(context.Background(), &SpeechRequest{Text: "", VoiceID: "v1"}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
	if _, err := p.Synthesize(context.Background(), &SpeechRequest{Text: "hello", VoiceID: ""}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestSynthesizeSuccess(t *testing.T) {
	audio := []byte{0x49, 0x44, 0x33, 0x04} // mp3-ish bytes
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "key" {
			t.Errorf("missing xi-api-key header")
		}
		if !strings.HasPrefix(r.URL.Path, "/voice123") {
			t.Errorf("path = %q, want voice id segment", r.URL.Path)
		}
		if got := r.URL.Query().Get("output_format"); got != "mp3_44100_128" {
			t.Errorf("output_format = %q", got)
		}
		var body elevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.ModelID != "eleven_multilingual_v2" || body.Text != "hello there" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Write(audio)
	}))
	defer srv.Close()

	p := NewElevenLabsTTSProvider("key", srv.URL)
	res, err := p.Synthesize(context.Background(), &SpeechRequest{Text: "hello there", VoiceID: "voice123"})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if res.MIMEType != "audio/mpeg" {
		t.Errorf("mime = %q", res.MIMEType)
	}
	if !strings.HasPrefix(res.AudioDataURI, "data:audio/mpeg;base64,") {
		t.Errorf("data uri prefix missing: %q", res.AudioDataURI[:30])
	}
}

func TestSynthesizeErrorClasses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"unprocessable", http.StatusUnprocessableEntity, ErrBadRequest},
		{"server error", http.StatusInternalServerError, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			}))
			defer srv.Close()

			p := NewElevenLabsTTSProvider("key", srv.URL)
			_, err := p.Synthesize(context.Background(), &SpeechRequest{Text: "hi there", VoiceID: "v1"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if tc.want == nil && (errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBadRequest) || errors.Is(err, ErrMissingCredential)) {
				t.Fatalf("5xx must stay generic, got %v", err)
			}
		})
	}
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewElevenLabsTTSProvider("key", srv.URL)
	if _, err := p.Synthesize(context.Background(), &SpeechRequest{Text: "hi", VoiceID: "v1"}); err == nil {
		t.Fatal("expected error for empty audio body")
	}
}

package mal

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestProfileValidator_Validate_ExistingUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/testuser" {
			t.Errorf("リクエストパスが一致しません: got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html><head><title>testuser's Profile - MyAnimeList.net</title></head><body>profile</body></html>`))
	}))
	defer server.Close()

	validator := NewProfileValidator(server.Client(), testLogger(), server.URL)

	exists, err := validator.Validate(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}
	if !exists {
		t.Error("存在するユーザーがfalseと判定されました")
	}
}

func TestProfileValidator_Validate_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := NewProfileValidator(server.Client(), testLogger(), server.URL)

	exists, err := validator.Validate(context.Background(), "no_such_user")
	if err != nil {
		t.Fatalf("404はエラー扱いすべきではありません: %v", err)
	}
	if exists {
		t.Error("存在しないユーザーがtrueと判定されました")
	}
}

func TestProfileValidator_Validate_Soft404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html><head><title>404 Not Found - MyAnimeList.net</title></head><body></body></html>`))
	}))
	defer server.Close()

	validator := NewProfileValidator(server.Client(), testLogger(), server.URL)

	exists, err := validator.Validate(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("soft-404はエラー扱いすべきではありません: %v", err)
	}
	if exists {
		t.Error("soft-404ページのユーザーがtrueと判定されました")
	}
}

func TestProfileValidator_Validate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	validator := NewProfileValidator(server.Client(), testLogger(), server.URL)

	_, err := validator.Validate(context.Background(), "testuser")
	if err == nil {
		t.Error("500ステータスに対してエラーが返されるべきです")
	}
}

func TestProfileValidator_Validate_EscapesUsername(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := NewProfileValidator(server.Client(), testLogger(), server.URL)

	// ユーザー名は事前に構文検証されるが、URL構築自体も安全であること
	if _, err := validator.Validate(context.Background(), "user name"); err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}
	if gotPath != "/profile/user%20name" {
		t.Errorf("ユーザー名がエスケープされていません: got %s", gotPath)
	}
}

func TestParsePageTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "通常のtitle",
			body: `<html><head><title>testuser's Profile</title></head><body></body></html>`,
			want: "testuser's Profile",
		},
		{
			name: "titleなし",
			body: `<html><head><meta charset="utf-8"></head><body></body></html>`,
			want: "",
		},
		{
			name: "空のbody",
			body: ``,
			want: "",
		},
		{
			name: "前後の空白は除去される",
			body: `<html><head><title>  padded  </title></head></html>`,
			want: "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePageTitle([]byte(tt.body))
			if got != tt.want {
				t.Errorf("parsePageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInstrumentClient_RecordsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	collector := NewCollector()
	client := collector.InstrumentClient(server.Client(), "mal_api")

	if _, err := client.Get(server.URL + "/ok"); err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}
	if _, err := client.Get(server.URL + "/missing"); err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	expected := []string{
		`mangarec_external_http_responses_total{service="mal_api",status="200"} 1`,
		`mangarec_external_http_responses_total{service="mal_api",status="404"} 1`,
	}
	for _, want := range expected {
		if !strings.Contains(body, want) {
			t.Errorf("メトリクス出力に %q が含まれていません", want)
		}
	}
}

func TestInstrumentClient_DoesNotMutateOriginal(t *testing.T) {
	original := &http.Client{}
	collector := NewCollector()

	instrumented := collector.InstrumentClient(original, "recommend_api")

	if original.Transport != nil {
		t.Error("元のクライアントは変更されるべきではありません")
	}
	if instrumented.Transport == nil {
		t.Error("ラップ後のクライアントにTransportが設定されるべきです")
	}
}

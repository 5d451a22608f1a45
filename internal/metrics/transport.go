package metrics

import (
	"net/http"
	"strconv"
)

// instrumentedTransport はRoundTripperをラップし、外部APIの
// レスポンスステータスをサービス別に記録する。
type instrumentedTransport struct {
	base      http.RoundTripper
	collector *Collector
	service   string
}

// RoundTrip はリクエストを委譲し、結果をメトリクスに記録する。
// 通信エラーはステータス"error"として記録する。
func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.collector.RecordExternalHTTPStatus(t.service, "error")
		return nil, err
	}
	t.collector.RecordExternalHTTPStatus(t.service, strconv.Itoa(resp.StatusCode))
	return resp, nil
}

// InstrumentClient は指定サービス名でレスポンスステータスを記録する
// クライアントを返す。元のクライアントは変更しない。
func (c *Collector) InstrumentClient(client *http.Client, service string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	instrumented := *client
	instrumented.Transport = &instrumentedTransport{
		base:      base,
		collector: c,
		service:   service,
	}
	return &instrumented
}

// Package metrics はPrometheus形式のメトリクス収集を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はカタログ同期と外部API呼び出しのメトリクスを集約する。
type Collector struct {
	registry *prometheus.Registry

	syncCycles         prometheus.Counter
	syncDuration       prometheus.Histogram
	titlesFetched      prometheus.Counter
	titleFetchFailures prometheus.Counter
	mangaCached        prometheus.Counter
	listEntriesUpsert  prometheus.Counter
	externalHTTPStatus *prometheus.CounterVec
}

// NewCollector はCollectorの新しいインスタンスを生成し、
// 専用レジストリに全メトリクスを登録する。
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		syncCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mangarec_sync_cycles_total",
			Help: "完了したカタログ同期サイクルの総数",
		}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mangarec_sync_duration_seconds",
			Help:    "カタログ同期1サイクルの所要時間",
			Buckets: prometheus.DefBuckets,
		}),
		titlesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mangarec_titles_fetched_total",
			Help: "外部APIから取得した作品メタデータの総数",
		}),
		titleFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mangarec_title_fetch_failures_total",
			Help: "作品メタデータ取得の失敗総数",
		}),
		mangaCached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mangarec_manga_cached_total",
			Help: "カタログに新規登録した作品の総数",
		}),
		listEntriesUpsert: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mangarec_list_entries_upserted_total",
			Help: "upsertしたリストエントリの総数",
		}),
		externalHTTPStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mangarec_external_http_responses_total",
			Help: "外部APIのHTTPレスポンス数(サービス・ステータス別)",
		}, []string{"service", "status"}),
	}

	registry.MustRegister(
		c.syncCycles,
		c.syncDuration,
		c.titlesFetched,
		c.titleFetchFailures,
		c.mangaCached,
		c.listEntriesUpsert,
		c.externalHTTPStatus,
	)

	return c
}

// RecordSyncCycle は同期サイクルの完了を記録する。
func (c *Collector) RecordSyncCycle(durationSeconds float64) {
	c.syncCycles.Inc()
	c.syncDuration.Observe(durationSeconds)
}

// RecordTitleFetched は作品メタデータの取得成功を記録する。
func (c *Collector) RecordTitleFetched() {
	c.titlesFetched.Inc()
}

// RecordTitleFetchFailure は作品メタデータの取得失敗を記録する。
func (c *Collector) RecordTitleFetchFailure() {
	c.titleFetchFailures.Inc()
}

// RecordMangaCached はカタログへの新規登録を記録する。
func (c *Collector) RecordMangaCached() {
	c.mangaCached.Inc()
}

// RecordListEntryUpserted はリストエントリのupsertを記録する。
func (c *Collector) RecordListEntryUpserted() {
	c.listEntriesUpsert.Inc()
}

// RecordExternalHTTPStatus は外部APIのレスポンスステータスを記録する。
func (c *Collector) RecordExternalHTTPStatus(service, status string) {
	c.externalHTTPStatus.WithLabelValues(service, status).Inc()
}

// Handler はメトリクスエンドポイント用のHTTPハンドラーを返す。
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

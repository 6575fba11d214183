// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics 审计结果统计
package metrics

import (
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/33cn/betaudit/common/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	go_metrics "github.com/rcrowley/go-metrics"
)

var mlog = log.New("module", "metrics")

// Namespace prometheus namespace
var Namespace = "betaudit"

// go-metrics 中的指标名
const (
	VerifiedName = "audit.verified"
	FailedPrefix = "audit.failed."
	DurationName = "audit.duration"
	RoundsName   = "audit.rounds"
)

// Collector 提供一组 prometheus 指标
type Collector interface {
	Metrics() []prometheus.Collector
}

// PrometheusCollectorsFromFields 取出结构体中所有 prometheus.Collector 类型的字段
func PrometheusCollectorsFromFields(i interface{}) (cs []prometheus.Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			continue
		}
		if u, ok := v.Field(i).Interface().(prometheus.Collector); ok {
			cs = append(cs, u)
		}
	}
	return cs
}

// AuditMetrics prometheus 指标
type AuditMetrics struct {
	Verified prometheus.Counter
	Failed   *prometheus.CounterVec
	Rounds   prometheus.Histogram
	Duration prometheus.Histogram
}

// NewAuditMetrics new
func NewAuditMetrics() *AuditMetrics {
	return &AuditMetrics{
		Verified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "audit",
			Name:      "verified_total",
			Help:      "Sessions that passed the audit.",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "audit",
			Name:      "failed_total",
			Help:      "Sessions that failed the audit, by error kind.",
		}, []string{"kind"}),
		Rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "audit",
			Name:      "rounds",
			Help:      "Verified rounds per session.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "audit",
			Name:      "duration_seconds",
			Help:      "Time spent auditing one session.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Metrics implements Collector
func (m *AuditMetrics) Metrics() []prometheus.Collector {
	return PrometheusCollectorsFromFields(m)
}

// Recorder 同时写 go-metrics 和 prometheus, nil Recorder 什么都不做
type Recorder struct {
	registry go_metrics.Registry
	prom     *prometheus.Registry
	audit    *AuditMetrics
}

// NewRecorder 使用独立的 registry, 方便测试和多实例
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: go_metrics.NewRegistry(),
		prom:     prometheus.NewRegistry(),
		audit:    NewAuditMetrics(),
	}
	r.prom.MustRegister(r.audit.Metrics()...)
	return r
}

// Registry go-metrics registry
func (r *Recorder) Registry() go_metrics.Registry {
	return r.registry
}

// Gatherer prometheus registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.prom
}

// Success 记录一次通过的审计
func (r *Recorder) Success(rounds int, d time.Duration) {
	if r == nil {
		return
	}
	go_metrics.GetOrRegisterCounter(VerifiedName, r.registry).Inc(1)
	go_metrics.GetOrRegisterTimer(DurationName, r.registry).Update(d)
	go_metrics.GetOrRegisterHistogram(RoundsName, r.registry, go_metrics.NewExpDecaySample(1028, 0.015)).Update(int64(rounds))
	r.audit.Verified.Inc()
	r.audit.Rounds.Observe(float64(rounds))
	r.audit.Duration.Observe(d.Seconds())
}

// Failure 记录一次失败, kind 为错误类型名
func (r *Recorder) Failure(kind string, d time.Duration) {
	if r == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	go_metrics.GetOrRegisterCounter(FailedPrefix+kind, r.registry).Inc(1)
	go_metrics.GetOrRegisterTimer(DurationName, r.registry).Update(d)
	r.audit.Failed.WithLabelValues(kind).Inc()
	r.audit.Duration.Observe(d.Seconds())
}

// Count 读取 go-metrics 计数器, 不存在时为 0
func (r *Recorder) Count(name string) int64 {
	if c, ok := r.registry.Get(name).(go_metrics.Counter); ok {
		return c.Count()
	}
	return 0
}

// WriteOnce 以文本格式输出一次所有指标
func (r *Recorder) WriteOnce(w io.Writer) {
	go_metrics.WriteOnce(r.registry, w)
}

// WriteTextfile 写成 node_exporter textfile collector 可以读取的文件
func (r *Recorder) WriteTextfile(path string) error {
	if !strings.HasSuffix(path, ".prom") {
		return errors.Errorf("textfile %s must end with .prom", path)
	}
	if err := prometheus.WriteToTextfile(path, r.prom); err != nil {
		mlog.Error("WriteTextfile", "path", path, "err", err)
		return errors.Wrap(err, "WriteTextfile")
	}
	return nil
}

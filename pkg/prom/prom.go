package prom

import (
	"sync"

	xhttp "github.com/nimasrn/water-billing/pkg/http"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemBilling = "billing"
	SystemAuth    = "auth"
)
const (
	MetricPaymentsTotal         = "payments_total"
	MetricPaymentDuration       = "payment_duration_seconds"
	MetricBillsCreatedTotal     = "bills_created_total"
	MetricImportedRowsTotal     = "imported_rows_total"
	MetricLoginAttemptsTotal    = "login_attempts_total"
	MetricPaymentConflictsTotal = "payment_conflicts_total"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemBilling, MetricPaymentsTotal, "Recorded payments.", []string{"method", "channel"}))
	hasError(createHistogramVec(SystemBilling, MetricPaymentDuration, "Time spent in the payment transaction.", []string{"channel"}))
	hasError(createCounterVec(SystemBilling, MetricBillsCreatedTotal, "Bills created, by source.", []string{"source"}))
	hasError(createCounterVec(SystemBilling, MetricImportedRowsTotal, "Rows accepted by bulk imports.", []string{"kind"}))
	hasError(createCounter(SystemBilling, MetricPaymentConflictsTotal, "Payments rejected because the bill was already paid or locked."))
	hasError(createCounterVec(SystemAuth, MetricLoginAttemptsTotal, "Login attempts, by result.", []string{"result"}))

	return err
}

// ListenAndServer exposes the default registry on addr+url. It blocks, run
// it in its own goroutine.
func ListenAndServer(addr string, url string) {
	if url == "" {
		url = "/metrics"
	}
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name, help string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name, help string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name, help string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

func IncCounter(subsystem, name string) {
	AddCounter(subsystem, name, 1)
}

func AddCounter(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

// ObservePayment records a completed payment. channel is "cashier" or "admin".
func ObservePayment(method, channel string, seconds float64) {
	IncCounterVec(SystemBilling, MetricPaymentsTotal, method, channel)
	AddHistogramVec(SystemBilling, MetricPaymentDuration, seconds, channel)
}

func IncPaymentConflict() {
	IncCounter(SystemBilling, MetricPaymentConflictsTotal)
}

// AddBillsCreated counts bills by the path that created them:
// manual, generate, import or meter.
func AddBillsCreated(source string, n int) {
	if n <= 0 {
		return
	}
	AddCounterVec(SystemBilling, MetricBillsCreatedTotal, float64(n), source)
}

func AddImportedRows(kind string, n int) {
	if n <= 0 {
		return
	}
	AddCounterVec(SystemBilling, MetricImportedRowsTotal, float64(n), kind)
}

func IncLoginAttempt(result string) {
	IncCounterVec(SystemAuth, MetricLoginAttemptsTotal, result)
}

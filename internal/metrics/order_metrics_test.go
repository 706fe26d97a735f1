package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetricsWithRegisterer(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newOrderMetricsWithRegisterer should not return nil")
	}
	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if metrics.ordersUpdated == nil {
		t.Error("ordersUpdated counter should not be nil")
	}
	if metrics.ordersDeleted == nil {
		t.Error("ordersDeleted counter should not be nil")
	}
	if metrics.ordersFailed == nil {
		t.Error("ordersFailed counter vec should not be nil")
	}
	if metrics.operationDuration == nil {
		t.Error("operationDuration histogram vec should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
}

func TestNewOrderMetricsIdempotentRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(registry)
	second := newOrderMetricsWithRegisterer(registry)

	// Повторная регистрация возвращает уже существующие коллекторы.
	first.RecordOrderCreated()
	second.RecordOrderCreated()

	metric := &dto.Metric{}
	if err := second.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOrderLifecycleCounters(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderCreated()
	metrics.RecordOrderCreated()
	metrics.RecordOrderUpdated()
	metrics.RecordOrderDeleted()
	metrics.RecordOutboxEvent()
	metrics.RecordOutboxEvent()
	metrics.RecordOutboxEvent()

	checkCounter := func(name string, c prometheus.Counter, want float64) {
		t.Helper()
		metric := &dto.Metric{}
		if err := c.Write(metric); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		if got := metric.Counter.GetValue(); got != want {
			t.Errorf("%s: expected %f, got %f", name, want, got)
		}
	}

	checkCounter("ordersCreated", metrics.ordersCreated, 2.0)
	checkCounter("ordersUpdated", metrics.ordersUpdated, 1.0)
	checkCounter("ordersDeleted", metrics.ordersDeleted, 1.0)
	checkCounter("outboxEvents", metrics.outboxEvents, 3.0)
}

func TestRecordOperationFailed(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOperationFailed("create")
	metrics.RecordOperationFailed("create")
	metrics.RecordOperationFailed("delete")

	metric := &dto.Metric{}
	counter := metrics.ordersFailed.WithLabelValues("create")
	if err := counter.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected create failures 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOperationDuration(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOperationDuration("create", 100*time.Millisecond)
	metrics.RecordOperationDuration("create", 500*time.Millisecond)
	metrics.RecordOperationDuration("update", 25*time.Millisecond)

	metric := &dto.Metric{}
	observer := metrics.operationDuration.WithLabelValues("create")
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples for create, got %d", metric.Histogram.GetSampleCount())
	}
	sum := metric.Histogram.GetSampleSum()
	if sum < 0.55 || sum > 0.65 {
		t.Errorf("expected sum around 0.6, got %f", sum)
	}
}

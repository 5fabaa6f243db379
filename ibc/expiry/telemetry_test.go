package expiry_test

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cosmos/chainops/ibc/expiry"
)

func (s *ReporterTestSuite) TestTelemetry() {
	expired := newClient("07-tendermint-0", 100, "1209600s")
	within := newClient("07-tendermint-1", 200, "1209600s")
	broken := newClient("07-tendermint-2", 300, "1209600s")
	s.addClient(expired, s.chainTime.Add(-2000000*time.Second))
	s.addClient(within, s.chainTime.Add(-time.Hour))
	s.addClient(broken, time.Time{})
	s.querier.consErr[consensusKey(broken.ClientID, broken.LatestHeight)] = errors.New("consensus state not found")

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	_, err := s.run(expiry.WithTracerProvider(tp), expiry.WithMeterProvider(mp))
	s.Require().NoError(err)

	spans := recorder.Ended()
	s.Require().Len(spans, 4)
	statuses := map[string]codes.Code{}
	for _, span := range spans {
		if span.Name() != "CheckClient" {
			s.Require().Equal("Run", span.Name())
			s.Require().Equal(codes.Ok, span.Status().Code)
			continue
		}
		for _, kv := range span.Attributes() {
			if kv.Key == "client_id" {
				statuses[kv.Value.AsString()] = span.Status().Code
			}
		}
	}
	s.Require().Equal(map[string]codes.Code{
		expired.ClientID: codes.Ok,
		within.ClientID:  codes.Ok,
		broken.ClientID:  codes.Error,
	}, statuses)

	var rm metricdata.ResourceMetrics
	s.Require().NoError(reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var elapsedCount uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				s.Require().Equal(expiry.MetricClientsChecked, m.Name)
				for _, dp := range data.DataPoints {
					status, ok := dp.Attributes.Value(attribute.Key("status"))
					s.Require().True(ok)
					counts[status.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				s.Require().Equal(expiry.MetricClientElapsed, m.Name)
				for _, dp := range data.DataPoints {
					elapsedCount += dp.Count
				}
			}
		}
	}
	s.Require().Equal(map[string]int64{"EXPIRED": 1, "WITHIN-PERIOD": 1, "FAILED": 1}, counts)
	s.Require().Equal(uint64(2), elapsedCount)
}

func (s *ReporterTestSuite) TestRunSpanRecordsAbort() {
	s.querier.connsErr = errors.New("connection refused")

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, err := s.run(expiry.WithTracerProvider(tp))
	s.Require().Error(err)

	spans := recorder.Ended()
	s.Require().Len(spans, 1)
	s.Require().Equal("Run", spans[0].Name())
	s.Require().Equal(codes.Error, spans[0].Status().Code)
}

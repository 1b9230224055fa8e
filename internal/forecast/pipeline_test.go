package forecast

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
)

type stubPredictor struct {
	points []Point
	err    error
	called bool
	got    []Point
}

func (s *stubPredictor) Forecast(ctx context.Context, series []Point, horizon int) ([]Point, error) {
	s.called = true
	s.got = series
	if s.err != nil {
		return nil, s.err
	}
	return s.points, nil
}

func hourlySeries(n int) []Point {
	series := make([]Point, n)
	for i := range series {
		series[i] = Point{20 + float64(i), 40, 30, 1.5, 10, 25}
	}
	return series
}

func newTestPipeline(p Predictor) *Pipeline {
	return NewPipeline(p, NewFallbackForecaster(rand.New(rand.NewSource(1))))
}

func TestPredict_RemoteSuccess(t *testing.T) {
	predicted := make([]Point, 24)
	for i := range predicted {
		predicted[i] = Point{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	}
	stub := &stubPredictor{points: predicted}

	result := newTestPipeline(stub).Predict(context.Background(), hourlySeries(48), 24, nil, 12)

	if result.Source != SourceRemote {
		t.Fatalf("source = %s, want remote", result.Source)
	}
	if len(result.Forecast) != 24 {
		t.Fatalf("forecast length = %d, want 24", len(result.Forecast))
	}
	for i, fp := range result.Forecast {
		if fp.HourOffset != i+1 {
			t.Errorf("point %d has hour offset %d, want %d", i, fp.HourOffset, i+1)
		}
		if len(fp.Pollutants) != 6 {
			t.Errorf("point %d has %d pollutants, want 6", i, len(fp.Pollutants))
		}
	}
}

func TestPredict_PredictorErrorFallsBack(t *testing.T) {
	stub := &stubPredictor{err: fmt.Errorf("connection refused")}

	result := newTestPipeline(stub).Predict(context.Background(), hourlySeries(48), 24, nil, 12)

	if !stub.called {
		t.Fatal("predictor was never invoked")
	}
	if result.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", result.Source)
	}
	if len(result.Forecast) != 24 {
		t.Fatalf("forecast length = %d, want 24", len(result.Forecast))
	}
	for i, fp := range result.Forecast {
		for pollutant, v := range fp.Pollutants {
			if v < 0 {
				t.Errorf("point %d %s = %f, want >= 0", i, pollutant, v)
			}
		}
		if fp.AQI.AQI < 0 {
			t.Errorf("point %d AQI = %d, want >= 0", i, fp.AQI.AQI)
		}
	}
}

func TestPredict_ShortHistoryIsPadded(t *testing.T) {
	stub := &stubPredictor{err: fmt.Errorf("down")}

	result := newTestPipeline(stub).Predict(context.Background(), hourlySeries(10), 24, nil, 0)

	if len(result.Forecast) != 24 {
		t.Fatalf("forecast length = %d, want 24", len(result.Forecast))
	}
	if len(stub.got) != 24 {
		t.Errorf("predictor saw %d points, want padded 24", len(stub.got))
	}
}

func TestPredict_EmptyHistory(t *testing.T) {
	stub := &stubPredictor{err: fmt.Errorf("down")}

	result := newTestPipeline(stub).Predict(context.Background(), nil, 24, nil, 0)

	if result.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", result.Source)
	}
	if len(result.Forecast) != 24 {
		t.Fatalf("forecast length = %d, want 24", len(result.Forecast))
	}
}

func TestPredict_NoPredictorConfigured(t *testing.T) {
	result := newTestPipeline(nil).Predict(context.Background(), hourlySeries(30), 24, nil, 6)

	if result.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", result.Source)
	}
}

func TestPredict_WeatherFeaturesAppendedAndDiscarded(t *testing.T) {
	predicted := make([]Point, 24)
	for i := range predicted {
		// Nine normalized columns back: six pollutants + three weather.
		predicted[i] = Point{0.2, 0.2, 0.2, 0.2, 0.2, 0.2, 0.9, 0.9, 0.9}
	}
	stub := &stubPredictor{points: predicted}
	weather := &Weather{Temperature: 28, Humidity: 65, WindSpeed: 4}

	result := newTestPipeline(stub).Predict(context.Background(), hourlySeries(48), 24, weather, 12)

	if len(stub.got) == 0 {
		t.Fatal("predictor was never invoked")
	}
	if got := len(stub.got[0]); got != 9 {
		t.Fatalf("predictor input width = %d, want 9 with weather features", got)
	}
	for i, fp := range result.Forecast {
		if len(fp.Pollutants) != 6 {
			t.Errorf("point %d kept %d columns, weather columns must be discarded", i, len(fp.Pollutants))
		}
	}
	if result.Source != SourceRemote {
		t.Fatalf("source = %s, want remote", result.Source)
	}
}

func TestPredict_ShortRemoteResponseFallsBack(t *testing.T) {
	stub := &stubPredictor{points: []Point{{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}}}

	result := newTestPipeline(stub).Predict(context.Background(), hourlySeries(48), 24, nil, 12)

	if result.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback for truncated remote response", result.Source)
	}
	if len(result.Forecast) != 24 {
		t.Fatalf("forecast length = %d, want 24", len(result.Forecast))
	}
}

func TestParsePredictions_Formats(t *testing.T) {
	arr, err := parsePredictions([]byte(`[[0.1, 0.2], [0.3, 0.4]]`))
	if err != nil || len(arr) != 2 {
		t.Errorf("array form: got %v, %v", arr, err)
	}

	obj, err := parsePredictions([]byte(`{"predictions": [[0.5, 0.6]]}`))
	if err != nil || len(obj) != 1 {
		t.Errorf("object form: got %v, %v", obj, err)
	}

	if _, err := parsePredictions([]byte(`{"status": "ok"}`)); err == nil {
		t.Error("object without predictions array should be a format error")
	}

	if _, err := parsePredictions([]byte(`not json`)); err == nil {
		t.Error("non-JSON body should be a format error")
	}
}

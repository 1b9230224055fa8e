package forecast

import (
	"context"
	"fmt"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
)

const (
	// DefaultHorizon is the number of future hourly steps produced.
	DefaultHorizon = 24

	// historyLength is the minimum series length fed to a predictor;
	// shorter series are left-padded up to it.
	historyLength = 24

	// pollutantFeatures is the number of leading feature columns that
	// carry pollutant concentrations, in aqi.Pollutants order.
	pollutantFeatures = 6
)

// Prediction sources.
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// Weather carries current conditions appended as extra model features.
type Weather struct {
	Temperature float64
	Humidity    float64
	WindSpeed   float64
}

// ForecastPoint is one future hour of the forecast.
type ForecastPoint struct {
	HourOffset int         `json:"hour_offset"`
	AQI        aqi.Result  `json:"aqi"`
	Pollutants aqi.Reading `json:"pollutants"`
}

// Prediction is the pipeline output: the forecast and which source
// produced it. The source tag is the only way a caller learns that the
// remote predictor was unavailable.
type Prediction struct {
	Source   string          `json:"source"`
	Forecast []ForecastPoint `json:"forecast"`
}

// Pipeline orchestrates padding, normalization, remote prediction with
// local fallback, and conversion of predicted vectors back to AQI points.
// It holds no mutable state; concurrent Predict calls need no coordination.
type Pipeline struct {
	predictor Predictor
	fallback  *FallbackForecaster
}

// NewPipeline creates a pipeline. predictor may be nil, in which case every
// forecast comes from the fallback.
func NewPipeline(predictor Predictor, fallback *FallbackForecaster) *Pipeline {
	return &Pipeline{
		predictor: predictor,
		fallback:  fallback,
	}
}

// Predict produces a horizon-length AQI forecast from an hourly series of
// pollutant feature vectors. weather is optional; when present its scaled
// features are appended to every point and discarded again after
// prediction. referenceHour is the hour-of-day of the last observed point.
//
// Predict never fails: any predictor error is absorbed by the fallback and
// reported only through the Source tag.
func (p *Pipeline) Predict(ctx context.Context, series []Point, horizon int, weather *Weather, referenceHour int) Prediction {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	padded := padSeries(series, historyLength)
	if weather != nil {
		padded = appendWeatherFeatures(padded, weather)
	}

	stats := Fit(padded)
	normalized := stats.TransformSeries(padded)

	predicted, err := p.remoteForecast(ctx, normalized, horizon)
	if err != nil {
		fmt.Printf("Remote predictor unavailable, using fallback: %v\n", err)
		return Prediction{
			Source:   SourceFallback,
			Forecast: toForecastPoints(p.fallback.Forecast(padded, horizon, referenceHour)),
		}
	}

	points := make([]Point, len(predicted))
	for i, vec := range predicted {
		points[i] = stats.Inverse(vec)
	}

	return Prediction{
		Source:   SourceRemote,
		Forecast: toForecastPoints(points),
	}
}

func (p *Pipeline) remoteForecast(ctx context.Context, normalized []Point, horizon int) ([]Point, error) {
	if p.predictor == nil {
		return nil, fmt.Errorf("no predictor configured")
	}

	predicted, err := p.predictor.Forecast(ctx, normalized, horizon)
	if err != nil {
		return nil, err
	}
	if len(predicted) < horizon {
		return nil, fmt.Errorf("predictor returned %d of %d requested steps", len(predicted), horizon)
	}

	return predicted[:horizon], nil
}

// padSeries left-pads a short series by duplicating its earliest point
// until it reaches length n. An empty series pads with zero vectors. This
// is a deliberate policy: a predictor always sees a full-length window.
func padSeries(series []Point, n int) []Point {
	if len(series) >= n {
		return series
	}

	earliest := make(Point, pollutantFeatures)
	if len(series) > 0 {
		earliest = series[0]
	}

	padded := make([]Point, 0, n)
	for i := len(series); i < n; i++ {
		padded = append(padded, append(Point(nil), earliest...))
	}
	return append(padded, series...)
}

func appendWeatherFeatures(series []Point, w *Weather) []Point {
	features := []float64{w.Temperature / 100, w.Humidity / 100, w.WindSpeed / 10}

	out := make([]Point, len(series))
	for i, point := range series {
		augmented := make(Point, 0, len(point)+len(features))
		augmented = append(augmented, point...)
		augmented = append(augmented, features...)
		out[i] = augmented
	}
	return out
}

// toForecastPoints slices each vector down to the pollutant columns, clamps
// them to non-negative, and converts to an AQI result through the one
// shared engine.
func toForecastPoints(points []Point) []ForecastPoint {
	out := make([]ForecastPoint, 0, len(points))
	for i, point := range points {
		reading := make(aqi.Reading, pollutantFeatures)
		for col, pollutant := range aqi.Pollutants {
			var value float64
			if col < len(point) {
				value = point[col]
			}
			if value < 0 {
				value = 0
			}
			reading[pollutant] = value
		}

		out = append(out, ForecastPoint{
			HourOffset: i + 1,
			AQI:        aqi.Aggregate(reading),
			Pollutants: reading,
		})
	}
	return out
}

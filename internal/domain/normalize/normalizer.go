package normalize

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Result is the outcome of normalizing a single raw value.
type Result struct {
	RawValue       float64
	NormalizedValue float64
	MethodUsed      Method
	Config          Config
	MetricName      string
}

// defaultConfigs holds the pre-configured normalizers for well-known metric
// names, ported from the reference scoring pipeline.
var defaultConfigs = map[string]Config{
	"accuracy":  {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Clip: true},
	"precision": {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Clip: true},
	"recall":    {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Clip: true},
	"f1_score":  {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Clip: true},
	"auc_roc":   {Method: MethodMinMax, MinValue: ptr(0.5), MaxValue: ptr(1.0), Clip: true},

	"mse":  {Method: MethodLog, Invert: true, Clip: true},
	"rmse": {Method: MethodLog, Invert: true, Clip: true},
	"mae":  {Method: MethodLog, Invert: true, Clip: true},

	"demographic_parity_diff": {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Invert: true, Clip: true},
	"equalized_odds_diff":     {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Invert: true, Clip: true},
	"disparate_impact_ratio":  {Method: MethodMinMax, MinValue: ptr(0.8), MaxValue: ptr(1.2), Clip: true},

	"epsilon":                   {Method: MethodLog, Invert: true, Clip: true},
	"membership_inference_auc":  {Method: MethodMinMax, MinValue: ptr(0.5), MaxValue: ptr(1.0), Invert: true, Clip: true},

	"toxicity_score":          {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Invert: true, Clip: true},
	"jailbreak_success_rate":  {Method: MethodMinMax, MinValue: ptr(0.0), MaxValue: ptr(1.0), Invert: true, Clip: true},
}

// Normalizer maps raw metric values to [0,1] using per-metric configuration.
// Fit and SetConfig update the configs map in place under the write lock,
// and Normalize reads it under the read lock, so concurrent calls never
// observe a torn read. The map is not swapped out as a whole snapshot.
type Normalizer struct {
	mu            sync.RWMutex
	configs       map[string]Config
	defaultMethod Method
}

// New creates a Normalizer seeded with the default per-metric configs.
func New(defaultMethod Method) *Normalizer {
	configs := make(map[string]Config, len(defaultConfigs))
	for k, v := range defaultConfigs {
		configs[k] = v
	}
	return &Normalizer{configs: configs, defaultMethod: defaultMethod}
}

// Normalize maps value to [0,1]. If config is non-nil it is used directly;
// otherwise metricName is looked up among the stored configs, falling back
// to the Normalizer's default method.
func (n *Normalizer) Normalize(value float64, metricName string, config *Config) (Result, error) {
	cfg := n.resolveConfig(metricName, config)

	normalized, err := apply(value, cfg)
	if err != nil {
		return Result{}, err
	}

	if cfg.Invert {
		normalized = 1.0 - normalized
	}
	if cfg.Clip {
		normalized = clamp01(normalized)
	}

	return Result{
		RawValue:        value,
		NormalizedValue: normalized,
		MethodUsed:      cfg.Method,
		Config:          cfg,
		MetricName:      metricName,
	}, nil
}

// NormalizeBatch normalizes multiple named metric values, using per-metric
// overrides when present in configs.
func (n *Normalizer) NormalizeBatch(values map[string]float64, configs map[string]Config) (map[string]Result, error) {
	results := make(map[string]Result, len(values))
	for name, v := range values {
		var cfg *Config
		if configs != nil {
			if c, ok := configs[name]; ok {
				cfg = &c
			}
		}
		r, err := n.Normalize(v, name, cfg)
		if err != nil {
			return nil, fmt.Errorf("normalize %q: %w", name, err)
		}
		results[name] = r
	}
	return results, nil
}

func (n *Normalizer) resolveConfig(metricName string, config *Config) Config {
	if config != nil {
		return *config
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if metricName != "" {
		if cfg, ok := n.configs[metricName]; ok {
			return cfg
		}
	}
	return DefaultConfig(n.defaultMethod)
}

// GetConfig returns the stored config for metricName, if any.
func (n *Normalizer) GetConfig(metricName string) (Config, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	cfg, ok := n.configs[metricName]
	return cfg, ok
}

// SetConfig stores an explicit config for metricName, overriding any default.
func (n *Normalizer) SetConfig(metricName string, cfg Config) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.configs[metricName] = cfg
}

// Fit computes summary statistics (min, max, mean, stdev, median, IQR, and
// the 5/10/25/50/75/90/95 percentiles) over samples and stores the resulting
// config under metricName.
func (n *Normalizer) Fit(metricName string, samples []float64, method Method, invert bool) (Config, error) {
	if len(samples) == 0 {
		return Config{}, fmt.Errorf("normalize: cannot fit %q from an empty sample set", metricName)
	}
	if method == "" {
		method = n.defaultMethod
	}

	stats := computeStats(samples)
	cfg := Config{
		Method:      method,
		MinValue:    ptr(stats.min),
		MaxValue:    ptr(stats.max),
		Mean:        ptr(stats.mean),
		Std:         ptr(stats.std),
		Median:      ptr(stats.median),
		IQR:         ptr(stats.iqr),
		Percentiles: stats.percentiles,
		Invert:      invert,
		Clip:        true,
	}

	n.mu.Lock()
	n.configs[metricName] = cfg
	n.mu.Unlock()

	return cfg, nil
}

func apply(value float64, cfg Config) (float64, error) {
	switch cfg.Method {
	case MethodMinMax:
		return minMax(value, cfg), nil
	case MethodZScore:
		return zScore(value, cfg), nil
	case MethodRobust:
		return robust(value, cfg), nil
	case MethodLog:
		return logTransform(value, cfg), nil
	case MethodSigmoid:
		return sigmoid(value, cfg), nil
	case MethodPercentile:
		return percentile(value, cfg), nil
	case MethodTanh:
		return tanh(value, cfg), nil
	case MethodCalibrated:
		return calibrated(value, cfg), nil
	default:
		return 0, fmt.Errorf("normalize: unknown method %q", cfg.Method)
	}
}

func minMax(value float64, cfg Config) float64 {
	min := floatOr(cfg.MinValue, 0.0)
	max := floatOr(cfg.MaxValue, 1.0)
	if max == min {
		return 0.5
	}
	return (value - min) / (max - min)
}

func zScore(value float64, cfg Config) float64 {
	mean := floatOr(cfg.Mean, 0.0)
	std := floatOr(cfg.Std, 1.0)
	if std == 0 {
		return 0.5
	}
	z := (value - mean) / std
	return logistic(z)
}

func robust(value float64, cfg Config) float64 {
	median := floatOr(cfg.Median, 0.5)
	iqr := floatOr(cfg.IQR, 1.0)
	if iqr == 0 {
		return 0.5
	}
	return (value-median)/(2.0*iqr) + 0.5
}

func logTransform(value float64, cfg Config) float64 {
	v := math.Max(value, epsilon)
	logVal := math.Log(v)

	if cfg.MinValue != nil && cfg.MaxValue != nil {
		logMin := math.Log(math.Max(*cfg.MinValue, epsilon))
		logMax := math.Log(math.Max(*cfg.MaxValue, epsilon))
		if logMax == logMin {
			return 0.5
		}
		return (logVal - logMin) / (logMax - logMin)
	}
	return logistic(logVal)
}

func sigmoid(value float64, cfg Config) float64 {
	mean := floatOr(cfg.Mean, 0.0)
	scale := floatOr(cfg.Std, 1.0)
	if scale == 0 {
		return 0.5
	}
	return logistic((value - mean) / scale)
}

func percentile(value float64, cfg Config) float64 {
	if len(cfg.Percentiles) == 0 {
		return 0.5
	}

	pcts := make([]int, 0, len(cfg.Percentiles))
	for p := range cfg.Percentiles {
		pcts = append(pcts, p)
	}
	sort.Ints(pcts)

	for i, p := range pcts {
		pv := cfg.Percentiles[p]
		if value <= pv {
			if i == 0 {
				return float64(p) / 100.0
			}
			prevP := pcts[i-1]
			prevV := cfg.Percentiles[prevP]
			ratio := 0.5
			if pv != prevV {
				ratio = (value - prevV) / (pv - prevV)
			}
			return (float64(prevP) + ratio*float64(p-prevP)) / 100.0
		}
	}
	return 1.0
}

func tanh(value float64, cfg Config) float64 {
	mean := floatOr(cfg.Mean, 0.0)
	scale := floatOr(cfg.Std, 1.0)
	if scale == 0 {
		return 0.5
	}
	return (math.Tanh((value-mean)/scale) + 1.0) / 2.0
}

func calibrated(value float64, cfg Config) float64 {
	if len(cfg.Percentiles) > 0 {
		return percentile(value, cfg)
	}
	return zScore(value, cfg)
}

func logistic(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

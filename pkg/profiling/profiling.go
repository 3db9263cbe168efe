package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultAppName        = "portfolio-api"
	defaultUploadInterval = 15 * time.Second
)

// Options configures the pyroscope agent
type Options struct {
	Enabled        bool
	Endpoint       string
	AppName        string
	SampleTypes    string // comma-separated, empty means the default set
	UploadInterval time.Duration

	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
	Environment       string
}

var defaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockCount,
	pyroscope.ProfileBlockDuration,
}

var sampleTypeAliases = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// Start launches continuous profiling and returns its stop func.
// When profiling is disabled the stop func does nothing.
func Start(opts Options) (func(), error) {
	if !opts.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	profileTypes, err := parseSampleTypes(opts.SampleTypes)
	if err != nil {
		return nil, err
	}

	interval := opts.UploadInterval
	if interval <= 0 {
		interval = defaultUploadInterval
	}

	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = defaultAppName
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   endpoint,
		UploadRate:      interval,
		ProfileTypes:    profileTypes,
		Tags:            tags(opts),
		Logger:          logger.With(zap.String("component", "pyroscope")).Sugar(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling started",
		zap.String("app_name", appName),
		zap.String("endpoint", endpoint),
		zap.Int("profile_types", len(profileTypes)),
		zap.Duration("upload_interval", interval),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

// tags labels every profile with the service identity; blank values are skipped
func tags(opts Options) map[string]string {
	out := make(map[string]string, 5)
	for key, value := range map[string]string{
		"service_name":    opts.ServiceName,
		"namespace":       opts.ServiceNamespace,
		"service_version": opts.ServiceVersion,
		"instance":        opts.ServiceInstanceID,
		"environment":     opts.Environment,
	} {
		if value = strings.TrimSpace(value); value != "" {
			out[key] = value
		}
	}
	return out
}

func parseSampleTypes(value string) ([]pyroscope.ProfileType, error) {
	if strings.TrimSpace(value) == "" {
		return defaultProfileTypes, nil
	}

	var types []pyroscope.ProfileType
	seen := make(map[pyroscope.ProfileType]bool)

	for _, raw := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		mapped, ok := sampleTypeAliases[name]
		if !ok {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", name)
		}
		for _, t := range mapped {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}

	if len(types) == 0 {
		return defaultProfileTypes, nil
	}
	return types, nil
}

package profiling

import (
	"testing"

	"github.com/dentclinicai/dentclinicai-api/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileTypes_Default(t *testing.T) {
	got, err := parseProfileTypes("")
	require.NoError(t, err)
	assert.Equal(t, defaultProfileTypes, got)
}

func TestParseProfileTypes_Custom(t *testing.T) {
	got, err := parseProfileTypes("cpu, alloc_space,mutex")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, got)
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported O11Y_PROFILING_SAMPLE_TYPES")
}

func TestBuildApplicationName(t *testing.T) {
	got := buildApplicationName("site-api", "dentclinicai-api", "production", "2.0.0")
	assert.Equal(t, "site-api{service_name=dentclinicai-api,environment=production,service_version=2.0.0}", got)
}

func TestBuildApplicationName_FallsBackToServiceName(t *testing.T) {
	got := buildApplicationName("  ", "dentclinicai-api", "staging", "1.0.0")
	assert.Equal(t, "dentclinicai-api{service_name=dentclinicai-api,environment=staging,service_version=1.0.0}", got)
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(config.ProfilingConfig{Enabled: false}, "dentclinicai-api", "1.0.0", "test")
	require.NoError(t, err)
	require.NotNil(t, stop)
	stop()
}

func TestInitProfiler_RequiresEndpoint(t *testing.T) {
	_, err := InitProfiler(config.ProfilingConfig{Enabled: true, Endpoint: " "}, "dentclinicai-api", "1.0.0", "test")
	require.Error(t, err)
}

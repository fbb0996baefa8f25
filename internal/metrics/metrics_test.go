package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blaze/fire/params"
	"blaze/fire/uniform"
)

func TestFrameObserver(t *testing.T) {
	frames := testutil.ToFloat64(FramesTotal)
	burn := testutil.ToFloat64(ParamChanges.WithLabelValues("burnSpeed"))
	skipped := testutil.ToFloat64(FramesSkipped)

	var o FrameObserver
	o.FrameDone(2*time.Millisecond, params.FieldSet(0).With(params.BurnSpeed), 12, 3)
	o.FrameSkipped(errors.New("not ready"))

	assert.Equal(t, frames+1, testutil.ToFloat64(FramesTotal))
	assert.Equal(t, burn+1, testutil.ToFloat64(ParamChanges.WithLabelValues("burnSpeed")))
	assert.Equal(t, skipped+1, testutil.ToFloat64(FramesSkipped))
	assert.Equal(t, 12.0, testutil.ToFloat64(AudioBand.WithLabelValues("low")))
	assert.Equal(t, 3.0, testutil.ToFloat64(AudioBand.WithLabelValues("high")))
}

func TestCountingSinkForwards(t *testing.T) {
	rec := &uniform.Recorder{}
	s := CountingSink{Next: rec}
	before := testutil.ToFloat64(UniformPushes.WithLabelValues(string(uniform.BurnSpeed)))

	s.SetFloat(uniform.BurnSpeed, 2)
	s.SetFloat(uniform.BurnSpeed, 3)
	s.SetInt(uniform.TimeFs, 1)

	assert.Equal(t, before+2, testutil.ToFloat64(UniformPushes.WithLabelValues(string(uniform.BurnSpeed))))
	assert.Equal(t, 3, rec.Len())
}

func TestServerServesMetrics(t *testing.T) {
	FramesTotal.Inc()
	srv := NewServer(":0")

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), "blaze_frames_total")
}

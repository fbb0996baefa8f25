// Package metrics exposes frame loop counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blaze/fire/params"
	"blaze/fire/uniform"
)

var (
	FramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaze_frames_total",
		Help: "Frames rendered.",
	})

	FramesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaze_frames_skipped_total",
		Help: "Frames skipped because the render target was not ready.",
	})

	FrameSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blaze_frame_seconds",
		Help:    "Time spent in one frame tick.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	UniformPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blaze_uniform_pushes_total",
			Help: "Uniform updates sent to the render target by uniform name.",
		},
		[]string{"name"},
	)

	ParamChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blaze_param_changes_total",
			Help: "Parameter fields synced after a change.",
		},
		[]string{"field"},
	)

	MeshRegenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaze_mesh_regenerations_total",
		Help: "Icosphere rebuilds.",
	})

	PresetReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blaze_preset_reloads_total",
		Help: "Presets applied from the watched file.",
	})

	AudioBand = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blaze_audio_band_level",
			Help: "Smoothed analyser level per band.",
		},
		[]string{"band"},
	)
)

// FrameObserver records frame results.
type FrameObserver struct{}

func (FrameObserver) FrameDone(elapsed time.Duration, changed params.FieldSet, low, high float64) {
	FramesTotal.Inc()
	FrameSeconds.Observe(elapsed.Seconds())
	for f := params.Field(0); f < params.NumFields; f++ {
		if changed.Has(f) {
			ParamChanges.WithLabelValues(f.String()).Inc()
		}
	}
	AudioBand.WithLabelValues("low").Set(low)
	AudioBand.WithLabelValues("high").Set(high)
}

func (FrameObserver) FrameSkipped(error) {
	FramesSkipped.Inc()
}

// CountingSink counts pushes by name before forwarding to Next.
type CountingSink struct {
	Next uniform.Sink
}

func (s CountingSink) count(name uniform.Name) {
	UniformPushes.WithLabelValues(string(name)).Inc()
}

func (s CountingSink) SetFloat(name uniform.Name, v float32) {
	s.count(name)
	s.Next.SetFloat(name, v)
}

func (s CountingSink) SetInt(name uniform.Name, v int64) {
	s.count(name)
	s.Next.SetInt(name, v)
}

func (s CountingSink) SetVec3(name uniform.Name, v mgl32.Vec3) {
	s.count(name)
	s.Next.SetVec3(name, v)
}

func (s CountingSink) SetVec4(name uniform.Name, v mgl32.Vec4) {
	s.count(name)
	s.Next.SetVec4(name, v)
}

func (s CountingSink) SetMat4(name uniform.Name, v mgl32.Mat4) {
	s.count(name)
	s.Next.SetMat4(name, v)
}

// NewServer serves /metrics on addr.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       15 * time.Second,
	}
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPReferenceChecker_Exists(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/api/Patients/7":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":7}`))
		case "/api/Patients/8":
			w.WriteHeader(http.StatusNoContent)
		case "/api/Patients/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	checker := NewPatientChecker(quietLogger(), srv.URL+"/", time.Second)
	ctx := context.Background()

	assert.True(t, checker.Exists(ctx, 7))
	assert.Equal(t, "/api/Patients/7", gotPath)
	assert.True(t, checker.Exists(ctx, 8))
	assert.False(t, checker.Exists(ctx, 9))
	assert.False(t, checker.Exists(ctx, 500))
}

func TestHTTPReferenceChecker_DoctorPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewDoctorChecker(quietLogger(), srv.URL, time.Second)
	assert.True(t, checker.Exists(context.Background(), 3))
	assert.Equal(t, "/api/Doctor/3", gotPath)
}

func TestHTTPReferenceChecker_UnreachableIsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	checker := NewPatientChecker(quietLogger(), url, 200*time.Millisecond)
	assert.False(t, checker.Exists(context.Background(), 1))
}

func TestHTTPReferenceChecker_TimeoutIsFalse(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	checker := NewPatientChecker(quietLogger(), srv.URL, 50*time.Millisecond)
	assert.False(t, checker.Exists(context.Background(), 1))
}

func TestHTTPReferenceChecker_NoBaseURL(t *testing.T) {
	checker := NewPatientChecker(quietLogger(), "", time.Second)
	assert.False(t, checker.Exists(context.Background(), 1))
}

func TestHTTPReferenceChecker_BreakerOpensOnTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	url := srv.URL
	srv.Close()

	checker := NewPatientChecker(quietLogger(), url, 100*time.Millisecond)
	ctx := context.Background()
	for i := 0; i < breakerFailureThreshold+3; i++ {
		assert.False(t, checker.Exists(ctx, 1))
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestHTTPReferenceChecker_NotFoundDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/api/Patients/1" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	checker := NewPatientChecker(quietLogger(), srv.URL, time.Second)
	ctx := context.Background()
	for i := 0; i < breakerFailureThreshold*2; i++ {
		assert.False(t, checker.Exists(ctx, 2))
	}
	assert.True(t, checker.Exists(ctx, 1))
	assert.Equal(t, int32(breakerFailureThreshold*2+1), calls.Load())
}

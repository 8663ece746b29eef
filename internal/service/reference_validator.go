package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const (
	PatientLookupPath = "/api/Patients/%d"
	DoctorLookupPath  = "/api/Doctor/%d"

	defaultReferenceTimeout = 5 * time.Second
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// ReferenceChecker confirms that an entity owned by another service exists.
// Exists never returns an error: anything other than a 2xx answer is "not proven".
type ReferenceChecker interface {
	Exists(ctx context.Context, id int64) bool
}

type ReferenceCheckerConfig struct {
	Name       string
	BaseURL    string
	PathFormat string
	Timeout    time.Duration
	Client     *http.Client
}

type httpReferenceChecker struct {
	name       string
	baseURL    string
	pathFormat string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker[int]
	log        *logrus.Logger
}

func NewHTTPReferenceChecker(log *logrus.Logger, cfg ReferenceCheckerConfig) ReferenceChecker {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultReferenceTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	breaker := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	})

	return &httpReferenceChecker{
		name:       cfg.Name,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		pathFormat: cfg.PathFormat,
		client:     client,
		breaker:    breaker,
		log:        log,
	}
}

func NewPatientChecker(log *logrus.Logger, baseURL string, timeout time.Duration) ReferenceChecker {
	return NewHTTPReferenceChecker(log, ReferenceCheckerConfig{
		Name:       "patient-service",
		BaseURL:    baseURL,
		PathFormat: PatientLookupPath,
		Timeout:    timeout,
	})
}

func NewDoctorChecker(log *logrus.Logger, baseURL string, timeout time.Duration) ReferenceChecker {
	return NewHTTPReferenceChecker(log, ReferenceCheckerConfig{
		Name:       "doctor-service",
		BaseURL:    baseURL,
		PathFormat: DoctorLookupPath,
		Timeout:    timeout,
	})
}

func (c *httpReferenceChecker) Exists(ctx context.Context, id int64) bool {
	if c.baseURL == "" {
		c.log.Warnf("No base url configured for %s, treating id %d as unknown", c.name, id)
		return false
	}

	// Only transport errors count against the breaker. A 404 is a valid answer.
	status, err := c.breaker.Execute(func() (int, error) {
		return c.lookup(ctx, id)
	})
	if err != nil {
		c.log.Warnf("Failed to look up id %d in %s: %+v", id, c.name, err)
		return false
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		c.log.Debugf("Lookup of id %d in %s returned %d", id, c.name, status)
		return false
	}
	return true
}

func (c *httpReferenceChecker) lookup(ctx context.Context, id int64) (int, error) {
	url := c.baseURL + fmt.Sprintf(c.pathFormat, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

package api

import (
	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/query"
	"github.com/starford/flowstate/internal/sse"
)

// OperationsResponse lists the query catalogue.
type OperationsResponse struct {
	Operations []query.Descriptor `json:"operations" validate:"required"`
}

// StatusResponse is the artifact cache status plus live event stream counters.
type StatusResponse struct {
	artifact.Status
	Events *sse.Stats `json:"events,omitempty"`
}

// ErrorResponse is the error body every failing endpoint returns.
type ErrorResponse = apperr.Body

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status" example:"ok" validate:"required"`
	State  string `json:"state,omitempty" example:"LOADED"`
}

// Package query answers the fixed catalogue of analytical questions against
// the cached artifact.
package query

import (
	"fmt"

	"github.com/starford/flowstate/internal/apperr"
)

// Operation names one member of the closed query catalogue.
type Operation string

const (
	OpBestHours           Operation = "get_best_hours"
	OpFlowStatePattern    Operation = "get_flow_state_pattern"
	OpAnalyzeProductivity Operation = "analyze_productivity"
	OpMusicImpact         Operation = "get_music_impact"
	OpPredictCommits      Operation = "predict_commits"
)

// Operations lists the catalogue in presentation order.
var Operations = []Operation{
	OpBestHours,
	OpFlowStatePattern,
	OpAnalyzeProductivity,
	OpMusicImpact,
	OpPredictCommits,
}

// ParseOperation resolves a wire name. Unknown names are NOT_FOUND.
func ParseOperation(name string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == name {
			return op, nil
		}
	}
	return "", apperr.New(apperr.CodeNotFound,
		fmt.Sprintf("Unknown operation %q", name),
		"List the available operations and use one of their names")
}

// Param describes one operation parameter.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Descriptor documents an operation for catalogue listings and tool schemas.
type Descriptor struct {
	Name        Operation `json:"name"`
	Description string    `json:"description"`
	Params      []Param   `json:"params"`
}

var descriptors = map[Operation]Descriptor{
	OpBestHours: {
		Name:        OpBestHours,
		Description: "Suggest the most productive coding hours. Uses weekday vs weekend commit rates as a proxy because the history has no hourly data.",
		Params:      []Param{},
	},
	OpFlowStatePattern: {
		Name:        OpFlowStatePattern,
		Description: "Identify the music/video pattern with the highest average commits and its boost over days with neither.",
		Params:      []Param{},
	},
	OpAnalyzeProductivity: {
		Name:        OpAnalyzeProductivity,
		Description: "Analyze productivity for a specific date: counts, weighted score and level.",
		Params: []Param{
			{Name: "date", Type: "string", Description: "Date in YYYY-MM-DD format", Required: true},
		},
	},
	OpMusicImpact: {
		Name:        OpMusicImpact,
		Description: "Compare average commits on days with music against days without.",
		Params:      []Param{},
	},
	OpPredictCommits: {
		Name:        OpPredictCommits,
		Description: "Predict commits for a planned day of music listening and video watching.",
		Params: []Param{
			{Name: "music_hours", Type: "number", Description: "Planned hours of music (>= 0)", Required: true},
			{Name: "video_minutes", Type: "number", Description: "Planned minutes of video (>= 0)", Required: true},
		},
	},
}

// Describe returns the descriptor for op.
func Describe(op Operation) Descriptor {
	return descriptors[op]
}

// Catalogue returns every descriptor in presentation order.
func Catalogue() []Descriptor {
	out := make([]Descriptor, 0, len(Operations))
	for _, op := range Operations {
		out = append(out, descriptors[op])
	}
	return out
}

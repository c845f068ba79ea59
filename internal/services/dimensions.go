package services

// Dimension is one of the fixed feedback categories a survey measures.
type Dimension string

const (
	DimensionClarity Dimension = "clarity"
	DimensionTooling Dimension = "tooling"
	DimensionProcess Dimension = "process"
	DimensionRework  Dimension = "rework"
	DimensionDelay   Dimension = "delay"
	DimensionSafety  Dimension = "safety"
)

// DimensionInfo carries display metadata for a feedback dimension.
type DimensionInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ProbingTopics []string `json:"probing_topics,omitempty"`
}

var dimensionOrder = []Dimension{
	DimensionClarity,
	DimensionTooling,
	DimensionProcess,
	DimensionRework,
	DimensionDelay,
	DimensionSafety,
}

var dimensionInfo = map[Dimension]DimensionInfo{
	DimensionClarity: {
		Name:        "Clarity",
		Description: "Clear requirements, objectives, and expectations",
		ProbingTopics: []string{
			"How well-defined are your work requirements?",
			"Do you understand what success looks like?",
			"Are expectations clearly communicated?",
		},
	},
	DimensionTooling: {
		Name:        "Tooling",
		Description: "Effectiveness and availability of tools and systems",
		ProbingTopics: []string{
			"How well do your tools support your work?",
			"Are there tool limitations that slow you down?",
			"Do you have the right technology for your tasks?",
		},
	},
	DimensionProcess: {
		Name:        "Process",
		Description: "How well processes support efficient work",
		ProbingTopics: []string{
			"Are your workflows well-designed?",
			"Do processes help or hinder your work?",
			"Is there unnecessary bureaucracy?",
		},
	},
	DimensionRework: {
		Name:        "Rework",
		Description: "Frequency of redoing work due to issues",
		ProbingTopics: []string{
			"How often do you need to redo completed work?",
			"What typically causes rework?",
			"Are changes to requirements common?",
		},
	},
	DimensionDelay: {
		Name:        "Delay",
		Description: "Waiting times and blocked work",
		ProbingTopics: []string{
			"How often are you blocked waiting on others?",
			"How quickly can you get the decisions you need?",
			"Do dependencies on other teams slow you down?",
		},
	},
	DimensionSafety: {
		Name:        "Safety",
		Description: "Comfort raising issues, mistakes, and concerns openly",
		ProbingTopics: []string{
			"How comfortable are you raising problems early?",
			"How are mistakes typically handled on your team?",
			"Can you ask for help without it counting against you?",
		},
	},
}

// AllDimensions returns the registry in its canonical order.
func AllDimensions() []Dimension {
	out := make([]Dimension, len(dimensionOrder))
	copy(out, dimensionOrder)
	return out
}

// DimensionCount is the size of the fixed registry.
func DimensionCount() int { return len(dimensionOrder) }

// InfoFor returns display metadata for a dimension.
func InfoFor(d Dimension) (DimensionInfo, bool) {
	info, ok := dimensionInfo[d]
	return info, ok
}

// ParseDimension validates a raw dimension string against the registry.
func ParseDimension(raw string) (Dimension, bool) {
	d := Dimension(raw)
	_, ok := dimensionInfo[d]
	return d, ok
}

// NewCoverage returns a coverage map with every registry dimension unset.
func NewCoverage() map[Dimension]bool {
	m := make(map[Dimension]bool, len(dimensionOrder))
	for _, d := range dimensionOrder {
		m[d] = false
	}
	return m
}

// NextUncovered returns the first registry dimension not yet covered.
func NextUncovered(covered map[Dimension]bool) (Dimension, bool) {
	for _, d := range dimensionOrder {
		if !covered[d] {
			return d, true
		}
	}
	return "", false
}

// AllCovered reports whether every registry dimension is covered.
func AllCovered(covered map[Dimension]bool) bool {
	for _, d := range dimensionOrder {
		if !covered[d] {
			return false
		}
	}
	return true
}

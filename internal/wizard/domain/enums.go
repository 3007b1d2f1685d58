package domain

import "strings"

// Complexity is the difficulty level attached to a project.
type Complexity string

const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// Valid reports whether c is one of the known complexity levels.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityBeginner, ComplexityIntermediate, ComplexityAdvanced:
		return true
	}
	return false
}

// ParseComplexity normalizes free-form AI output ("Intermediate ", "ADVANCED") into a Complexity.
func ParseComplexity(s string) (Complexity, bool) {
	c := Complexity(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// ConfirmationState tracks whether an invited member accepted.
type ConfirmationState string

const (
	ConfirmationPending   ConfirmationState = "pending"
	ConfirmationConfirmed ConfirmationState = "confirmed"
)

// Member roles. Any other non-empty role string is accepted as a custom role.
const (
	RoleCreator = "creator"
	RoleMember  = "member"
)

// Step identifies a wizard step. Steps are 1-based.
type Step int

const (
	StepIdeation Step = iota + 1
	StepAIAnalysis
	StepTeamSetup
	StepPlanning
	StepLaunch
)

// StepCount is the number of steps in the project creation wizard.
const StepCount = int(StepLaunch)

var stepNames = map[Step]string{
	StepIdeation:   "ideation",
	StepAIAnalysis: "ai_analysis",
	StepTeamSetup:  "team_setup",
	StepPlanning:   "planning",
	StepLaunch:     "launch",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// JumpPolicy decides which free jumps (step indicator clicks) are permitted.
type JumpPolicy string

const (
	// JumpReachable allows revisiting any step up to the furthest step reached through Next.
	JumpReachable JumpPolicy = "reachable"
	// JumpFree allows jumping to any step, skipping gating entirely.
	JumpFree JumpPolicy = "free"
)

// ParseJumpPolicy falls back to JumpReachable for unknown values.
func ParseJumpPolicy(s string) JumpPolicy {
	if JumpPolicy(strings.ToLower(strings.TrimSpace(s))) == JumpFree {
		return JumpFree
	}
	return JumpReachable
}

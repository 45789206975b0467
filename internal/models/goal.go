package models

// GoalTypeMaster is the only goal type currently supported: master N topics
// within one week.
const GoalTypeMaster = "master"

// Goal is the optional weekly mastery quota. StartOfWeek is a local
// YYYY-MM-DD date key anchoring the week the goal was set for.
type Goal struct {
	Type        string `json:"type"`
	Target      int    `json:"target"`
	StartOfWeek string `json:"startOfWeek"`
}

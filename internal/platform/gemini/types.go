package gemini

import "github.com/nexuslearn/nexus-api/internal/lessonplan"

// promptData represents the data passed to the prompt template
type promptData struct {
	GradeLevel  int
	DomainFocus string
	Strengths   []lessonplan.FocusNode
	Weaknesses  []lessonplan.FocusNode
	DueReviews  []lessonplan.FocusNode
}

// ResponseSchema represents the expected structure of a lesson plan from
// the Gemini API
type ResponseSchema struct {
	// Title is a short name for the plan
	Title string `json:"title"`

	// Summary is a one-paragraph overview of the plan
	Summary string `json:"summary"`

	// Items is the ordered list of suggested activities
	Items []ItemSchema `json:"items"`
}

// ItemSchema represents a single suggested activity in the API response
type ItemSchema struct {
	// NodeCode identifies the knowledge node the activity targets
	NodeCode string `json:"node_code"`

	// Activity describes what the student should do
	Activity string `json:"activity"`

	// Reason explains why this activity was chosen
	Reason string `json:"reason,omitempty"`
}

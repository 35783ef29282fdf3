package models

// Scenario is a practice prompt the user responds to while being recorded.
type Scenario struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

var Scenarios = []Scenario{
	{ID: 1, Title: "Interview Introduction", Prompt: "Tell me about yourself in 30 seconds."},
	{ID: 2, Title: "Meet a New Friend", Prompt: "Introduce yourself casually to someone new."},
	{ID: 3, Title: "Classroom Introduction", Prompt: "Introduce yourself on the first day of class."},
	{ID: 4, Title: "Workplace Conversation", Prompt: "Explain your role to a teammate."},
}

// ScenarioByID returns the scenario with the given id.
func ScenarioByID(id int) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

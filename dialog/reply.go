package dialog

// Reply is a platform-neutral response descriptor produced by the engine.
// The transport layer decides how each kind renders on the wire.
type Reply interface {
	reply()
}

// Prompt asks the user for input. Menu, when non-empty, lists the labels to
// offer as a quick-pick menu; the user may still type free text.
type Prompt struct {
	Text string
	Menu []string
}

func (Prompt) reply() {}

// AdvisorCard presents the matched advisor as the conversation outcome.
type AdvisorCard struct {
	Name        string
	Description string
	ImageURL    string
}

func (AdvisorCard) reply() {}

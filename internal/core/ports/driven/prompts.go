package driven

// PromptStore loads editable prompt templates by name.
type PromptStore interface {
	// Load returns the template for name. Stores fall back to a built-in
	// default for known names and return an error for unknown ones.
	Load(name string) (string, error)

	// Reload drops cached templates so later loads pick up edits.
	Reload()
}

// PromptAgentSystem is the reasoning loop's system prompt. The template
// takes one %s: the active scope description.
const PromptAgentSystem = "agent_system"

// PromptStoreAware is implemented by services whose prompts can be swapped
// after construction. Without a store they use their compiled-in defaults.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}

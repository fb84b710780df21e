// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the studyrag home directory (~/.studyrag
// unless STUDYRAG_HOME is set).
//
// Adapters:
//   - ConfigStore: TOML configuration with dotted keys mapped to tables
//   - PromptStore: user-editable prompt templates
package file

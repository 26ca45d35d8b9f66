// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
//   - LoadCategoryRules: YAML filename category rules
//   - LoadDotEnv and ApplyEnvOverrides: environment configuration
package file

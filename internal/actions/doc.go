// Package actions provides high-level business logic for CLI commands.
//
// Each action corresponds to a reaper command (menu, list, delete, config)
// and orchestrates the engine, configuration and prompts.
//
// Key patterns:
//   - Actions accept runtime.Context which provides Engine, Splog, and Config
//   - Actions are stateless - the working set lives in the Engine
//   - Actions ask questions through tui.Prompter so tests can script answers
package actions

// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the decision task lifecycle (load, build,
// submit), decoupled from any specific entrypoint like a CLI.
package app

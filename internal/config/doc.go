// Package config defines the format-agnostic model of a decision graph
// definition, along with the Loader interface implemented by concrete
// configuration formats.
//
// The model keeps attribute values as unevaluated expressions. They are
// evaluated one task at a time, once the tasks they reference have been
// declared, by the decision package.
package config

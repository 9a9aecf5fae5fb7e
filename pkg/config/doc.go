// Package config loads engine bootstrap parameters from YAML. It is
// an ambient convenience for cmd/ binaries only: the core transport
// and presentation packages never depend on it, taking explicit
// constructor arguments instead.
package config

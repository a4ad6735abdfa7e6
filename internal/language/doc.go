// Package language maps the language names providers report ("English",
// "Korean") and ISO 639 codes onto one normalized form.
//
// The classifier uses it to decide whether a show without a country is an
// English-language web original; the CLI uses it for display.
package language

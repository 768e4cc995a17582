// Package configs provides the embedded configuration template for bvs.
//
// The template is embedded at build time with //go:embed so `bvs init` can
// write a commented starting config without shipping extra files alongside
// the binary.
package configs

import _ "embed"

// ConfigTemplate is the annotated starting configuration written by
// `bvs init`. Every value in it matches the built-in defaults.
//
//go:embed bvs.example.yaml
var ConfigTemplate string

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "fmt"

// Version represents a GLSL language version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool
}

// Common GLSL versions.
var (
	// Version410 is the desktop profile the renderer requests.
	Version410 = Version{Major: 4, Minor: 10}
	// Version420 is the first version with the layout qualifiers that
	// GL_ARB_shading_language_420pack backports to older targets.
	Version420 = Version{Major: 4, Minor: 20}
)

// String returns the payload of the version directive, e.g. "410 core".
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns the numeric version, e.g. 410.
func (v Version) VersionNumber() int {
	return int(v.Major)*100 + int(v.Minor)
}

// Options configures GLSL output.
type Options struct {
	// LangVersion selects the target GLSL version. The zero value
	// means Version410.
	LangVersion Version
	// Enable420Pack requests GL_ARB_shading_language_420pack when the
	// target version predates 4.20, keeping layout qualifier syntax
	// uniform across the driver matrix.
	Enable420Pack bool
}

// DefaultOptions returns the options the recompiler uses: GLSL 4.10
// core with the 420pack extension.
func DefaultOptions() Options {
	return Options{
		LangVersion:   Version410,
		Enable420Pack: true,
	}
}

// TranslationInfo contains metadata about compiled GLSL.
type TranslationInfo struct {
	// EntryPointNames maps SPIR-V entry point names to GLSL function
	// names. GLSL requires the entry point to be called main.
	EntryPointNames map[string]string
	// UsedExtensions lists the extensions the generated code enables.
	UsedExtensions []string
	// RequiredVersion is the minimum GLSL version for the output.
	RequiredVersion Version
}

// Compile translates a SPIR-V binary to GLSL source code.
func Compile(binary []byte, options Options) (string, TranslationInfo, error) {
	if options.LangVersion == (Version{}) {
		options.LangVersion = Version410
	}

	mod, err := parseModule(binary)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	w := newWriter(mod, options)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}
	return w.out.String(), w.info, nil
}

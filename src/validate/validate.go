// Package validate checks a resolved build configuration before it is handed
// to the build engine.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sofmeright/droidconf/src/descriptor"
)

// applicationIDPattern is the Android application id shape: at least two
// dot-separated segments, each starting with a letter.
var applicationIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)

// Validated is a configuration that passed Validate.
type Validated struct {
	cfg descriptor.BuildConfig
}

// Config returns a copy of the validated configuration.
func (v *Validated) Config() descriptor.BuildConfig {
	return v.cfg.Clone()
}

// ApplicationID returns the validated application id.
func (v *Validated) ApplicationID() string { return v.cfg.ApplicationID }

// SDK returns the validated SDK bounds.
func (v *Validated) SDK() descriptor.SdkBounds { return v.cfg.SDK }

// Validate checks cfg and reports the first violation in this order: SDK
// bounds, application id, then each build type in declaration order (its
// shrink/minify pairing, then each proguard file reference in order).
// It has no side effects.
func Validate(cfg descriptor.BuildConfig) (*Validated, error) {
	if err := checkSdkBounds(cfg.SDK); err != nil {
		return nil, err
	}
	if err := checkApplicationID(cfg.ApplicationID); err != nil {
		return nil, err
	}
	for _, bt := range cfg.BuildTypes {
		if err := checkBuildType(bt); err != nil {
			return nil, err
		}
	}
	return &Validated{cfg: cfg.Clone()}, nil
}

func checkSdkBounds(sdk descriptor.SdkBounds) error {
	switch {
	case sdk.Min < 1:
		return &ConfigError{
			Kind:    InvalidSdkBounds,
			Field:   "minSdk",
			Message: fmt.Sprintf("must be at least 1, got %d", sdk.Min),
		}
	case sdk.Min > sdk.Target:
		return &ConfigError{
			Kind:    InvalidSdkBounds,
			Field:   "minSdk",
			Message: fmt.Sprintf("%d is greater than targetSdk %d", sdk.Min, sdk.Target),
		}
	case sdk.Target > sdk.Compile:
		return &ConfigError{
			Kind:    InvalidSdkBounds,
			Field:   "targetSdk",
			Message: fmt.Sprintf("%d is greater than compileSdk %d", sdk.Target, sdk.Compile),
		}
	}
	return nil
}

func checkApplicationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ConfigError{Kind: InvalidIdentifier, Field: "applicationId", Message: "is required"}
	}
	if !applicationIDPattern.MatchString(id) {
		return &ConfigError{
			Kind:    InvalidIdentifier,
			Field:   "applicationId",
			Message: fmt.Sprintf("%q is not a reverse-domain identifier (e.g. com.example.app)", id),
		}
	}
	return nil
}

func checkBuildType(bt descriptor.BuildType) error {
	if bt.ShrinkResources && !bt.Minify {
		return &ConfigError{
			Kind:    InconsistentShrinkFlag,
			Field:   "buildTypes." + bt.Name + ".shrinkResources",
			Message: "resource shrinking requires minify to be enabled",
		}
	}
	for i, ref := range bt.ProguardFiles {
		if strings.TrimSpace(ref.Path) == "" {
			return &ConfigError{
				Kind:    EmptyFileReference,
				Field:   fmt.Sprintf("buildTypes.%s.proguardFiles[%d]", bt.Name, i),
				Message: "file reference is empty",
			}
		}
	}
	return nil
}

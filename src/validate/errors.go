package validate

import "fmt"

// Kind classifies a validation failure.
type Kind int

const (
	InvalidSdkBounds Kind = iota + 1
	InvalidIdentifier
	InconsistentShrinkFlag
	EmptyFileReference
)

func (k Kind) String() string {
	switch k {
	case InvalidSdkBounds:
		return "InvalidSdkBounds"
	case InvalidIdentifier:
		return "InvalidIdentifier"
	case InconsistentShrinkFlag:
		return "InconsistentShrinkFlag"
	case EmptyFileReference:
		return "EmptyFileReference"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ConfigError is a validation failure. Field names the offending setting in
// build-script terms, e.g. "buildTypes.release.shrinkResources".
type ConfigError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is matches any ConfigError of the same Kind, so errors.Is(err,
// ErrInvalidSdkBounds) works on wrapped errors.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidSdkBounds       = &ConfigError{Kind: InvalidSdkBounds, Message: "invalid sdk bounds"}
	ErrInvalidIdentifier      = &ConfigError{Kind: InvalidIdentifier, Message: "invalid application id"}
	ErrInconsistentShrinkFlag = &ConfigError{Kind: InconsistentShrinkFlag, Message: "resource shrinking requires minification"}
	ErrEmptyFileReference     = &ConfigError{Kind: EmptyFileReference, Message: "empty file reference"}
)

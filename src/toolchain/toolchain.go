// Package toolchain supplies the variables the Flutter Gradle plugin injects into
// an Android build script (flutter.compileSdkVersion, flutter.versionCode, ...).
package toolchain

import (
	"os"
	"sort"
	"strings"
)

// Provider looks up a toolchain variable by name.
type Provider interface {
	Lookup(name string) (string, bool)
}

// Static is a fixed variable set.
type Static map[string]string

func (s Static) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Env reads variables from the process environment. flutter.compileSdkVersion
// with prefix DROIDCONF_ is read from DROIDCONF_FLUTTER_COMPILESDKVERSION.
type Env struct {
	Prefix string
	// Getenv defaults to os.LookupEnv.
	Getenv func(string) (string, bool)
}

// EnvName returns the environment variable name for a toolchain variable.
func (e Env) EnvName(name string) string {
	var b strings.Builder
	b.WriteString(e.Prefix)
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (e Env) Lookup(name string) (string, bool) {
	get := e.Getenv
	if get == nil {
		get = os.LookupEnv
	}
	return get(e.EnvName(name))
}

// Chain asks each provider in order; the first that knows the name wins.
type Chain []Provider

func (c Chain) Lookup(name string) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if v, ok := p.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// Stock values of the Flutter Gradle plugin (FlutterExtension).
const (
	DefaultCompileSdk  = "35"
	DefaultTargetSdk   = "35"
	DefaultMinSdk      = "21"
	DefaultNdkVersion  = "27.0.12077973"
	DefaultVersionCode = "1"
	DefaultVersionName = "1.0.0"
)

// Defaults returns the Flutter plugin's stock variables.
func Defaults() Static {
	return Static{
		"flutter.compileSdkVersion": DefaultCompileSdk,
		"flutter.targetSdkVersion":  DefaultTargetSdk,
		"flutter.minSdkVersion":     DefaultMinSdk,
		"flutter.ndkVersion":        DefaultNdkVersion,
		"flutter.versionCode":       DefaultVersionCode,
		"flutter.versionName":       DefaultVersionName,
	}
}

// Snapshot records the values the given names resolve to, for cache keys and
// reports. Unknown names are omitted.
func Snapshot(p Provider, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := p.Lookup(n); ok {
			out[n] = v
		}
	}
	return out
}

// SortedKeys returns the keys of a snapshot in order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package descriptor models an Android application build descriptor and loads it
// from Gradle Kotlin DSL, YAML or TOML sources.
package descriptor

// SdkBounds holds the three SDK levels a build binds to.
type SdkBounds struct {
	Min     int `yaml:"min" json:"min"`
	Target  int `yaml:"target" json:"target"`
	Compile int `yaml:"compile" json:"compile"`
}

// FileRef is a proguard rules file reference. Default marks files shipped inside
// the Android SDK (getDefaultProguardFile), which are never resolved locally.
type FileRef struct {
	Path    string `yaml:"path" json:"path"`
	Default bool   `yaml:"default,omitempty" json:"default,omitempty"`
}

// BuildType is a single entry of the buildTypes block.
type BuildType struct {
	Name            string    `yaml:"name" json:"name"`
	SigningConfig   string    `yaml:"signing_config,omitempty" json:"signing_config,omitempty"`
	Minify          bool      `yaml:"minify" json:"minify"`
	ShrinkResources bool      `yaml:"shrink_resources" json:"shrink_resources"`
	ProguardFiles   []FileRef `yaml:"proguard_files,omitempty" json:"proguard_files,omitempty"`
	Line            int       `yaml:"-" json:"-"`
}

// LintOptions mirrors the lint block.
type LintOptions struct {
	Disable            []string `yaml:"disable,omitempty" json:"disable,omitempty"`
	CheckReleaseBuilds bool     `yaml:"check_release_builds" json:"check_release_builds"`
	AbortOnError       bool     `yaml:"abort_on_error" json:"abort_on_error"`
}

// Disabled reports whether the named lint rule is suppressed.
func (l LintOptions) Disabled(rule string) bool {
	for _, d := range l.Disable {
		if d == rule {
			return true
		}
	}
	return false
}

// Dependency is one entry of the dependencies block.
type Dependency struct {
	Configuration string `yaml:"configuration" json:"configuration"`
	Coordinate    string `yaml:"coordinate" json:"coordinate"`
	Line          int    `yaml:"-" json:"-"`
}

// Module returns the group:artifact part of a Maven coordinate.
func (d Dependency) Module() string {
	group, artifact, _ := splitCoordinate(d.Coordinate)
	if artifact == "" {
		return group
	}
	return group + ":" + artifact
}

// Version returns the version part of a Maven coordinate, or "".
func (d Dependency) Version() string {
	_, _, version := splitCoordinate(d.Coordinate)
	return version
}

func splitCoordinate(c string) (group, artifact, version string) {
	parts := make([]string, 0, 3)
	start := 0
	for i := 0; i < len(c); i++ {
		if c[i] == ':' {
			parts = append(parts, c[start:i])
			start = i + 1
		}
	}
	parts = append(parts, c[start:])
	switch len(parts) {
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], parts[1], parts[2]
	}
}

// Descriptor is a build descriptor as written, before toolchain variables are
// substituted.
type Descriptor struct {
	// Source is the file the descriptor was read from.
	Source string `yaml:"-" json:"-"`

	Plugins       []string
	Namespace     string
	ApplicationID string
	MinSdk        Value
	TargetSdk     Value
	CompileSdk    Value
	NdkVersion    Value
	VersionCode   Value
	VersionName   Value

	Language          LanguageLevel
	JvmTarget         string
	DesugaringEnabled bool
	MultidexEnabled   bool

	BuildTypes    []BuildType
	Lint          LintOptions
	Dependencies  []Dependency
	FlutterSource string

	// Lines records where notable keys were declared, keyed by dotted name
	// (for example "defaultConfig.applicationId"). Zero when unknown.
	Lines map[string]int
}

// Line returns the recorded source line for key, or 0.
func (d *Descriptor) Line(key string) int {
	if d == nil || d.Lines == nil {
		return 0
	}
	return d.Lines[key]
}

func (d *Descriptor) mark(key string, line int) {
	if line <= 0 {
		return
	}
	if d.Lines == nil {
		d.Lines = map[string]int{}
	}
	d.Lines[key] = line
}

// BuildConfig is a fully resolved descriptor.
type BuildConfig struct {
	Plugins           []string      `yaml:"plugins,omitempty" json:"plugins,omitempty"`
	Namespace         string        `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	ApplicationID     string        `yaml:"application_id" json:"application_id"`
	SDK               SdkBounds     `yaml:"sdk" json:"sdk"`
	NdkVersion        string        `yaml:"ndk_version,omitempty" json:"ndk_version,omitempty"`
	VersionCode       int           `yaml:"version_code" json:"version_code"`
	VersionName       string        `yaml:"version_name" json:"version_name"`
	Language          LanguageLevel `yaml:"language_level,omitempty" json:"language_level,omitempty"`
	JvmTarget         string        `yaml:"jvm_target,omitempty" json:"jvm_target,omitempty"`
	DesugaringEnabled bool          `yaml:"desugaring" json:"desugaring"`
	MultidexEnabled   bool          `yaml:"multidex" json:"multidex"`
	BuildTypes        []BuildType   `yaml:"build_types" json:"build_types"`
	Lint              LintOptions   `yaml:"lint" json:"lint"`
	Dependencies      []Dependency  `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	FlutterSource     string        `yaml:"flutter_source,omitempty" json:"flutter_source,omitempty"`
}

// BuildType returns the named build type.
func (c *BuildConfig) BuildType(name string) (BuildType, bool) {
	for _, bt := range c.BuildTypes {
		if bt.Name == name {
			return bt, true
		}
	}
	return BuildType{}, false
}

// DependenciesIn returns dependencies declared under the given configuration
// (e.g. "implementation", "coreLibraryDesugaring").
func (c *BuildConfig) DependenciesIn(configuration string) []Dependency {
	var out []Dependency
	for _, d := range c.Dependencies {
		if d.Configuration == configuration {
			out = append(out, d)
		}
	}
	return out
}

// HasPlugin reports whether the plugin id is applied.
func (c *BuildConfig) HasPlugin(id string) bool {
	for _, p := range c.Plugins {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (c BuildConfig) Clone() BuildConfig {
	out := c
	out.Plugins = append([]string(nil), c.Plugins...)
	out.Lint.Disable = append([]string(nil), c.Lint.Disable...)
	out.Dependencies = append([]Dependency(nil), c.Dependencies...)
	out.BuildTypes = make([]BuildType, len(c.BuildTypes))
	for i, bt := range c.BuildTypes {
		bt.ProguardFiles = append([]FileRef(nil), bt.ProguardFiles...)
		out.BuildTypes[i] = bt
	}
	if c.BuildTypes == nil {
		out.BuildTypes = nil
	}
	return out
}

package descriptor

import (
	"fmt"
)

// document is the shared shape of YAML and TOML descriptors.
//
//	application_id: com.example.app
//	sdk: {min: 21, target: "${flutter.targetSdkVersion}", compile: 35}
//	build_types:
//	  release: {minify: true, shrink_resources: true, proguard_files: [proguard-rules.pro]}
type document struct {
	Plugins       []string       `yaml:"plugins" toml:"plugins"`
	Namespace     string         `yaml:"namespace" toml:"namespace"`
	ApplicationID string         `yaml:"application_id" toml:"application_id"`
	SDK           documentSDK    `yaml:"sdk" toml:"sdk"`
	NdkVersion    any            `yaml:"ndk_version" toml:"ndk_version"`
	VersionCode   any            `yaml:"version_code" toml:"version_code"`
	VersionName   any            `yaml:"version_name" toml:"version_name"`
	LanguageLevel any            `yaml:"language_level" toml:"language_level"`
	JvmTarget     any            `yaml:"jvm_target" toml:"jvm_target"`
	Desugaring    bool           `yaml:"desugaring" toml:"desugaring"`
	Multidex      bool           `yaml:"multidex" toml:"multidex"`
	Lint          documentLint   `yaml:"lint" toml:"lint"`
	Dependencies  []documentDep  `yaml:"dependencies" toml:"dependencies"`
	FlutterSource string         `yaml:"flutter_source" toml:"flutter_source"`
	BuildTypes    []documentType `yaml:"-" toml:"build_types"`
}

type documentSDK struct {
	Min     any `yaml:"min" toml:"min"`
	Target  any `yaml:"target" toml:"target"`
	Compile any `yaml:"compile" toml:"compile"`
}

type documentLint struct {
	Disable            []string `yaml:"disable" toml:"disable"`
	CheckReleaseBuilds *bool    `yaml:"check_release_builds" toml:"check_release_builds"`
	AbortOnError       *bool    `yaml:"abort_on_error" toml:"abort_on_error"`
}

type documentDep struct {
	Configuration string `yaml:"configuration" toml:"configuration"`
	Coordinate    string `yaml:"coordinate" toml:"coordinate"`
}

type documentType struct {
	Name            string   `yaml:"name" toml:"name"`
	SigningConfig   string   `yaml:"signing_config" toml:"signing_config"`
	Minify          bool     `yaml:"minify" toml:"minify"`
	ShrinkResources bool     `yaml:"shrink_resources" toml:"shrink_resources"`
	ProguardFiles   []string `yaml:"proguard_files" toml:"proguard_files"`
	DefaultProguard []string `yaml:"default_proguard_files" toml:"default_proguard_files"`
}

func (bt documentType) buildType() BuildType {
	out := BuildType{
		Name:            bt.Name,
		SigningConfig:   bt.SigningConfig,
		Minify:          bt.Minify,
		ShrinkResources: bt.ShrinkResources,
	}
	for _, p := range bt.DefaultProguard {
		out.ProguardFiles = append(out.ProguardFiles, FileRef{Path: p, Default: true})
	}
	for _, p := range bt.ProguardFiles {
		out.ProguardFiles = append(out.ProguardFiles, FileRef{Path: p})
	}
	return out
}

// descriptor converts the decoded document. Lint defaults follow the Android
// Gradle plugin: release builds are checked and errors abort.
func (doc *document) descriptor() (*Descriptor, error) {
	d := &Descriptor{
		Plugins:           doc.Plugins,
		Namespace:         doc.Namespace,
		ApplicationID:     doc.ApplicationID,
		DesugaringEnabled: doc.Desugaring,
		MultidexEnabled:   doc.Multidex,
		FlutterSource:     doc.FlutterSource,
		Lint: LintOptions{
			Disable:            doc.Lint.Disable,
			CheckReleaseBuilds: true,
			AbortOnError:       true,
		},
	}
	if doc.Lint.CheckReleaseBuilds != nil {
		d.Lint.CheckReleaseBuilds = *doc.Lint.CheckReleaseBuilds
	}
	if doc.Lint.AbortOnError != nil {
		d.Lint.AbortOnError = *doc.Lint.AbortOnError
	}

	values := []struct {
		field string
		raw   any
		dst   *Value
	}{
		{"sdk.min", doc.SDK.Min, &d.MinSdk},
		{"sdk.target", doc.SDK.Target, &d.TargetSdk},
		{"sdk.compile", doc.SDK.Compile, &d.CompileSdk},
		{"ndk_version", doc.NdkVersion, &d.NdkVersion},
		{"version_code", doc.VersionCode, &d.VersionCode},
		{"version_name", doc.VersionName, &d.VersionName},
	}
	for _, v := range values {
		parsed, err := parseValue(v.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.field, err)
		}
		*v.dst = parsed
	}

	if doc.LanguageLevel != nil {
		v, err := parseValue(doc.LanguageLevel)
		if err != nil {
			return nil, fmt.Errorf("language_level: %w", err)
		}
		if d.Language, err = ParseLanguageLevel(v.Literal); err != nil {
			return nil, fmt.Errorf("language_level: %w", err)
		}
	}
	if doc.JvmTarget != nil {
		v, err := parseValue(doc.JvmTarget)
		if err != nil {
			return nil, fmt.Errorf("jvm_target: %w", err)
		}
		d.JvmTarget = v.Literal
	}

	for _, dep := range doc.Dependencies {
		d.Dependencies = append(d.Dependencies, Dependency{
			Configuration: dep.Configuration,
			Coordinate:    dep.Coordinate,
		})
	}

	seen := map[string]bool{}
	for i, bt := range doc.BuildTypes {
		if bt.Name == "" {
			return nil, fmt.Errorf("build_types[%d]: name is required", i)
		}
		if seen[bt.Name] {
			return nil, fmt.Errorf("build_types[%d]: duplicate build type %q", i, bt.Name)
		}
		seen[bt.Name] = true
		d.BuildTypes = append(d.BuildTypes, bt.buildType())
	}
	return d, nil
}

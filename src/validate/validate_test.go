package validate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sofmeright/droidconf/src/descriptor"
)

func baseConfig() descriptor.BuildConfig {
	return descriptor.BuildConfig{
		ApplicationID: "com.example.myapp",
		SDK:           descriptor.SdkBounds{Min: 21, Target: 34, Compile: 34},
		BuildTypes: []descriptor.BuildType{
			{
				Name:            "release",
				Minify:          true,
				ShrinkResources: true,
				ProguardFiles: []descriptor.FileRef{
					{Path: "proguard-android.txt", Default: true},
					{Path: "proguard-rules.pro"},
				},
			},
			{Name: "debug"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*descriptor.BuildConfig)
		want   error // nil for success
		field  string
	}{
		{
			name:   "release shrinks and minifies, debug does neither",
			mutate: func(*descriptor.BuildConfig) {},
		},
		{
			name: "all bounds equal",
			mutate: func(c *descriptor.BuildConfig) {
				c.SDK = descriptor.SdkBounds{Min: 34, Target: 34, Compile: 34}
			},
		},
		{
			name: "release shrinks without minify",
			mutate: func(c *descriptor.BuildConfig) {
				c.BuildTypes = []descriptor.BuildType{{Name: "release", ShrinkResources: true}}
			},
			want:  ErrInconsistentShrinkFlag,
			field: "buildTypes.release.shrinkResources",
		},
		{
			name: "min above target",
			mutate: func(c *descriptor.BuildConfig) {
				c.SDK = descriptor.SdkBounds{Min: 34, Target: 21, Compile: 34}
			},
			want:  ErrInvalidSdkBounds,
			field: "minSdk",
		},
		{
			name: "target above compile",
			mutate: func(c *descriptor.BuildConfig) {
				c.SDK = descriptor.SdkBounds{Min: 21, Target: 35, Compile: 34}
			},
			want:  ErrInvalidSdkBounds,
			field: "targetSdk",
		},
		{
			name: "min zero",
			mutate: func(c *descriptor.BuildConfig) {
				c.SDK = descriptor.SdkBounds{}
			},
			want:  ErrInvalidSdkBounds,
			field: "minSdk",
		},
		{
			name:   "empty application id",
			mutate: func(c *descriptor.BuildConfig) { c.ApplicationID = "" },
			want:   ErrInvalidIdentifier,
			field:  "applicationId",
		},
		{
			name:   "single segment application id",
			mutate: func(c *descriptor.BuildConfig) { c.ApplicationID = "myapp" },
			want:   ErrInvalidIdentifier,
		},
		{
			name:   "segment starting with digit",
			mutate: func(c *descriptor.BuildConfig) { c.ApplicationID = "com.1example.app" },
			want:   ErrInvalidIdentifier,
		},
		{
			name:   "hyphen in application id",
			mutate: func(c *descriptor.BuildConfig) { c.ApplicationID = "com.my-app.x" },
			want:   ErrInvalidIdentifier,
		},
		{
			name: "empty proguard reference",
			mutate: func(c *descriptor.BuildConfig) {
				c.BuildTypes[0].ProguardFiles[1].Path = "  "
			},
			want:  ErrEmptyFileReference,
			field: "buildTypes.release.proguardFiles[1]",
		},
		{
			name: "sdk bounds reported before identifier",
			mutate: func(c *descriptor.BuildConfig) {
				c.SDK.Min = 40
				c.ApplicationID = ""
			},
			want: ErrInvalidSdkBounds,
		},
		{
			name: "identifier reported before build types",
			mutate: func(c *descriptor.BuildConfig) {
				c.ApplicationID = "x"
				c.BuildTypes[0].Minify = false
			},
			want: ErrInvalidIdentifier,
		},
		{
			name: "build types reported in declaration order",
			mutate: func(c *descriptor.BuildConfig) {
				c.BuildTypes = []descriptor.BuildType{
					{Name: "staging", ProguardFiles: []descriptor.FileRef{{Path: ""}}},
					{Name: "release", ShrinkResources: true},
				}
			},
			want:  ErrEmptyFileReference,
			field: "buildTypes.staging.proguardFiles[0]",
		},
		{
			name: "shrink flag checked before that build type's files",
			mutate: func(c *descriptor.BuildConfig) {
				c.BuildTypes = []descriptor.BuildType{
					{Name: "release", ShrinkResources: true, ProguardFiles: []descriptor.FileRef{{Path: ""}}},
				}
			},
			want: ErrInconsistentShrinkFlag,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(&cfg)

			v, err := Validate(cfg)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				if diff := cmp.Diff(cfg, v.Config()); diff != "" {
					t.Errorf("Validated.Config mismatch (-want +got):\n%s", diff)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate error = %v; want %v", err, tc.want)
			}
			if v != nil {
				t.Errorf("Validate returned a config along with error %v", err)
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("error %T is not a *ConfigError", err)
			}
			if tc.field != "" && cerr.Field != tc.field {
				t.Errorf("Field = %q; want %q", cerr.Field, tc.field)
			}
		})
	}
}

func TestValidateIdempotent(t *testing.T) {
	for _, cfg := range []descriptor.BuildConfig{
		baseConfig(),
		{ApplicationID: "a.b", SDK: descriptor.SdkBounds{Min: 30, Target: 21, Compile: 34}},
	} {
		v1, err1 := Validate(cfg)
		v2, err2 := Validate(cfg)
		if fmt.Sprint(err1) != fmt.Sprint(err2) {
			t.Errorf("errors differ: %v vs %v", err1, err2)
		}
		if (v1 == nil) != (v2 == nil) {
			t.Fatalf("results differ: %v vs %v", v1, v2)
		}
		if v1 != nil {
			if diff := cmp.Diff(v1.Config(), v2.Config()); diff != "" {
				t.Errorf("configs differ (-first +second):\n%s", diff)
			}
		}
	}
}

// Any ordering of min ≤ target ≤ compile validates; any violation does not.
func TestValidateSdkOrdering(t *testing.T) {
	for min := 1; min <= 4; min++ {
		for target := 1; target <= 4; target++ {
			for compile := 1; compile <= 4; compile++ {
				cfg := baseConfig()
				cfg.SDK = descriptor.SdkBounds{Min: min, Target: target, Compile: compile}
				_, err := Validate(cfg)
				ordered := min <= target && target <= compile
				if ordered && err != nil {
					t.Errorf("Validate(%d/%d/%d) = %v; want success", min, target, compile, err)
				}
				if !ordered && !errors.Is(err, ErrInvalidSdkBounds) {
					t.Errorf("Validate(%d/%d/%d) = %v; want InvalidSdkBounds", min, target, compile, err)
				}
			}
		}
	}
}

func TestValidatedIsACopy(t *testing.T) {
	cfg := baseConfig()
	v, err := Validate(cfg)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg.BuildTypes[0].ProguardFiles[0].Path = "mutated"
	got := v.Config()
	if got.BuildTypes[0].ProguardFiles[0].Path == "mutated" {
		t.Error("Validated shares proguard files with its input")
	}
	got.BuildTypes[0].Name = "mutated"
	if v.Config().BuildTypes[0].Name == "mutated" {
		t.Error("Config() exposes internal state")
	}
	if v.ApplicationID() != "com.example.myapp" || v.SDK().Target != 34 {
		t.Errorf("accessors = %q %+v", v.ApplicationID(), v.SDK())
	}
}

func TestConfigErrorMessage(t *testing.T) {
	_, err := Validate(descriptor.BuildConfig{ApplicationID: "a.b", SDK: descriptor.SdkBounds{Min: 34, Target: 21, Compile: 34}})
	if got, want := err.Error(), "minSdk: 34 is greater than targetSdk 21"; got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
	if InconsistentShrinkFlag.String() != "InconsistentShrinkFlag" {
		t.Errorf("Kind.String() = %q", InconsistentShrinkFlag.String())
	}
}

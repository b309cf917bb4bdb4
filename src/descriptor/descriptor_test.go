package descriptor

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignoreLines = cmp.Options{
	cmpopts.IgnoreFields(Descriptor{}, "Lines", "Source"),
	cmpopts.IgnoreFields(BuildType{}, "Line"),
	cmpopts.IgnoreFields(Dependency{}, "Line"),
}

func TestLoadGradleKotlinScript(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "build.gradle.kts"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := &Descriptor{
		Plugins:           []string{"com.android.application", "kotlin-android", "dev.flutter.flutter-gradle-plugin"},
		Namespace:         "com.example.myapp",
		ApplicationID:     "com.example.myapp",
		MinSdk:            Lit("21"),
		TargetSdk:         Ref("flutter.targetSdkVersion"),
		CompileSdk:        Ref("flutter.compileSdkVersion"),
		NdkVersion:        Ref("flutter.ndkVersion"),
		VersionCode:       Ref("flutter.versionCode"),
		VersionName:       Ref("flutter.versionName"),
		Language:          Java8,
		JvmTarget:         "1.8",
		DesugaringEnabled: true,
		MultidexEnabled:   true,
		BuildTypes: []BuildType{
			{
				Name:            "release",
				SigningConfig:   "debug",
				Minify:          true,
				ShrinkResources: true,
				ProguardFiles: []FileRef{
					{Path: "proguard-android.txt", Default: true},
					{Path: "proguard-rules.pro"},
				},
			},
			{Name: "debug"},
		},
		Lint: LintOptions{
			Disable:            []string{"InvalidPackage"},
			CheckReleaseBuilds: false,
			AbortOnError:       true,
		},
		Dependencies: []Dependency{
			{Configuration: "coreLibraryDesugaring", Coordinate: "com.android.tools:desugar_jdk_libs:2.0.3"},
			{Configuration: "implementation", Coordinate: "androidx.multidex:multidex:2.0.1"},
		},
		FlutterSource: "../..",
	}
	if diff := cmp.Diff(want, d, ignoreLines); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}

	for key, line := range map[string]int{
		KeyApplicationID:      26,
		KeyMinSdk:             29,
		KeyCheckReleaseBuilds: 53,
	} {
		if got := d.Line(key); got != line {
			t.Errorf("Line(%q) = %d; want %d", key, got, line)
		}
	}
	if d.BuildTypes[0].Line != 37 {
		t.Errorf("release declared at line %d; want 37", d.BuildTypes[0].Line)
	}
	if d.Dependencies[0].Line != 59 {
		t.Errorf("desugaring dependency at line %d; want 59", d.Dependencies[0].Line)
	}
}

func TestGradleBuildTypeForms(t *testing.T) {
	src := `
android {
    buildTypes {
        getByName("debug") {
            isMinifyEnabled = false
        }
        create("staging") {
            initWith(getByName("release"))
            signingConfig = signingConfigs.getByName("debug")
        }
        release {
            isMinifyEnabled = true
            proguardFiles(getDefaultProguardFile("proguard-android-optimize.txt"), file("rules/app.pro"))
        }
    }
}
`
	_, err := Parse("build.gradle.kts", []byte(src))
	if err == nil {
		t.Fatal("Parse succeeded; want error for initWith of a later build type")
	}
	var serr *SyntaxError
	if !errors.As(err, &serr) || serr.Line != 8 {
		t.Errorf("Parse error = %v; want SyntaxError at line 8", err)
	}

	src = `
android {
    buildTypes {
        release {
            isMinifyEnabled = true
            isShrinkResources = true
            proguardFiles(getDefaultProguardFile("proguard-android-optimize.txt"), file("rules/app.pro"))
        }
        create("staging") {
            initWith(getByName("release"))
            signingConfig = signingConfigs.getByName("debug")
        }
        getByName("release") {
            signingConfig = signingConfigs.getByName("upload")
        }
    }
}
`
	d, err := Parse("build.gradle.kts", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rules := []FileRef{{Path: "proguard-android-optimize.txt", Default: true}, {Path: "rules/app.pro"}}
	want := []BuildType{
		{Name: "release", SigningConfig: "upload", Minify: true, ShrinkResources: true, ProguardFiles: rules},
		{Name: "staging", SigningConfig: "debug", Minify: true, ShrinkResources: true, ProguardFiles: rules},
	}
	if diff := cmp.Diff(want, d.BuildTypes, ignoreLines); diff != "" {
		t.Errorf("build types mismatch (-want +got):\n%s", diff)
	}
}

func TestGradleSyntaxForms(t *testing.T) {
	src := `
import java.util.Properties

val localProperties = Properties()
plugins {
    id("com.android.application") version "8.7.0" apply false
    kotlin("android")
}

android {
    compileSdkVersion(34)
    defaultConfig {
        applicationId = "io.acme" + ".app"
        minSdkVersion(21)
        targetSdk = 34
        versionCode = localProperties.getProperty("flutter.versionCode").toInt()
        versionName = flutter.versionName
    }
    compileOptions {
        targetCompatibility = JavaVersion.toVersion("17")
    }
    lint {
        disable.addAll(setOf("A", "B"))
        disable += listOf("C")
        isAbortOnError = false
    }
}

dependencies {
    implementation(platform("com.google.firebase:firebase-bom:33.1.0"))
    implementation(project(":core"))
    testImplementation("junit:junit:4.13.2")
}
`
	d, err := Parse("build.gradle.kts", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := d.Plugins, []string{"com.android.application", "org.jetbrains.kotlin.android"}; !cmp.Equal(got, want) {
		t.Errorf("Plugins = %q; want %q", got, want)
	}
	if d.ApplicationID != "io.acme.app" {
		t.Errorf("ApplicationID = %q; want io.acme.app", d.ApplicationID)
	}
	if d.CompileSdk != Lit("34") || d.MinSdk != Lit("21") || d.TargetSdk != Lit("34") {
		t.Errorf("sdk = %v/%v/%v; want 21/34/34", d.MinSdk, d.TargetSdk, d.CompileSdk)
	}
	if d.VersionCode != Ref("flutter.versionCode") {
		t.Errorf("VersionCode = %v; want ${flutter.versionCode}", d.VersionCode)
	}
	if d.Language != Java17 {
		t.Errorf("Language = %q; want 17", d.Language)
	}
	if got, want := d.Lint.Disable, []string{"A", "B", "C"}; !cmp.Equal(got, want) {
		t.Errorf("Lint.Disable = %q; want %q", got, want)
	}
	if d.Lint.AbortOnError || !d.Lint.CheckReleaseBuilds {
		t.Errorf("Lint = %+v; want abort off, release checks on", d.Lint)
	}
	if len(d.Dependencies) != 2 || d.Dependencies[0].Coordinate != "com.google.firebase:firebase-bom:33.1.0" {
		t.Errorf("Dependencies = %+v", d.Dependencies)
	}
}

func TestGradleSkipsUnsupportedStatements(t *testing.T) {
	for _, tc := range []struct {
		name        string
		src         string
		id          string
		types       []BuildType
		versionCode Value
	}{
		{
			name: "key.properties release signing",
			src: `
import java.util.Properties
import java.io.FileInputStream

plugins {
    id("com.android.application")
    id("kotlin-android")
    id("dev.flutter.flutter-gradle-plugin")
}

val keystoreProperties = Properties()
val keystorePropertiesFile = rootProject.file("key.properties")
if (keystorePropertiesFile.exists()) {
    keystoreProperties.load(FileInputStream(keystorePropertiesFile))
}

android {
    namespace = "com.acme.app"
    compileSdk = flutter.compileSdkVersion

    defaultConfig {
        applicationId = "com.acme.app"
        minSdk = flutter.minSdkVersion
    }

    signingConfigs {
        create("release") {
            keyAlias = keystoreProperties["keyAlias"] as String
            keyPassword = keystoreProperties["keyPassword"] as String
            storeFile = keystoreProperties["storeFile"]?.let { file(it) }
            storePassword = keystoreProperties["storePassword"] as String
        }
    }

    buildTypes {
        release {
            signingConfig = signingConfigs.getByName("release")
            isMinifyEnabled = true
            isShrinkResources = true
        }
    }
}
`,
			id:    "com.acme.app",
			types: []BuildType{{Name: "release", SigningConfig: "release", Minify: true, ShrinkResources: true}},
		},
		{
			name: "elvis fallbacks",
			src: `
val flutterVersionCode = localProperties.getProperty("flutter.versionCode") ?: "1"
val flutterVersionName: String = localProperties.getProperty("flutter.versionName")
    ?: throw GradleException("versionName missing")

android {
    defaultConfig {
        applicationId = "com.acme.elvis"
        versionCode = localProperties["flutter.versionCode"]?.toString()?.toInt() ?: 1
    }
    buildTypes {
        getByName("debug") {
            isMinifyEnabled = false
        }
    }
}
`,
			id:          "com.acme.elvis",
			types:       []BuildType{{Name: "debug"}},
			versionCode: Ref("flutter.versionCode"),
		},
		{
			name: "casts on consecutive lines, functions and when",
			src: `
fun loadProps(name: String): Properties {
    val p = Properties()
    rootProject.file(name).inputStream().use { p.load(it) }
    return p
}

android {
    signingConfigs {
        create("upload") {
            keyAlias = props.getProperty("alias") as String
            storePassword = props.getProperty("pass") as? String
        }
    }
    defaultConfig {
        applicationId = "com.acme.casts"
    }
    when (System.getenv("CI")) {
        "true" -> println("ci")
        else -> {}
    }
    buildTypes {
        release {
            signingConfig = signingConfigs.getByName("upload")
            isMinifyEnabled = !isDebugBuild && true
            proguardFiles("proguard-rules.pro")
        }
    }
}
`,
			id:    "com.acme.casts",
			types: []BuildType{{Name: "release", SigningConfig: "upload", ProguardFiles: []FileRef{{Path: "proguard-rules.pro"}}}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Parse("android/app/build.gradle.kts", []byte(tc.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if d.ApplicationID != tc.id {
				t.Errorf("ApplicationID = %q; want %q", d.ApplicationID, tc.id)
			}
			if diff := cmp.Diff(tc.types, d.BuildTypes, ignoreLines); diff != "" {
				t.Errorf("build types mismatch (-want +got):\n%s", diff)
			}
			if tc.versionCode != (Value{}) && d.VersionCode != tc.versionCode {
				t.Errorf("VersionCode = %v; want %v", d.VersionCode, tc.versionCode)
			}
		})
	}
}

func TestGradleLanguageLevels(t *testing.T) {
	for _, tc := range []struct {
		level string
		want  LanguageLevel
	}{
		{"JavaVersion.VERSION_17", Java17},
		{"JavaVersion.VERSION_22", LanguageLevel("22")},
		{"JavaVersion.VERSION_HIGHER", ""},
	} {
		src := "android {\n    compileOptions {\n        sourceCompatibility = " + tc.level + "\n    }\n}\n"
		d, err := Parse("build.gradle.kts", []byte(src))
		if err != nil {
			t.Errorf("Parse(%s): %v", tc.level, err)
			continue
		}
		if d.Language != tc.want {
			t.Errorf("Language for %s = %q; want %q", tc.level, d.Language, tc.want)
		}
	}
}

func TestGradleSyntaxError(t *testing.T) {
	for _, src := range []string{
		"android {\n    namespace = \"x\"\n",
		"android {\n    namespace = foo(\"x\"\n}\n",
		"}\n",
		"android {\n    namespace = \"x\n}\n",
		"if (ready) {\n    load()\n",
	} {
		_, err := Parse("build.gradle.kts", []byte(src))
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse(%q) error = %v; want *SyntaxError", src, err)
		}
	}
}

func TestLoadYAMLKeepsBuildTypeOrder(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "app.droid.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var names []string
	for _, bt := range d.BuildTypes {
		names = append(names, bt.Name)
	}
	if want := []string{"release", "staging", "debug"}; !cmp.Equal(names, want) {
		t.Errorf("build type order = %q; want %q", names, want)
	}
	release := d.BuildTypes[0]
	wantRules := []FileRef{{Path: "proguard-android-optimize.txt", Default: true}, {Path: "proguard-rules.pro"}}
	if diff := cmp.Diff(wantRules, release.ProguardFiles); diff != "" {
		t.Errorf("release proguard files (-want +got):\n%s", diff)
	}
	if d.TargetSdk != Ref("flutter.targetSdkVersion") || d.MinSdk != Lit("23") {
		t.Errorf("sdk = %v/%v", d.MinSdk, d.TargetSdk)
	}
	if d.Language != Java17 {
		t.Errorf("Language = %q; want 17", d.Language)
	}
	if d.Line(KeyApplicationID) != 6 || d.Line(KeyMinSdk) != 8 {
		t.Errorf("lines = %v", d.Lines)
	}
	if release.Line != 19 {
		t.Errorf("release line = %d; want 19", release.Line)
	}
}

func TestLoadTOML(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "app.droid.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Descriptor{
		Plugins:         []string{"com.android.application", "dev.flutter.flutter-gradle-plugin"},
		Namespace:       "com.acme.courier",
		ApplicationID:   "com.acme.courier",
		MinSdk:          Lit("21"),
		TargetSdk:       Lit("34"),
		CompileSdk:      Ref("flutter.compileSdkVersion"),
		VersionCode:     Lit("42"),
		VersionName:     Lit("2.3.0"),
		Language:        Java8,
		MultidexEnabled: true,
		Lint:            LintOptions{CheckReleaseBuilds: false, AbortOnError: true},
		Dependencies: []Dependency{
			{Configuration: "implementation", Coordinate: "androidx.multidex:multidex:2.0.1"},
		},
		BuildTypes: []BuildType{
			{Name: "release", SigningConfig: "debug", Minify: true, ShrinkResources: true, ProguardFiles: []FileRef{{Path: "proguard-rules.pro"}}},
			{Name: "debug"},
		},
	}
	if diff := cmp.Diff(want, d, ignoreLines); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsDuplicateBuildTypes(t *testing.T) {
	src := "application_id: a.b\nbuild_types:\n  - name: release\n  - name: release\n"
	if _, err := Parse("x.droid.yml", []byte(src)); err == nil {
		t.Error("Parse succeeded; want duplicate build type error")
	}
	if _, err := Parse("x.json", []byte("{}")); err == nil {
		t.Error("Parse succeeded for unsupported format")
	}
}

type mapLookup map[string]string

func (m mapLookup) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func TestResolve(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "build.gradle.kts"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	vars := mapLookup{
		"flutter.compileSdkVersion": "35",
		"flutter.targetSdkVersion":  "34",
		"flutter.ndkVersion":        "27.0.12077973",
		"flutter.versionCode":       "7",
		"flutter.versionName":       "1.2.3",
	}
	cfg, err := Resolve(d, vars)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := (SdkBounds{Min: 21, Target: 34, Compile: 35}); cfg.SDK != want {
		t.Errorf("SDK = %+v; want %+v", cfg.SDK, want)
	}
	if cfg.VersionCode != 7 || cfg.VersionName != "1.2.3" || cfg.NdkVersion != "27.0.12077973" {
		t.Errorf("version = %d %q ndk %q", cfg.VersionCode, cfg.VersionName, cfg.NdkVersion)
	}
	if bt, ok := cfg.BuildType("release"); !ok || !bt.ShrinkResources {
		t.Errorf("BuildType(release) = %+v, %v", bt, ok)
	}
	if len(cfg.DependenciesIn("coreLibraryDesugaring")) != 1 {
		t.Error("DependenciesIn(coreLibraryDesugaring) is empty")
	}

	// Resolution must not alias the descriptor's slices.
	cfg.BuildTypes[0].ProguardFiles[0].Path = "changed"
	if d.BuildTypes[0].ProguardFiles[0].Path == "changed" {
		t.Error("Resolve aliased descriptor proguard files")
	}

	delete(vars, "flutter.targetSdkVersion")
	_, err = Resolve(d, vars)
	var uerr *UnresolvedError
	if !errors.As(err, &uerr) || uerr.Name != "flutter.targetSdkVersion" {
		t.Errorf("Resolve error = %v; want UnresolvedError for flutter.targetSdkVersion", err)
	}

	vars["flutter.targetSdkVersion"] = "thirty-four"
	if _, err := Resolve(d, vars); err == nil {
		t.Error("Resolve succeeded with a non-integer target SDK")
	}
}

func TestParseLanguageLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want LanguageLevel
	}{
		{"1.8", Java8},
		{"8", Java8},
		{"VERSION_1_8", Java8},
		{"JavaVersion.VERSION_17", Java17},
		{"11", Java11},
		{"VERSION_21", Java21},
		{"JavaVersion.VERSION_22", LanguageLevel("22")},
		{"1.10", LanguageLevel("10")},
	} {
		got, err := ParseLanguageLevel(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseLanguageLevel(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	for _, in := range []string{"VERSION_X", "1.0", "", "1.8.0"} {
		if got, err := ParseLanguageLevel(in); err == nil {
			t.Errorf("ParseLanguageLevel(%q) = %q; want error", in, got)
		}
	}
	if Java8.Rank() >= Java11.Rank() || LanguageLevel("22").Rank() != 22 {
		t.Errorf("ranks: 1.8=%d 11=%d 22=%d", Java8.Rank(), Java11.Rank(), LanguageLevel("22").Rank())
	}
}

func TestDependencyCoordinate(t *testing.T) {
	d := Dependency{Coordinate: "com.android.tools:desugar_jdk_libs:2.0.3"}
	if d.Module() != "com.android.tools:desugar_jdk_libs" || d.Version() != "2.0.3" {
		t.Errorf("Module/Version = %q/%q", d.Module(), d.Version())
	}
	d = Dependency{Coordinate: "androidx.multidex:multidex"}
	if d.Module() != "androidx.multidex:multidex" || d.Version() != "" {
		t.Errorf("Module/Version = %q/%q", d.Module(), d.Version())
	}
}

package descriptor

import (
	"strings"
)

func parseGradle(name string, data []byte) (*Descriptor, error) {
	stmts, err := parseGradleScript(name, data)
	if err != nil {
		return nil, err
	}
	ev := &gradleEval{
		name: name,
		d: &Descriptor{
			Lint: LintOptions{CheckReleaseBuilds: true, AbortOnError: true},
		},
	}
	for _, s := range stmts {
		if s.kind != stmtBlock {
			continue
		}
		switch s.blockName() {
		case "plugins":
			ev.plugins(s.body)
		case "android":
			if err := ev.android(s.body); err != nil {
				return nil, err
			}
		case "dependencies":
			ev.dependencies(s.body)
		case "flutter":
			for _, f := range s.body {
				if f.kind == stmtAssign && f.target.path() == "source" {
					ev.d.FlutterSource = literal(f.value)
				}
			}
		}
	}
	return ev.d, nil
}

type gradleEval struct {
	name string
	d    *Descriptor
}

func (ev *gradleEval) errorf(line int, msg string) error {
	return &SyntaxError{File: ev.name, Line: line, Msg: msg}
}

func (ev *gradleEval) plugins(body []stmt) {
	for _, s := range body {
		if s.kind != stmtCall {
			continue
		}
		head := s.target.chain[0]
		if !head.call || len(head.args) == 0 || head.args[0].kind != exprString {
			continue
		}
		switch head.name {
		case "id":
			ev.d.Plugins = append(ev.d.Plugins, head.args[0].text)
		case "kotlin":
			ev.d.Plugins = append(ev.d.Plugins, "org.jetbrains.kotlin."+head.args[0].text)
		default:
			continue
		}
		if len(ev.d.Plugins) == 1 {
			ev.d.mark(KeyPlugins, s.line)
		}
	}
}

func (ev *gradleEval) android(body []stmt) error {
	for _, s := range body {
		switch s.kind {
		case stmtAssign:
			switch s.target.path() {
			case "namespace":
				ev.d.Namespace = literal(s.value)
				ev.d.mark(KeyNamespace, s.line)
			case "compileSdk", "compileSdkVersion":
				ev.d.CompileSdk = value(s.value)
				ev.d.mark(KeyCompileSdk, s.line)
			case "ndkVersion":
				ev.d.NdkVersion = value(s.value)
				ev.d.mark(KeyNdkVersion, s.line)
			}
		case stmtCall:
			last := s.target.last()
			if last.name == "compileSdkVersion" && len(last.args) == 1 {
				ev.d.CompileSdk = value(last.args[0])
				ev.d.mark(KeyCompileSdk, s.line)
			}
		case stmtBlock:
			var err error
			switch s.blockName() {
			case "compileOptions":
				ev.compileOptions(s.body)
			case "kotlinOptions":
				for _, k := range s.body {
					if k.kind == stmtAssign && k.target.path() == "jvmTarget" {
						ev.d.JvmTarget = languageText(k.value)
						if level, err := ParseLanguageLevel(ev.d.JvmTarget); err == nil {
							ev.d.JvmTarget = string(level)
						}
						ev.d.mark(KeyJvmTarget, k.line)
					}
				}
			case "defaultConfig":
				ev.defaultConfig(s.body)
			case "buildTypes":
				err = ev.buildTypes(s.body)
			case "lint", "lintOptions":
				ev.d.mark(KeyLint, s.line)
				ev.lint(s.body)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// compileOptions leaves Language empty for levels it does not recognise.
func (ev *gradleEval) compileOptions(body []stmt) {
	var source, target string
	var sourceLine, targetLine int
	for _, s := range body {
		if s.kind != stmtAssign {
			continue
		}
		switch s.target.path() {
		case "isCoreLibraryDesugaringEnabled", "coreLibraryDesugaringEnabled":
			ev.d.DesugaringEnabled = literal(s.value) == "true"
			ev.d.mark(KeyDesugaring, s.line)
		case "sourceCompatibility":
			source, sourceLine = languageText(s.value), s.line
		case "targetCompatibility":
			target, targetLine = languageText(s.value), s.line
		}
	}
	raw, line := source, sourceLine
	if raw == "" {
		raw, line = target, targetLine
	}
	if raw == "" {
		return
	}
	ev.d.mark(KeyLanguage, line)
	if level, err := ParseLanguageLevel(raw); err == nil {
		ev.d.Language = level
	}
}

func (ev *gradleEval) defaultConfig(body []stmt) {
	for _, s := range body {
		var (
			key string
			v   expr
		)
		switch s.kind {
		case stmtAssign:
			key, v = s.target.path(), s.value
		case stmtCall:
			// minSdkVersion(21) style setters.
			last := s.target.last()
			if len(last.args) != 1 {
				continue
			}
			key, v = last.name, last.args[0]
		default:
			continue
		}
		switch key {
		case "applicationId":
			ev.d.ApplicationID = literal(v)
			ev.d.mark(KeyApplicationID, s.line)
		case "minSdk", "minSdkVersion":
			ev.d.MinSdk = value(v)
			ev.d.mark(KeyMinSdk, s.line)
		case "targetSdk", "targetSdkVersion":
			ev.d.TargetSdk = value(v)
			ev.d.mark(KeyTargetSdk, s.line)
		case "versionCode":
			ev.d.VersionCode = value(v)
			ev.d.mark(KeyVersionCode, s.line)
		case "versionName":
			ev.d.VersionName = value(v)
			ev.d.mark(KeyVersionName, s.line)
		case "multiDexEnabled", "isMultiDexEnabled":
			ev.d.MultidexEnabled = literal(v) == "true"
			ev.d.mark(KeyMultidex, s.line)
		}
	}
}

func (ev *gradleEval) buildTypes(body []stmt) error {
	for _, s := range body {
		if s.kind != stmtBlock {
			continue
		}
		name := s.blockName()
		idx := -1
		for i := range ev.d.BuildTypes {
			if ev.d.BuildTypes[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			ev.d.BuildTypes = append(ev.d.BuildTypes, BuildType{Name: name, Line: s.line})
			idx = len(ev.d.BuildTypes) - 1
		}
		if err := ev.buildType(idx, s.body); err != nil {
			return err
		}
	}
	return nil
}

func (ev *gradleEval) buildType(idx int, body []stmt) error {
	for _, s := range body {
		bt := &ev.d.BuildTypes[idx]
		switch s.kind {
		case stmtAssign:
			switch s.target.path() {
			case "signingConfig":
				bt.SigningConfig = signingName(s.value)
			case "isMinifyEnabled", "minifyEnabled":
				bt.Minify = literal(s.value) == "true"
			case "isShrinkResources", "shrinkResources":
				bt.ShrinkResources = literal(s.value) == "true"
			}
		case stmtCall:
			last := s.target.last()
			switch last.name {
			case "proguardFiles", "proguardFile":
				for _, a := range last.args {
					bt.ProguardFiles = append(bt.ProguardFiles, fileRef(a))
				}
			case "initWith":
				if len(last.args) != 1 {
					return ev.errorf(s.line, "initWith takes exactly one build type")
				}
				from := signingName(last.args[0])
				var src *BuildType
				for i := range ev.d.BuildTypes {
					if ev.d.BuildTypes[i].Name == from && i != idx {
						src = &ev.d.BuildTypes[i]
					}
				}
				if src == nil {
					return ev.errorf(s.line, "initWith references unknown build type "+from)
				}
				bt.SigningConfig = src.SigningConfig
				bt.Minify = src.Minify
				bt.ShrinkResources = src.ShrinkResources
				bt.ProguardFiles = append([]FileRef(nil), src.ProguardFiles...)
			}
		}
	}
	return nil
}

func (ev *gradleEval) lint(body []stmt) {
	addRules := func(e expr) {
		if e.kind == exprString {
			ev.d.Lint.Disable = append(ev.d.Lint.Disable, e.text)
			return
		}
		// setOf("A", "B") / listOf(...)
		if e.kind == exprChain {
			for _, a := range e.last().args {
				if a.kind == exprString {
					ev.d.Lint.Disable = append(ev.d.Lint.Disable, a.text)
				}
			}
		}
	}
	for _, s := range body {
		switch s.kind {
		case stmtAppend:
			if s.target.path() == "disable" {
				addRules(s.value)
			}
		case stmtCall:
			path := s.target.path()
			if path == "disable.add" || path == "disable.addAll" || path == "disable" {
				for _, a := range s.target.last().args {
					addRules(a)
				}
			}
		case stmtAssign:
			switch s.target.path() {
			case "checkReleaseBuilds", "isCheckReleaseBuilds":
				ev.d.Lint.CheckReleaseBuilds = literal(s.value) == "true"
				ev.d.mark(KeyCheckReleaseBuilds, s.line)
			case "abortOnError", "isAbortOnError":
				ev.d.Lint.AbortOnError = literal(s.value) == "true"
			}
		}
	}
}

func (ev *gradleEval) dependencies(body []stmt) {
	for _, s := range body {
		if s.kind != stmtCall || len(s.target.chain) != 1 {
			continue
		}
		head := s.target.chain[0]
		if len(head.args) == 0 {
			continue
		}
		coord := dependencyCoordinate(head.args[0])
		if coord == "" {
			continue
		}
		if len(ev.d.Dependencies) == 0 {
			ev.d.mark(KeyDependencies, s.line)
		}
		ev.d.Dependencies = append(ev.d.Dependencies, Dependency{
			Configuration: head.name,
			Coordinate:    coord,
			Line:          s.line,
		})
	}
}

// dependencyCoordinate extracts "group:artifact:version" from a dependency
// notation. platform("...") and enforcedPlatform("...") unwrap; project(...)
// and files(...) are not external modules.
func dependencyCoordinate(e expr) string {
	switch e.kind {
	case exprString:
		return e.text
	case exprChain:
		last := e.last()
		switch last.name {
		case "platform", "enforcedPlatform":
			if len(last.args) == 1 {
				return dependencyCoordinate(last.args[0])
			}
		}
	}
	return ""
}

// literal renders a literal expression; chains render as their dotted path.
func literal(e expr) string {
	switch e.kind {
	case exprString, exprNumber, exprBool:
		return e.text
	case exprChain:
		return e.path()
	}
	return ""
}

// conversions are trailing calls that do not change what a value refers to.
var conversions = map[string]bool{
	"toInt": true, "toInteger": true, "toString": true, "toLong": true, "trim": true,
}

// value turns an expression into a literal or a toolchain reference.
// flutter.compileSdkVersion and localProperties.getProperty("flutter.versionCode")
// are references; literals stay literals.
func value(e expr) Value {
	if e.kind != exprChain {
		return Lit(literal(e))
	}
	chain := e.chain
	for len(chain) > 1 && chain[len(chain)-1].call && conversions[chain[len(chain)-1].name] {
		chain = chain[:len(chain)-1]
	}
	last := chain[len(chain)-1]
	if last.call && (last.name == "getProperty" || last.name == "get") && len(last.args) >= 1 && last.args[0].kind == exprString {
		return Ref(last.args[0].text)
	}
	names := make([]string, 0, len(chain))
	for _, s := range chain {
		if s.call {
			return Ref(expr{kind: exprChain, chain: chain}.path())
		}
		names = append(names, s.name)
	}
	return Ref(strings.Join(names, "."))
}

// languageText reduces JavaVersion.VERSION_1_8, JavaVersion.VERSION_1_8.toString()
// and "1.8" to text ParseLanguageLevel accepts.
func languageText(e expr) string {
	if e.kind != exprChain {
		return literal(e)
	}
	for _, s := range e.chain {
		if strings.HasPrefix(s.name, "VERSION_") {
			return s.name
		}
		if s.name == "toVersion" && len(s.args) == 1 {
			return literal(s.args[0])
		}
	}
	return e.path()
}

// signingName reduces signingConfigs.getByName("debug") and
// signingConfigs.debug to "debug".
func signingName(e expr) string {
	if e.kind != exprChain {
		return literal(e)
	}
	last := e.last()
	if last.call && len(last.args) > 0 && last.args[0].kind == exprString {
		return last.args[0].text
	}
	return last.name
}

func fileRef(e expr) FileRef {
	if e.kind == exprChain {
		last := e.last()
		if last.name == "getDefaultProguardFile" && len(last.args) == 1 {
			return FileRef{Path: literal(last.args[0]), Default: true}
		}
		if last.name == "file" && len(last.args) == 1 {
			return FileRef{Path: literal(last.args[0])}
		}
	}
	return FileRef{Path: literal(e)}
}

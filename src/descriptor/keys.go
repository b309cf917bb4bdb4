package descriptor

// Keys under which Descriptor.Lines records declaration lines.
const (
	KeyPlugins            = "plugins"
	KeyNamespace          = "namespace"
	KeyApplicationID      = "applicationId"
	KeyMinSdk             = "minSdk"
	KeyTargetSdk          = "targetSdk"
	KeyCompileSdk         = "compileSdk"
	KeyNdkVersion         = "ndkVersion"
	KeyVersionCode        = "versionCode"
	KeyVersionName        = "versionName"
	KeyLanguage           = "sourceCompatibility"
	KeyJvmTarget          = "jvmTarget"
	KeyDesugaring         = "isCoreLibraryDesugaringEnabled"
	KeyMultidex           = "multiDexEnabled"
	KeyLint               = "lint"
	KeyCheckReleaseBuilds = "checkReleaseBuilds"
	KeyDependencies       = "dependencies"
)

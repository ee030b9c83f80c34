package gen

var (
	// FeatureDocComments adds a doc comment to every generated member.
	FeatureDocComments = Feature{
		Name:        "doc-comments",
		Stage:       Stable,
		Default:     true,
		Description: "Emits a doc comment naming the source member above every generated member",
	}

	// FeatureIterators allows collection markers to produce iter.Seq / iter.Seq2
	// sequences when useIteratorProtocol is set. When disabled, the markers fall
	// back to returning the live collection.
	FeatureIterators = Feature{
		Name:        "iterators",
		Stage:       Stable,
		Default:     true,
		Description: "Lets For/ForKey/ForValue/ForAll produce lazy iter.Seq sequences",
	}

	// FeatureAssertions emits compile-time interface assertions, such as
	// var _ fmt.Stringer = (*T)(nil), at compilation scope for the aggregate
	// members that implement a standard interface.
	FeatureAssertions = Feature{
		Name:        "assertions",
		Stage:       Beta,
		Default:     false,
		Description: "Emits compile-time interface assertions for generated String/Equals/HashCode members",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureDocComments,
		FeatureIterators,
		FeatureAssertions,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development.
	Experimental

	// Alpha features are complete but their output may still change.
	Alpha

	// Beta features are not expected to change their output.
	Beta

	// Stable features are enabled by default or safe to enable everywhere.
	Stable
)

// String returns the name of the stage.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// A Feature of the veneer codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

package pipeline

// Source identifies one reference knowledge base.
type Source string

const (
	SourceCore        Source = "core"        // function/compound mapping, joined on ko
	SourcePathway     Source = "pathway"     // degradation pathways, joined on ko
	SourceHydrocarbon Source = "hydrocarbon" // hydrocarbon gene catalog, joined on ko
	SourceToxicity    Source = "toxicity"    // toxicity predictions, joined on cpd
)

// Join key columns.
const (
	keyKO       = "ko"
	keyCompound = "cpd"
)

// sourceSpec statically describes how one source is enriched. The table
// below is the complete dispatch surface; adding a source means adding a
// row here and nothing else.
type sourceSpec struct {
	key           string   // join column
	twoStage      bool     // joins the core stage output instead of the raw input
	defaultName   string   // default output filename
	categorical   []string // dictionary-encoded during normalization when present
	numericPrefix string   // float32-coerced column prefix, empty disables
}

// sourceOrder fixes the orchestration sequence.
var sourceOrder = []Source{SourceCore, SourcePathway, SourceHydrocarbon, SourceToxicity}

var sources = map[Source]sourceSpec{
	SourceCore: {
		key:         keyKO,
		defaultName: "core_results.csv",
		categorical: []string{"sample", "ko", "gene", "cpd", "compound_class"},
	},
	SourcePathway: {
		key:         keyKO,
		defaultName: "pathway_results.csv",
		categorical: []string{"sample", "ko", "pathway"},
	},
	SourceHydrocarbon: {
		key:         keyKO,
		defaultName: "hydrocarbon_results.csv",
		categorical: []string{"sample", "ko", "gene", "compound"},
	},
	SourceToxicity: {
		key:           keyCompound,
		twoStage:      true,
		defaultName:   "toxicity_results.csv",
		categorical:   []string{"sample", "ko", "cpd", "smiles"},
		numericPrefix: "value_",
	},
}

// Sources returns the orchestration order.
func Sources() []Source {
	out := make([]Source, len(sourceOrder))
	copy(out, sourceOrder)
	return out
}

// KnownSource reports whether name is a dispatchable source.
func KnownSource(name string) bool {
	_, ok := sources[Source(name)]
	return ok
}

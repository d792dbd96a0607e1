package news

// MajorSources is the fixed allow-list of major outlets used for
// coverage=major queries: wire services, national broadcasters, and
// national newspapers, by NewsAPI source id.
var MajorSources = []string{
	"reuters",
	"associated-press",
	"bbc-news",
	"cnn",
	"fox-news",
	"nbc-news",
	"abc-news",
	"cbs-news",
	"the-new-york-times",
	"the-washington-post",
	"the-wall-street-journal",
	"politico",
	"axios",
	"bloomberg",
	"usa-today",
	"al-jazeera-english",
	"the-guardian-uk",
}

// sourceWeights maps known source ids to a static credibility weight in
// [0, 1]. Wire services rank highest. This is an editorial trust score,
// not a measured metric.
var sourceWeights = map[string]float64{
	"reuters":                 1.0,
	"associated-press":        0.95,
	"bbc-news":                0.9,
	"cnn":                     0.85,
	"fox-news":                0.85,
	"nbc-news":                0.85,
	"abc-news":                0.8,
	"cbs-news":                0.8,
	"the-new-york-times":      0.9,
	"the-washington-post":     0.9,
	"the-wall-street-journal": 0.9,
	"politico":                0.8,
	"axios":                   0.75,
	"bloomberg":               0.85,
	"usa-today":               0.75,
	"al-jazeera-english":      0.8,
	"the-guardian-uk":         0.85,
}

// defaultWeight is assigned to sources outside the weight table.
const defaultWeight = 0.5

// primarySources are the wire services flagged as primary reporting.
var primarySources = map[string]bool{
	"reuters":          true,
	"associated-press": true,
}

var majorSourceSet = func() map[string]bool {
	set := make(map[string]bool, len(MajorSources))
	for _, id := range MajorSources {
		set[id] = true
	}
	return set
}()

// IsMajorSource reports whether a resolved source id is in the allow-list.
func IsMajorSource(sourceID string) bool {
	return majorSourceSet[sourceID]
}

// SourceWeight returns the credibility weight for a resolved source id.
func SourceWeight(sourceID string) float64 {
	if w, ok := sourceWeights[sourceID]; ok {
		return w
	}
	return defaultWeight
}

// IsPrimarySource reports whether a resolved source id is a wire service.
func IsPrimarySource(sourceID string) bool {
	return primarySources[sourceID]
}

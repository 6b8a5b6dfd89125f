package exercise

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/muktihari/fit/profile/typedef"
	"gopkg.in/yaml.v3"
)

// MuscleGroup names the body area an exercise works.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleLowerBack  MuscleGroup = "lower_back"
	MuscleTraps      MuscleGroup = "traps"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleCore       MuscleGroup = "core"
	MuscleFullBody   MuscleGroup = "full_body"
	MuscleCardio     MuscleGroup = "cardio"
	MuscleOther      MuscleGroup = "other"
)

// FuzzyThreshold is the minimum similarity accepted by the fuzzy matcher.
const FuzzyThreshold = 0.90

// Mapping defines a canonical exercise.
type Mapping struct {
	CanonicalName string                   `yaml:"name"`
	Primary       MuscleGroup              `yaml:"primary"`
	Secondary     []MuscleGroup            `yaml:"secondary"`
	CategoryName  string                   `yaml:"category"`
	Aliases       []string                 `yaml:"aliases"`
	Category      typedef.ExerciseCategory `yaml:"-"`
}

// LookupResult is returned by Lookup.
type LookupResult struct {
	Matched       bool
	CanonicalName string
	Primary       MuscleGroup
	Secondary     []MuscleGroup
	Category      typedef.ExerciseCategory
	Confidence    float64 // 0.0-1.0 match confidence
}

var fitCategories = map[string]typedef.ExerciseCategory{
	"bench_press":      typedef.ExerciseCategoryBenchPress,
	"calf_raise":       typedef.ExerciseCategoryCalfRaise,
	"cardio":           typedef.ExerciseCategoryCardio,
	"core":             typedef.ExerciseCategoryCore,
	"crunch":           typedef.ExerciseCategoryCrunch,
	"curl":             typedef.ExerciseCategoryCurl,
	"deadlift":         typedef.ExerciseCategoryDeadlift,
	"flye":             typedef.ExerciseCategoryFlye,
	"hip_raise":        typedef.ExerciseCategoryHipRaise,
	"hyperextension":   typedef.ExerciseCategoryHyperextension,
	"lateral_raise":    typedef.ExerciseCategoryLateralRaise,
	"leg_curl":         typedef.ExerciseCategoryLegCurl,
	"leg_raise":        typedef.ExerciseCategoryLegRaise,
	"lunge":            typedef.ExerciseCategoryLunge,
	"plank":            typedef.ExerciseCategoryPlank,
	"pull_up":          typedef.ExerciseCategoryPullUp,
	"push_up":          typedef.ExerciseCategoryPushUp,
	"row":              typedef.ExerciseCategoryRow,
	"run":              typedef.ExerciseCategoryRun,
	"shoulder_press":   typedef.ExerciseCategoryShoulderPress,
	"shrug":            typedef.ExerciseCategoryShrug,
	"squat":            typedef.ExerciseCategorySquat,
	"total_body":       typedef.ExerciseCategoryTotalBody,
	"tricep_extension": typedef.ExerciseCategoryTricepsExtension,
	"warm_up":          typedef.ExerciseCategoryWarmUp,
}

// Common abbreviation expansions
var abbreviations = map[string]string{
	"db":   "dumbbell",
	"bb":   "barbell",
	"kb":   "kettlebell",
	"ohp":  "overhead press",
	"rdl":  "romanian deadlift",
	"incl": "incline",
	"decl": "decline",
	"ext":  "extension",
}

//go:embed exercises.yaml
var exercisesYAML []byte

// Database holds every canonical exercise.
var Database []Mapping

var (
	canonicalIndex map[string]*Mapping
	aliasIndex     map[string]*Mapping
)

func init() {
	db, err := Parse(exercisesYAML)
	if err != nil {
		panic(err)
	}
	Database = db
	buildIndexes()
}

// Parse decodes a YAML exercise list and resolves FIT categories.
func Parse(data []byte) ([]Mapping, error) {
	var db []Mapping
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse exercises: %w", err)
	}
	for i := range db {
		cat, ok := fitCategories[db[i].CategoryName]
		if !ok {
			return nil, fmt.Errorf("exercise %q: unknown category %q", db[i].CanonicalName, db[i].CategoryName)
		}
		db[i].Category = cat
	}
	return db, nil
}

func buildIndexes() {
	canonicalIndex = make(map[string]*Mapping, len(Database))
	aliasIndex = make(map[string]*Mapping)

	for i := range Database {
		ex := &Database[i]
		canonicalIndex[normalize(ex.CanonicalName)] = ex
		for _, alias := range ex.Aliases {
			aliasIndex[normalize(alias)] = ex
		}
	}
}

// Lookup finds the canonical exercise for a free-text name. Matching runs
// exact canonical, exact alias, abbreviation expansion, then fuzzy.
func Lookup(name string) LookupResult {
	normalized := normalize(name)
	if normalized == "" {
		return unmatched()
	}

	if ex, ok := canonicalIndex[normalized]; ok {
		return resultFrom(ex, 1.0)
	}
	if ex, ok := aliasIndex[normalized]; ok {
		return resultFrom(ex, 1.0)
	}

	if expanded := expandAbbreviations(normalized); expanded != normalized {
		if ex, ok := canonicalIndex[expanded]; ok {
			return resultFrom(ex, 0.95)
		}
		if ex, ok := aliasIndex[expanded]; ok {
			return resultFrom(ex, 0.95)
		}
	}

	if best, score := fuzzyMatch(normalized); best != nil && score >= FuzzyThreshold {
		return resultFrom(best, score)
	}
	return unmatched()
}

// Category returns the FIT category for name, or ExerciseCategoryUnknown.
func Category(name string) typedef.ExerciseCategory {
	return Lookup(name).Category
}

func unmatched() LookupResult {
	return LookupResult{Primary: MuscleOther, Category: typedef.ExerciseCategoryUnknown}
}

func resultFrom(ex *Mapping, confidence float64) LookupResult {
	return LookupResult{
		Matched:       true,
		CanonicalName: ex.CanonicalName,
		Primary:       ex.Primary,
		Secondary:     ex.Secondary,
		Category:      ex.Category,
		Confidence:    confidence,
	}
}

// normalize lowercases s, drops everything but letters, digits and
// spaces, and collapses runs of spaces.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func expandAbbreviations(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

func fuzzyMatch(normalized string) (*Mapping, float64) {
	var best *Mapping
	var bestScore float64

	for i := range Database {
		ex := &Database[i]
		if score := similarity(normalized, normalize(ex.CanonicalName)); score > bestScore {
			best, bestScore = ex, score
		}
		for _, alias := range ex.Aliases {
			if score := similarity(normalized, normalize(alias)); score > bestScore {
				best, bestScore = ex, score
			}
		}
	}
	return best, bestScore
}

// similarity is 1 minus the Levenshtein distance over the longer length.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

package domain

import "errors"

var (
	// ErrNoMentions is returned when no dataset names were extracted from the paper
	ErrNoMentions = errors.New("no concrete dataset mentions found in the paper")

	// ErrNoMatches is returned when the catalog probe produced no candidates
	ErrNoMatches = errors.New("no catalog matches found for extracted names")

	// ErrNoWinner is returned when selection ends without a winner despite a
	// non-empty match list; this is an internal consistency error
	ErrNoWinner = errors.New("no winner after tie-breakers")

	// ErrDatasetNotFound is returned when a dataset ref does not exist in the catalog
	ErrDatasetNotFound = errors.New("dataset not found in catalog")

	// ErrKaggleAPIFailure is returned when a Kaggle API request fails
	ErrKaggleAPIFailure = errors.New("kaggle API request failed")

	// ErrLLMFailure is returned when a model extraction call fails
	ErrLLMFailure = errors.New("LLM extraction failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)

// IsTerminalStop reports whether err is an expected early stop of a run
// rather than a failure: the paper had no resolvable dataset.
func IsTerminalStop(err error) bool {
	return errors.Is(err, ErrNoMentions) || errors.Is(err, ErrNoMatches)
}

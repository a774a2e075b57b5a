package sampler

import (
	"errors"

	"github.com/Semior001/headlines/app/store"
)

// Phase is a stage of the fetch lifecycle.
type Phase int

// Phases of the fetch lifecycle.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ErrorKind classifies the failure of a refresh.
type ErrorKind int

// Kinds of failures.
const (
	KindNone ErrorKind = iota
	KindMissingCredential
	KindHTTP
	KindInsufficientData
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingCredential:
		return "missing_credential"
	case KindHTTP:
		return "http_error"
	case KindInsufficientData:
		return "insufficient_data"
	default:
		return "unknown"
	}
}

var (
	// ErrMissingCredential is returned when no API key is configured.
	ErrMissingCredential = errors.New("missing api key")
	// ErrInsufficientData is returned when the endpoint listed less articles
	// than needed for a sample.
	ErrInsufficientData = errors.New("not enough articles")
)

// Messages shown to the user.
const (
	MsgMissingCredential = "Missing API key. Set GNEWS_API_KEY or --gnews.api-key."
	MsgInsufficientData  = "Not enough articles available right now."
	MsgGenericFailure    = "Something went wrong."
)

// State is a snapshot of the sampler.
// Articles are set only in PhaseReady, Kind and Message only in PhaseError.
type State struct {
	Phase    Phase
	Kind     ErrorKind
	Message  string
	Err      error
	Articles []store.Article
}

// Loading returns true while a refresh is in flight.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

// Failed returns true if the last refresh failed.
func (s State) Failed() bool { return s.Phase == PhaseError }

func loading() State { return State{Phase: PhaseLoading} }

func ready(articles []store.Article) State {
	return State{Phase: PhaseReady, Articles: articles}
}

func failed(kind ErrorKind, msg string, err error) State {
	if msg == "" {
		msg = MsgGenericFailure
	}

	return State{Phase: PhaseError, Kind: kind, Message: msg, Err: err}
}

package analysis

import (
	"time"

	"golang.org/x/sync/errgroup"
)

// Phase identifies a stage of the pipeline.
type Phase int

const (
	PhaseStrings Phase = iota
	PhaseAddresses
	PhaseVote
)

func (p Phase) String() string {
	switch p {
	case PhaseStrings:
		return "strings"
	case PhaseAddresses:
		return "addresses"
	case PhaseVote:
		return "vote"
	default:
		return "unknown"
	}
}

// Observer is told when phases start and finish. The string and address
// phases run concurrently, so implementations must be safe for concurrent use.
type Observer interface {
	PhaseStarted(p Phase)
	// PhaseFinished reports the number of distinct values (or surviving
	// candidates for PhaseVote) the phase produced.
	PhaseFinished(p Phase, count int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) PhaseStarted(Phase)                      {}
func (nopObserver) PhaseFinished(Phase, int, time.Duration) {}

// Result is the outcome of Run.
type Result struct {
	Options   Options       `json:"-"`
	Strings   IndexStats    `json:"strings"`
	Addresses IndexStats    `json:"addresses"`
	Ranking   *Ranking      `json:"ranking"`
	Elapsed   time.Duration `json:"elapsed"`

	strs  evidenceSource
	addrs evidenceSource
}

// Best returns the inferred base, if any.
func (r *Result) Best() (Candidate, bool) {
	return r.Ranking.Best()
}

// Run validates opts and infers the base of buf. Only configuration errors
// are returned; an image without a recognisable base yields a Result whose
// Best reports false.
func Run(buf []byte, opts Options, obs Observer) (*Result, error) {
	cs, err := opts.charset()
	if err != nil {
		return nil, err
	}
	if obs == nil {
		obs = nopObserver{}
	}
	if opts.Width == 32 {
		return run[uint32](buf, opts, cs, obs), nil
	}
	return run[uint64](buf, opts, cs, obs), nil
}

func run[T Word](buf []byte, opts Options, cs *Charset, obs Observer) *Result {
	start := time.Now()

	var strs, addrs *Index[T]
	var g errgroup.Group
	g.Go(func() error {
		t := time.Now()
		obs.PhaseStarted(PhaseStrings)
		strs = LocateStrings[T](buf, StringConfig{
			Charset:    cs,
			MinLen:     opts.MinLen,
			MaxLen:     opts.MaxLen,
			MaxResults: opts.MaxStrings,
			Jobs:       opts.Jobs,
		})
		obs.PhaseFinished(PhaseStrings, strs.Len(), time.Since(t))
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		obs.PhaseStarted(PhaseAddresses)
		addrs = LocateAddresses[T](buf, AddressConfig{
			Order:      opts.Order,
			MaxResults: opts.MaxAddresses,
			Jobs:       opts.Jobs,
		})
		obs.PhaseFinished(PhaseAddresses, addrs.Len(), time.Since(t))
		return nil
	})
	_ = g.Wait() // barrier: both indexes are complete and read-only from here

	t := time.Now()
	obs.PhaseStarted(PhaseVote)
	ranking := Vote(strs, addrs, opts.Jobs)
	obs.PhaseFinished(PhaseVote, len(ranking.Candidates), time.Since(t))

	return &Result{
		Options:   opts,
		Strings:   strs.Stats(),
		Addresses: addrs.Stats(),
		Ranking:   ranking,
		Elapsed:   time.Since(start),
		strs:      indexSource[T]{strs},
		addrs:     indexSource[T]{addrs},
	}
}

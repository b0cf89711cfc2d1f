// Command planit is the single-agent search driver: it loads a Problem,
// runs the requested search kernel, and writes the resulting plan, per
// spec.md §6's "CLI surface (informative)".
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/coregx/planit"
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/internal/heurselect"
	"github.com/coregx/planit/openlist"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/plan"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/search"
	"github.com/coregx/planit/statespace"
	"github.com/coregx/planit/successor"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		problemPath  = flag.String("problem", "", "path to a binary problem file")
		searchKind   = flag.String("search", "astar", "search kernel: ehc|lazy|astar")
		listBacking  = flag.String("list", "bucket", "open-list backing: fifo|bucket|heap|rbtree|splaytree")
		heurName     = flag.String("heur", "goalcount", "heuristic: goalcount|add|max|ff|lmcut|flow|flow-ilp|flow-lmcut|pot|pot-all")
		preferredOps = flag.String("preferred-ops", "off", "preferred-operators policy: off|pref|only")
		pathmax      = flag.Bool("pathmax", false, "enable A* pathmax propagation")
		planOutput   = flag.String("plan-output", "", "path to write the found plan (stdout if empty)")
		maxTime      = flag.Duration("max-time", 0, "abort after this wall-clock duration (0 = unbounded)")
		maxMem       = flag.Int("max-mem", 0, "abort after this many tracked StatePool entries, in thousands (0 = unbounded)")
		explainLM    = flag.Bool("explain-landmarks", false, "log a human-readable LM-Cut landmark dump for the initial state before searching")
	)
	flag.Parse()

	log := logrus.WithField("cmd", "planit")

	if *problemPath == "" {
		fmt.Fprintln(os.Stderr, "planit: -problem is required")
		return 3
	}
	f, err := os.Open(*problemPath)
	if err != nil {
		log.WithError(err).Error("opening problem file")
		return 3
	}
	defer f.Close()

	problem, err := planit.LoadProblem(f)
	if err != nil {
		log.WithError(err).Error("loading problem")
		return 3
	}

	packer, err := pack.Build(problem.Variables)
	if err != nil {
		log.WithError(err).Error("building packer")
		return 3
	}
	p := pool.New(packer)
	space := statespace.NewStateSpace()
	gen := successor.Build(problem.Operators)

	heur, err := heurselect.Build(*heurName, problem, packer, p)
	if err != nil {
		log.WithError(err).Error("building heuristic")
		return 3
	}

	initID := p.Insert(packer.Pack(problem.InitialAssignment()))

	if *explainLM {
		explainLandmarks(log, problem, packer, p, initID)
	}

	cfg := search.DefaultConfig()
	cfg.Pathmax = *pathmax
	cfg.ListBacking = parseBackingKind(*listBacking)
	cfg.PreferredOps = parsePreferredOps(*preferredOps)

	started := time.Now()
	var abortErr *search.AbortError
	kernel := &search.Kernel{
		Problem: problem,
		Packer:  packer,
		Pool:    p,
		Space:   space,
		Gen:     gen,
		Heur:    heur,
		Config:  cfg,
		Callbacks: search.Callbacks{
			PostStep: func(stats *search.Stats) search.Outcome {
				if *maxTime > 0 && time.Since(started) > *maxTime {
					abortErr = &search.AbortError{Cause: search.AbortTime}
					return search.Abort
				}
				if *maxMem > 0 && p.Len() > (*maxMem)*1000 {
					abortErr = &search.AbortError{Cause: search.AbortMemory}
					return search.Abort
				}
				return search.Continue
			},
		},
	}
	kernel.Stats.Started = started

	var step search.Step
	switch *searchKind {
	case "ehc":
		step = search.NewEHC(kernel, initID)
	case "lazy":
		step = search.NewLazy(kernel, initID)
	default:
		step = search.NewAStar(kernel, initID)
	}

	var outcome search.Outcome
	for {
		outcome = step.Step()
		if outcome != search.Continue {
			break
		}
	}

	log = log.WithField("expansions", kernel.Stats.Expansions).
		WithField("generated", kernel.Stats.Generated).
		WithField("elapsed", kernel.Stats.Elapsed())

	if abortErr != nil {
		log.WithError(abortErr).Error("search aborted")
		switch abortErr.Cause {
		case search.AbortTime:
			return 4
		case search.AbortMemory:
			return 5
		default:
			return 2
		}
	}

	if outcome != search.Found {
		log.Info("no plan found")
		return outcome.ExitCode()
	}

	opPath := search.Path(space, kernel.GoalState)
	names := make([]string, len(opPath))
	var cost int64
	for i, opID := range opPath {
		names[i] = problem.Operators[opID].Name
		cost += int64(problem.Operators[opID].Cost)
	}
	log.WithField("plan_cost", cost).Info("plan found")

	out := os.Stdout
	if *planOutput != "" {
		pf, err := os.Create(*planOutput)
		if err != nil {
			log.WithError(err).Error("creating plan output file")
			return 3
		}
		defer pf.Close()
		out = pf
	}
	if err := plan.Write(out, &plan.Plan{Steps: names, Cost: cost}); err != nil {
		log.WithError(err).Error("writing plan")
		return 3
	}
	return outcome.ExitCode()
}

func parseBackingKind(s string) openlist.BackingKind {
	switch s {
	case "fifo":
		return openlist.FIFOBackingKind
	case "heap":
		return openlist.HeapBackingKind
	case "rbtree":
		return openlist.RBTreeBackingKind
	case "splaytree":
		return openlist.SplayBackingKind
	default:
		return openlist.BucketBackingKind
	}
}

// explainLandmarks logs LM-Cut's landmark dump for the initial state,
// cross-referenced against the problem's real operator names via
// LandmarkIndex (spec.md §6, "--heur" diagnostic surface; SPEC_FULL.md
// §4.12's ahocorasick wiring). It runs independently of the --heur flag
// so -explain-landmarks works even when a different heuristic drives the
// actual search.
func explainLandmarks(log *logrus.Entry, problem *planit.Problem, packer *pack.Packer, p *pool.Pool, initID pool.StateID) {
	lmcut := heuristic.NewLMCut(problem, packer, p)
	note := lmcut.Explain(initID)

	idx, err := heuristic.NewLandmarkIndex(problem)
	if err != nil {
		log.WithError(err).Warn("building landmark index")
		return
	}
	names := idx.Describe([]byte(note))
	log.WithField("landmarks", names).Info(note)
}

func parsePreferredOps(s string) search.PreferredOpsPolicy {
	switch s {
	case "pref":
		return search.PreferredPrefer
	case "only":
		return search.PreferredOnly
	default:
		return search.PreferredOff
	}
}

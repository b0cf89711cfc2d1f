// Package agent implements the single-goroutine multi-agent search
// participant: one Agent per cooperating process, each running its own
// projected search.Kernel/AStar over its own pool/StateSpace, folding a
// non-blocking comm.Comm poll into the A* step loop (spec.md §4.8: "Each
// agent runs its own single-threaded search loop; the loop folds message
// processing in between search steps rather than using a separate
// receiver thread").
package agent

import (
	"fmt"

	"github.com/coregx/planit"
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/internal/heurselect"
	"github.com/coregx/planit/ma/comm"
	"github.com/coregx/planit/ma/project"
	"github.com/coregx/planit/ma/wire"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/search"
	"github.com/coregx/planit/statespace"
	"github.com/coregx/planit/successor"
	"github.com/sirupsen/logrus"
)

// extOrigin records how an externally received public state entered this
// agent's pool: which peer sent it and under what StateID it is known in
// the sender's own pool. Path tracing forwards a trace_path to Sender once
// it walks back to a state recorded here, rather than treating it as a
// genuine global-initial-state root (spec.md §4.8, "Path tracing").
type extOrigin struct {
	sender   int
	remoteID int64
}

// Config configures one Agent's local search.
type Config struct {
	Heuristic string // heurselect name, e.g. "lmcut"
	Scope     project.HeuristicScope
	Pathmax   bool
}

// Result is what Run returns: the search Outcome plus, once a plan has
// been globally confirmed, its operator-name sequence.
type Result struct {
	Outcome search.Outcome
	Plan    []string
	Stats   search.Stats
}

// Agent is one participant of a multi-agent search run.
type Agent struct {
	id     int
	ring   []int
	global *planit.Problem
	proj   *planit.Problem

	packer *pack.Packer
	pool   *pool.Pool
	space  *statespace.StateSpace
	gen    *successor.Generator
	heur   heuristic.Heuristic

	kernel *search.Kernel
	astar  *search.AStar

	comm comm.Comm
	log  *logrus.Entry

	// origin maps a locally pooled StateID to the peer it arrived from, for
	// states this agent did not generate itself.
	origin map[pool.StateID]extOrigin

	// snapshot protocol state, active only between initiateSnapshot and a
	// SnapshotFinal being observed.
	snap *snapshotState

	idle        bool
	terminated  bool
	sawFinalize bool
	finalPlan   []string
}

// New builds an Agent for id within ring (the agent ID order used for
// SendInRing), against the global Problem, communicating over c.
func New(id int, ring []int, global *planit.Problem, c comm.Comm, cfg Config) (*Agent, error) {
	proj := project.Project(global, id)

	packer, err := pack.Build(proj.Variables)
	if err != nil {
		return nil, fmt.Errorf("agent %d: %w", id, err)
	}
	p := pool.New(packer)
	space := statespace.NewStateSpace()
	gen := successor.Build(proj.Operators)

	scopedOps := project.ScopedOperators(global, proj, id, cfg.Scope)
	heurProblem := proj
	if len(scopedOps) != len(proj.Operators) {
		heurProblem = &planit.Problem{
			Variables:    proj.Variables,
			Operators:    scopedOps,
			Initial:      proj.Initial,
			Goal:         proj.Goal,
			MAPrivacyVar: proj.MAPrivacyVar,
		}
	}
	heur, err := heurselect.Build(cfg.Heuristic, heurProblem, packer, p)
	if err != nil {
		return nil, fmt.Errorf("agent %d: %w", id, err)
	}

	a := &Agent{
		id:     id,
		ring:   ring,
		global: global,
		proj:   proj,
		packer: packer,
		pool:   p,
		space:  space,
		gen:    gen,
		heur:   heur,
		comm:   c,
		log:    logrus.WithField("agent", id),
		origin: make(map[pool.StateID]extOrigin),
	}

	kernelConfig := search.DefaultConfig()
	kernelConfig.Pathmax = cfg.Pathmax

	a.kernel = &search.Kernel{
		Problem: proj,
		Packer:  packer,
		Pool:    p,
		Space:   space,
		Gen:     gen,
		Heur:    heur,
		Config:  kernelConfig,
		Callbacks: search.Callbacks{
			OnGenerate:  a.onGenerate,
			OnReachGoal: a.onReachGoal,
		},
	}

	initBuf := packer.Pack(proj.InitialAssignment())
	initID := p.Insert(initBuf)
	a.astar = search.NewAStar(a.kernel, initID)

	return a, nil
}

// onGenerate publishes a public_state message to every peer listed in
// op's SendAgents set (spec.md §4.8: "On every expansion, the kernel
// emits messages of public-state type to peers listed in the expanded
// operator's send_agents set").
func (a *Agent) onGenerate(parent pool.StateID, op *planit.Operator, succ pool.StateID) {
	if op.SendAgents.Count() == 0 {
		return
	}
	if !a.packer.HasMAPrivacyVar() {
		return
	}
	parentNode := a.kernel.Space.Get(parent)
	cost := parentNode.G + int64(op.Cost)

	pub := a.packer.ExtractPublic(a.pool.GetPacked(succ))
	msg := &wire.PublicState{
		StateBuf: pub,
		StateID:  int64(succ),
		Cost:     cost,
		HasCost:  true,
	}
	enc := msg.Encode()
	op.SendAgents.Each(func(peer int) {
		if peer == a.id {
			return
		}
		if err := a.comm.SendTo(peer, enc); err != nil {
			a.log.WithError(err).WithField("peer", peer).Warn("send public_state failed")
		}
	})
}

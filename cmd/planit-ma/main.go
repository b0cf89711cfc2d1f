// Command planit-ma is the multi-agent search driver: it loads a Problem
// and an agent-set specification, then runs one ma/agent.Agent per
// locally-hosted agent ID over a TCP (websocket) ma/comm transport,
// writing whichever agent first observes the globally confirmed plan
// (spec.md §6: "The MA driver additionally takes an agent-set
// specification and a heuristic-operator scope").
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coregx/planit"
	"github.com/coregx/planit/ma/agent"
	"github.com/coregx/planit/ma/comm"
	"github.com/coregx/planit/ma/project"
	"github.com/coregx/planit/plan"
	"github.com/coregx/planit/search"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		problemPath = flag.String("problem", "", "path to a binary problem file")
		agentSetPath = flag.String("agents", "", "path to a YAML agent-set specification")
		selfIDs     = flag.String("self", "", "comma-separated agent IDs to run in this process")
		heurName    = flag.String("heur", "goalcount", "heuristic: goalcount|add|max|ff|lmcut|flow|flow-ilp|flow-lmcut|pot|pot-all")
		scopeName   = flag.String("scope", "projected", "heuristic-operator scope: global|projected|local")
		planOutput  = flag.String("plan-output", "", "path to write the found plan (stdout if empty)")
		debugPath   = flag.String("debug-path", "/ma-debug", "websocket path serving live per-agent stats")
	)
	flag.Parse()

	log := logrus.WithField("cmd", "planit-ma")

	if *problemPath == "" || *agentSetPath == "" || *selfIDs == "" {
		fmt.Fprintln(os.Stderr, "planit-ma: -problem, -agents and -self are required")
		return 3
	}

	pf, err := os.Open(*problemPath)
	if err != nil {
		log.WithError(err).Error("opening problem file")
		return 3
	}
	defer pf.Close()
	global, err := planit.LoadProblem(pf)
	if err != nil {
		log.WithError(err).Error("loading problem")
		return 3
	}

	af, err := os.Open(*agentSetPath)
	if err != nil {
		log.WithError(err).Error("opening agent-set file")
		return 3
	}
	defer af.Close()
	agentSet, err := project.LoadAgentSet(af)
	if err != nil {
		log.WithError(err).Error("loading agent-set")
		return 3
	}

	ring := agentSet.IDs()
	addrsByID := make(map[int]string, len(agentSet.Agents))
	for i, spec := range agentSet.Agents {
		addrsByID[spec.ID] = fmt.Sprintf("127.0.0.1:%d", agentSet.ListenBase+i)
	}

	runIDs := make([]int, 0)
	for _, s := range strings.Split(*selfIDs, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			log.WithError(err).Error("parsing -self")
			return 3
		}
		runIDs = append(runIDs, id)
	}

	scope := parseScope(*scopeName)

	var wg sync.WaitGroup
	results := make(chan agent.Result, len(runIDs))
	for _, id := range runIDs {
		id := id
		peerAddrs := make(map[int]string, len(addrsByID)-1)
		for peer, addr := range addrsByID {
			if peer != id {
				peerAddrs[peer] = addr
			}
		}
		c := comm.NewTCPComm(id, comm.WSTransport{}, peerAddrs)
		go func() { _ = c.Serve(addrsByID[id]) }()
		go func() { _ = c.ServeDebug(addrsByID[id], *debugPath, time.Second) }()

		a, err := agent.New(id, ring, global, c, agent.Config{Heuristic: *heurName, Scope: scope})
		if err != nil {
			log.WithError(err).WithField("agent", id).Error("building agent")
			return 3
		}
		// agent.Agent exposes no open-list size, so the debug view reports 0.
		c.SetOpenListSizeFunc(func() int { return 0 })

		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- a.Run()
		}()
	}

	wg.Wait()
	close(results)

	var best *agent.Result
	for r := range results {
		r := r
		if r.Outcome == search.Found && best == nil {
			best = &r
		}
	}
	if best == nil {
		log.Info("no confirmed plan observed by any locally-hosted agent")
		return 1
	}

	costByName := make(map[string]int64, len(global.Operators))
	for _, op := range global.Operators {
		costByName[op.Name] = int64(op.Cost)
	}
	var cost int64
	for _, name := range best.Plan {
		cost += costByName[name]
	}
	log.WithField("plan_cost", cost).Info("confirmed plan observed")

	out := os.Stdout
	if *planOutput != "" {
		f, err := os.Create(*planOutput)
		if err != nil {
			log.WithError(err).Error("creating plan output file")
			return 3
		}
		defer f.Close()
		out = f
	}
	if err := plan.Write(out, &plan.Plan{Steps: best.Plan, Cost: cost}); err != nil {
		log.WithError(err).Error("writing plan")
		return 3
	}
	return 0
}

func parseScope(s string) project.HeuristicScope {
	switch s {
	case "global":
		return project.ScopeGlobal
	case "local":
		return project.ScopeLocal
	default:
		return project.ScopeProjected
	}
}

package reconcile

import (
	"container/heap"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/types"
)

// maxTempAttempts bounds the search for an unused temporary name
const maxTempAttempts = 16

// node is one filesystem step: a delete, a rename, or half of a split rename
type node struct {
	it   *item
	step types.Step
	// src is the cleaned path the step vacates
	src string
	// dst is the cleaned path a rename step writes
	dst string
}

func (n *node) isRename() bool {
	return n.it.op == types.OpRename
}

func (n *node) String() string {
	return fmt.Sprintf("%d/%s", n.it.entry.ID, n.step)
}

// graph holds "must run before" edges between nodes
type graph struct {
	nodes []*node
	preds [][]int
	succs [][]int
	seen  map[[2]int]bool
}

func (g *graph) edge(before, after int) {
	if before == after {
		return
	}
	key := [2]int{before, after}
	if g.seen[key] {
		return
	}
	g.seen[key] = true
	g.preds[after] = append(g.preds[after], before)
	g.succs[before] = append(g.succs[before], after)
}

func buildNodes(items []*item, split map[*item]string) []*node {
	var nodes []*node
	for _, it := range items {
		if !it.isVacating() {
			continue
		}
		tmp, isSplit := split[it]
		switch {
		case it.op == types.OpDelete:
			nodes = append(nodes, &node{it: it, step: types.StepDirect, src: it.from})
		case isSplit:
			nodes = append(nodes,
				&node{it: it, step: types.StepPark, src: it.from, dst: tmp},
				&node{it: it, step: types.StepUnpark, src: tmp, dst: it.to},
			)
		default:
			nodes = append(nodes, &node{it: it, step: types.StepDirect, src: it.from, dst: it.to})
		}
	}
	return nodes
}

func buildGraph(nodes []*node) *graph {
	g := &graph{
		nodes: nodes,
		preds: make([][]int, len(nodes)),
		succs: make([][]int, len(nodes)),
		seen:  make(map[[2]int]bool),
	}

	bySrc := make(map[string]int, len(nodes))
	byDst := make(map[string]int, len(nodes))
	for i, n := range nodes {
		bySrc[n.src] = i
		if n.isRename() {
			byDst[n.dst] = i
		}
	}

	for v, n := range nodes {
		// Anything inside a directory that moves or goes away is handled
		// before the directory itself.
		for _, dir := range ancestors(n.src) {
			if u, ok := bySrc[dir]; ok {
				g.edge(v, u)
			}
		}

		if !n.isRename() {
			continue
		}

		// A target is only free once whatever sits at it, or above it,
		// has moved away.
		// The unpark step of a split rename starts where its park step ends.
		if u, ok := bySrc[n.dst]; ok && nodes[u].it != n.it {
			g.edge(u, v)
		}
		for _, dir := range ancestors(n.dst) {
			if u, ok := bySrc[dir]; ok {
				g.edge(u, v)
			}
			// Moving into a directory that is itself being renamed into
			// place waits for that rename.
			if u, ok := byDst[dir]; ok {
				g.edge(u, v)
			}
		}

		if n.step == types.StepUnpark && v > 0 && nodes[v-1].it == n.it {
			g.edge(v-1, v)
		}
	}
	return g
}

// readyQueue yields ready nodes in listing order, park before unpark
type readyQueue struct {
	nodes []*node
	idx   []int
}

func (q readyQueue) Len() int { return len(q.idx) }
func (q readyQueue) Less(i, j int) bool {
	a, b := q.nodes[q.idx[i]], q.nodes[q.idx[j]]
	if a.it.pos != b.it.pos {
		return a.it.pos < b.it.pos
	}
	return a.step < b.step
}
func (q readyQueue) Swap(i, j int)       { q.idx[i], q.idx[j] = q.idx[j], q.idx[i] }
func (q *readyQueue) Push(x interface{}) { q.idx = append(q.idx, x.(int)) }
func (q *readyQueue) Pop() interface{} {
	old := q.idx
	n := len(old)
	x := old[n-1]
	q.idx = old[:n-1]
	return x
}

// sort runs Kahn's algorithm. It returns the sorted node indices and the
// indices left over, which all sit on or behind a cycle.
func (g *graph) sort() ([]int, []int) {
	indegree := make([]int, len(g.nodes))
	for v := range g.nodes {
		indegree[v] = len(g.preds[v])
	}

	q := &readyQueue{nodes: g.nodes}
	for v, d := range indegree {
		if d == 0 {
			q.idx = append(q.idx, v)
		}
	}
	heap.Init(q)

	sorted := make([]int, 0, len(g.nodes))
	for q.Len() > 0 {
		u := heap.Pop(q).(int)
		sorted = append(sorted, u)
		for _, v := range g.succs[u] {
			indegree[v]--
			if indegree[v] == 0 {
				heap.Push(q, v)
			}
		}
	}

	var rest []int
	for v, d := range indegree {
		if d > 0 {
			rest = append(rest, v)
		}
	}
	return sorted, rest
}

// findCycle walks predecessors from the first leftover node. Every leftover
// node has a leftover predecessor, so the walk must come back on itself.
func (g *graph) findCycle(rest []int) []int {
	left := make(map[int]bool, len(rest))
	for _, v := range rest {
		left[v] = true
	}

	visitedAt := make(map[int]int)
	var path []int
	cur := rest[0]
	for {
		if at, ok := visitedAt[cur]; ok {
			return path[at:]
		}
		visitedAt[cur] = len(path)
		path = append(path, cur)

		next := -1
		for _, p := range g.preds[cur] {
			if left[p] && (next < 0 || p < next) {
				next = p
			}
		}
		if next < 0 {
			return path
		}
		cur = next
	}
}

// order sorts renames and deletes so nothing is overwritten or destroyed
// early, splitting renames through a temporary name while cycles remain
func (r *Reconciler) order(items []*item) (*types.Plan, error) {
	state := newPlanState(items)
	for _, it := range items {
		if it.op != types.OpDelete {
			state.finals[it.to] = it
		}
	}

	split := make(map[*item]string)
	used := make(map[string]bool)

	for {
		nodes := buildNodes(items, split)
		g := buildGraph(nodes)
		sorted, rest := g.sort()
		if len(rest) == 0 {
			return assemble(items, g, sorted), nil
		}

		cycle := g.findCycle(rest)
		ids := cycleIDs(nodes, cycle)

		if !r.opts.ResolveCycles {
			return nil, errors.Newf(errors.ErrCycle, "rename cycle between indexes %s (temporary names are disabled)", joinIDs(ids)).
				WithDetail(errors.DetailIDs, ids)
		}

		victim := pickSplit(nodes, cycle)
		if victim == nil {
			return nil, errors.Newf(errors.ErrCycle, "rename cycle between indexes %s cannot be broken", joinIDs(ids)).
				WithDetail(errors.DetailIDs, ids)
		}

		tmp, err := r.tempPath(state, used, victim.it)
		if err != nil {
			return nil, err
		}
		used[tmp] = true
		split[victim.it] = tmp

		r.logger.Debug().
			Int("id", victim.it.entry.ID).
			Str("temp", tmp).
			Ints("cycle", ids).
			Msg("Breaking rename cycle")
	}
}

// pickSplit returns the lowest identity rename on the cycle that can go
// through a temporary name. A directory with planned operations inside it
// cannot: those operations still refer to its original path.
func pickSplit(nodes []*node, cycle []int) *node {
	var best *node
	for _, v := range cycle {
		n := nodes[v]
		if !n.isRename() || n.step != types.StepDirect {
			continue
		}
		if hasNestedSources(nodes, n) {
			continue
		}
		if best == nil || n.it.entry.ID < best.it.entry.ID {
			best = n
		}
	}
	return best
}

func hasNestedSources(nodes []*node, dir *node) bool {
	if !dir.it.entry.IsDir() {
		return false
	}
	for _, n := range nodes {
		if within(n.src, dir.src) {
			return true
		}
	}
	return false
}

// tempPath finds an unused temporary sibling for the entry, in the nearest
// directory the plan leaves in place
func (r *Reconciler) tempPath(state *planState, used map[string]bool, it *item) (string, error) {
	dir := filepath.Dir(it.from)
	for state.freed(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for attempt := 0; attempt < maxTempAttempts; attempt++ {
		candidate := filepath.Clean(r.opts.TempName(dir))
		if used[candidate] || state.vacated[candidate] != nil || state.finals[candidate] != nil {
			continue
		}
		if _, err := r.fs.Lstat(candidate); err == nil || !os.IsNotExist(err) {
			continue
		}
		return candidate, nil
	}
	return "", errors.Newf(errors.ErrInternal, "cannot find a free temporary name in %q", dir).
		WithDetail(errors.DetailPath, dir)
}

// assemble lays out the plan: keeps first, then the sorted steps, each with
// the plan indices it depends on
func assemble(items []*item, g *graph, sorted []int) *types.Plan {
	plan := &types.Plan{}
	for _, it := range items {
		if it.op == types.OpKeep {
			plan.Operations = append(plan.Operations, types.Operation{
				Type:   types.OpKeep,
				Entry:  it.entry,
				From:   it.entry.Path,
				To:     it.to,
				Target: it.target,
			})
		}
	}

	offset := len(plan.Operations)
	planIndex := make([]int, len(g.nodes))
	for k, v := range sorted {
		planIndex[v] = offset + k
	}

	for _, v := range sorted {
		n := g.nodes[v]
		op := types.Operation{
			Type:  n.it.op,
			Entry: n.it.entry,
			From:  n.it.entry.Path,
			Step:  n.step,
		}
		switch n.step {
		case types.StepPark:
			op.To, op.Target = n.dst, n.dst
		case types.StepUnpark:
			op.From, op.To, op.Target = n.src, n.dst, n.it.target
		default:
			if n.isRename() {
				op.To, op.Target = n.dst, n.it.target
			}
		}

		for _, p := range g.preds[v] {
			op.Deps = append(op.Deps, planIndex[p])
		}
		sort.Ints(op.Deps)

		plan.Operations = append(plan.Operations, op)
	}
	return plan
}

func cycleIDs(nodes []*node, cycle []int) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, v := range cycle {
		id := nodes[v].it.entry.ID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	if len(parts) < 2 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

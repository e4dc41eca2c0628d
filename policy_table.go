package cfr

import (
	"fmt"
	"sort"
	"sync"

	"github.com/golang/glog"

	"github.com/EastChord/Counterfactual-Regret-Minimization/internal/policy"
)

// PolicyTable implements tabular CFR by storing one regret table per
// information set, looked up by its key and created lazily on first
// visit. Tables are never discarded mid-run: their accumulated history
// is the training result.
type PolicyTable struct {
	params DiscountParams
	iter   int

	// Map of infoset key -> regret table for that infoset.
	policies    map[string]*policy.Policy
	needsUpdate map[*policy.Policy]struct{}
}

var _ StrategyProfile = (*PolicyTable)(nil)

// NewPolicyTable creates an empty PolicyTable with the given
// DiscountParams.
func NewPolicyTable(params DiscountParams) *PolicyTable {
	return &PolicyTable{
		params:      params,
		iter:        1,
		policies:    make(map[string]*policy.Policy),
		needsUpdate: make(map[*policy.Policy]struct{}),
	}
}

// Update performs regret matching for all infosets touched since the
// last call and advances the iteration counter.
func (pt *PolicyTable) Update() {
	discountPos, discountNeg, discountSum := pt.params.GetDiscountFactors(pt.iter)
	glog.V(1).Infof("updating %d policies", len(pt.needsUpdate))
	for p := range pt.needsUpdate {
		p.NextStrategy(discountPos, discountNeg, discountSum)
	}

	pt.needsUpdate = make(map[*policy.Policy]struct{})
	pt.iter++
}

func (pt *PolicyTable) Iter() int {
	return pt.iter
}

// NumInfoSets returns the number of distinct information sets visited
// so far.
func (pt *PolicyTable) NumInfoSets() int {
	return len(pt.policies)
}

func (pt *PolicyTable) GetPolicy(node GameTreeNode) []float64 {
	return pt.getPolicy(node).GetStrategy()
}

func (pt *PolicyTable) AddRegret(node GameTreeNode, counterfactualWeight float64, instantaneousRegrets []float64) {
	p := pt.getPolicy(node)
	p.AddRegret(counterfactualWeight, instantaneousRegrets)
	pt.needsUpdate[p] = struct{}{}
}

func (pt *PolicyTable) AddStrategyWeight(node GameTreeNode, w float64) {
	p := pt.getPolicy(node)
	p.AddStrategyWeight(w)
	pt.needsUpdate[p] = struct{}{}
}

func (pt *PolicyTable) GetAverageStrategy(node GameTreeNode) []float64 {
	return pt.getPolicy(node).GetAverageStrategy()
}

// AverageStrategyByKey returns the average strategy for the infoset
// with the given key, or nil if it was never visited.
func (pt *PolicyTable) AverageStrategyByKey(key string) []float64 {
	p, ok := pt.policies[key]
	if !ok {
		return nil
	}

	return p.GetAverageStrategy()
}

// VisitSorted calls visit for each information set in lexicographic
// key order with its average strategy. The order is deterministic so
// exported results are reproducible.
func (pt *PolicyTable) VisitSorted(visit func(key string, averageStrategy []float64)) {
	keys := make([]string, 0, len(pt.policies))
	for k := range pt.policies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		visit(k, pt.policies[k].GetAverageStrategy())
	}
}

func (pt *PolicyTable) getPolicy(node GameTreeNode) *policy.Policy {
	key := node.InfoSet(node.Player())

	p, ok := pt.policies[key]
	if !ok {
		p = policy.New(node.NumChildren())
		pt.policies[key] = p
		if len(pt.policies)%100000 == 0 {
			glog.V(2).Infof("%d infosets", len(pt.policies))
		}
	}

	if p.NumActions() != node.NumChildren() {
		panic(fmt.Errorf("policy has n_actions=%v but node has n_children=%v: %v",
			p.NumActions(), node.NumChildren(), node))
	}

	return p
}

// ThreadSafePolicyTable wraps PolicyTable and is safe to use from
// multiple goroutines. Note that parallel traversal of a single
// iteration still requires iteration-deterministic accumulation; this
// wrapper only serializes access.
type ThreadSafePolicyTable struct {
	mu sync.Mutex
	pt *PolicyTable
}

var _ StrategyProfile = (*ThreadSafePolicyTable)(nil)

func NewThreadSafePolicyTable(params DiscountParams) *ThreadSafePolicyTable {
	return &ThreadSafePolicyTable{pt: NewPolicyTable(params)}
}

func (t *ThreadSafePolicyTable) Update() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pt.Update()
}

func (t *ThreadSafePolicyTable) Iter() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pt.Iter()
}

func (t *ThreadSafePolicyTable) GetPolicy(node GameTreeNode) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pt.GetPolicy(node)
}

func (t *ThreadSafePolicyTable) AddRegret(node GameTreeNode, counterfactualWeight float64, instantaneousRegrets []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pt.AddRegret(node, counterfactualWeight, instantaneousRegrets)
}

func (t *ThreadSafePolicyTable) AddStrategyWeight(node GameTreeNode, w float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pt.AddStrategyWeight(node, w)
}

func (t *ThreadSafePolicyTable) GetAverageStrategy(node GameTreeNode) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pt.GetAverageStrategy(node)
}

func (t *ThreadSafePolicyTable) VisitSorted(visit func(key string, averageStrategy []float64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pt.VisitSorted(visit)
}

package analytics

import (
	"container/heap"
)

// better orders records by revenue, then order count, then center id so the
// ranking is total and deterministic.
func better(a, b RevenueAggregate) bool {
	if cmp := a.TotalRevenue.Cmp(b.TotalRevenue); cmp != 0 {
		return cmp > 0
	}
	if a.OrderCount != b.OrderCount {
		return a.OrderCount > b.OrderCount
	}
	return a.CenterID.String() < b.CenterID.String()
}

// worstFirst is a min-heap whose root is the worst kept record.
type worstFirst []RevenueAggregate

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) {
	*h = append(*h, x.(RevenueAggregate))
}

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// SelectTopK returns the k best records in descending order using a bounded
// heap of at most k elements. The input is not modified.
func SelectTopK(records []RevenueAggregate, k int) []RevenueAggregate {
	if k <= 0 || len(records) == 0 {
		return []RevenueAggregate{}
	}
	if k > len(records) {
		k = len(records)
	}

	h := make(worstFirst, 0, k)
	for _, record := range records {
		if h.Len() < k {
			heap.Push(&h, record)
			continue
		}
		if better(record, h[0]) {
			h[0] = record
			heap.Fix(&h, 0)
		}
	}

	out := make([]RevenueAggregate, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(RevenueAggregate)
	}
	return out
}

// RankCentersByRevenue aggregates orders per center and keeps the top k.
func RankCentersByRevenue(orders []OrderFact, centers []Center, k int) []RevenueAggregate {
	return SelectTopK(Aggregate(orders, centers), k)
}

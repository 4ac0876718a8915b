package cards

import "sort"

// Topics returns the distinct non-empty topics in order of first appearance.
func Topics(cs []*Card) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cs {
		if c.Topic == "" || seen[c.Topic] {
			continue
		}
		seen[c.Topic] = true
		out = append(out, c.Topic)
	}
	return out
}

// FilterTopic returns the cards belonging to topic. An empty topic
// selects every card. The input slice is not modified.
func FilterTopic(cs []*Card, topic string) []*Card {
	if topic == "" {
		out := make([]*Card, len(cs))
		copy(out, cs)
		return out
	}
	var out []*Card
	for _, c := range cs {
		if c.Topic == topic {
			out = append(out, c)
		}
	}
	return out
}

// SortByOrder sorts cards by OrderIndex, keeping backend order for ties.
func SortByOrder(cs []*Card) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].OrderIndex < cs[j].OrderIndex
	})
}

// GroupByTopic groups cards by topic, preserving first-appearance order
// of topics. Cards without a topic are grouped under "".
func GroupByTopic(cs []*Card) ([]string, map[string][]*Card) {
	groups := make(map[string][]*Card)
	var order []string
	for _, c := range cs {
		if _, ok := groups[c.Topic]; !ok {
			order = append(order, c.Topic)
		}
		groups[c.Topic] = append(groups[c.Topic], c)
	}
	return order, groups
}

package nfa

// sparseSet is a set of state indexes with O(1) insert, lookup and clear
// that preserves insertion order.
type sparseSet struct {
	dense  []int
	sparse []int
}

func newSparseSet(n int) *sparseSet {
	return &sparseSet{
		dense:  make([]int, 0, n),
		sparse: make([]int, n),
	}
}

func (s *sparseSet) contains(i int) bool {
	j := s.sparse[i]
	return j < len(s.dense) && s.dense[j] == i
}

func (s *sparseSet) add(i int) {
	s.sparse[i] = len(s.dense)
	s.dense = append(s.dense, i)
}

func (s *sparseSet) clear() {
	s.dense = s.dense[:0]
}

func (s *sparseSet) len() int {
	return len(s.dense)
}

func (s *sparseSet) items() []int {
	return s.dense
}

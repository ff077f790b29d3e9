package textmatch

// popularMinLen is the length of b at which frequently repeated characters stop
// seeding matches. Short strings such as company names never reach it.
const popularMinLen = 200

type block struct{ a, b, size int }

type span struct{ alo, ahi, blo, bhi int }

type matcher struct {
	a, b []rune
	b2j  map[rune][]int // positions of each rune in b, ascending
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int)}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	if n := len(b); n >= popularMinLen {
		limit := n/100 + 1
		for r, idx := range m.b2j {
			if len(idx) > limit {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

// longest finds the longest matching block in a[alo:ahi] and b[blo:bhi].
// Ties go to the block that starts earliest in a, then earliest in b.
func (m *matcher) longest(s span) block {
	best := block{a: s.alo, b: s.blo}
	j2len := map[int]int{}
	for i := s.alo; i < s.ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = block{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = next
	}

	// Popular runes were excluded from seeding; let them extend a block.
	for best.a > s.alo && best.b > s.blo && m.a[best.a-1] == m.b[best.b-1] {
		best.a--
		best.b--
		best.size++
	}
	for best.a+best.size < s.ahi && best.b+best.size < s.bhi &&
		m.a[best.a+best.size] == m.b[best.b+best.size] {
		best.size++
	}
	return best
}

func (m *matcher) matchedChars() int {
	var total int
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		blk := m.longest(s)
		if blk.size == 0 {
			continue
		}
		total += blk.size
		if s.alo < blk.a && s.blo < blk.b {
			queue = append(queue, span{s.alo, blk.a, s.blo, blk.b})
		}
		if blk.a+blk.size < s.ahi && blk.b+blk.size < s.bhi {
			queue = append(queue, span{blk.a + blk.size, s.ahi, blk.b + blk.size, s.bhi})
		}
	}
	return total
}
